package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tiltball/internal/game"
)

const (
	TiltStep = 0.5
	MaxTilt  = 5.0
)

// Tilt is the keyboard stand-in for the accelerometer. Each arrow press tips
// the board one step further in that direction.
type Tilt struct {
	game.Vec2
}

// HandleKey applies a key press and reports whether the user asked to quit.
func (t *Tilt) HandleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		t.X -= TiltStep
	case tcell.KeyRight:
		t.X += TiltStep
	case tcell.KeyUp:
		t.Y -= TiltStep
	case tcell.KeyDown:
		t.Y += TiltStep
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			t.Vec2 = game.Vec2{}
		}
	}
	t.X = clampTilt(t.X)
	t.Y = clampTilt(t.Y)
	return false
}

func clampTilt(v float64) float64 {
	if v > MaxTilt {
		return MaxTilt
	}
	if v < -MaxTilt {
		return -MaxTilt
	}
	return v
}
