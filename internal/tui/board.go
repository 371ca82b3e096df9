package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tiltball/internal/game"
)

// Terminal cells are roughly twice as tall as they are wide, so one cell
// covers CellWidth x CellHeight simulator units.
const (
	CellWidth  = 20.0
	CellHeight = 40.0
)

var holeColor = tcell.NewRGBColor(0, 0, 0)

// Board draws simulator snapshots onto a terminal screen. The bottom row is
// reserved for the status line.
type Board struct {
	screen tcell.Screen
}

// NewBoard creates a board over screen
func NewBoard(screen tcell.Screen) *Board {
	return &Board{screen: screen}
}

// Viewport returns the simulator dimensions covered by the screen.
func (b *Board) Viewport() (width, height float64) {
	cols, rows := b.screen.Size()
	if rows > 0 {
		rows--
	}
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// cellCenter maps a cell to the simulator coordinates of its center.
func cellCenter(col, row int) game.Vec2 {
	return game.NewVec2((float64(col)+0.5)*CellWidth, (float64(row)+0.5)*CellHeight)
}

// Draw renders one frame.
func (b *Board) Draw(snap game.Snapshot, tilt game.Vec2) {
	cols, rows := b.screen.Size()
	bg := toColor(snap.Background)
	ball := snap.BallColor
	if snap.InHole {
		ball = blend(ball, snap.Background, snap.BallAlpha)
	}

	bgStyle := tcell.StyleDefault.Background(bg)
	holeStyle := tcell.StyleDefault.Background(holeColor)
	ballStyle := tcell.StyleDefault.Background(toColor(ball))

	for row := 0; row < rows-1; row++ {
		for col := 0; col < cols; col++ {
			p := cellCenter(col, row)
			style := bgStyle
			if p.DistanceTo(snap.HoleCenter) <= snap.HoleRadius {
				style = holeStyle
			}
			if p.DistanceTo(snap.BallPosition) <= snap.BallRadius {
				style = ballStyle
			}
			b.screen.SetContent(col, row, ' ', nil, style)
		}
	}

	b.drawStatus(snap, tilt, rows-1, cols)
	b.screen.Show()
}

func (b *Board) drawStatus(snap game.Snapshot, tilt game.Vec2, row, cols int) {
	if row < 0 {
		return
	}
	status := fmt.Sprintf(" score %d  hole %.0f  tilt %+.1f,%+.1f", snap.Score, snap.HoleRadius, tilt.X, tilt.Y)
	if snap.InHole {
		status += fmt.Sprintf("  in hole: %ds", snap.RemainingSeconds)
	}
	status += "  [arrows tilt, space level, q quit]"

	style := tcell.StyleDefault.Reverse(true)
	runes := []rune(status)
	for col := 0; col < cols; col++ {
		r := ' '
		if col < len(runes) {
			r = runes[col]
		}
		b.screen.SetContent(col, row, r, nil, style)
	}
}

func toColor(c game.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blend composites fg over bg with the given alpha.
func blend(fg, bg game.Color, alpha uint8) game.Color {
	a := float64(alpha) / 255
	mix := func(f, b uint8) uint8 {
		return uint8(float64(f)*a + float64(b)*(1-a) + 0.5)
	}
	return game.Color{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 255}
}
