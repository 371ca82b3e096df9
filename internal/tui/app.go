package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tiltball/internal/game"
)

// FrameInterval drives the simulator at about 60 Hz.
const FrameInterval = 16 * time.Millisecond

// App runs a local simulator against the keyboard and the terminal.
type App struct {
	screen tcell.Screen
	board  *Board
	sim    *game.Simulator
	sound  Sound
	tilt   Tilt
}

// NewApp wires a simulator to a screen
func NewApp(screen tcell.Screen, sim *game.Simulator, sound Sound) *App {
	return &App{
		screen: screen,
		board:  NewBoard(screen),
		sim:    sim,
		sound:  sound,
	}
}

// Run processes input and ticks until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) {
	a.resize()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok || a.handleEvent(ev) {
				return
			}

		case now := <-ticker.C:
			a.Step(now.Sub(last))
			last = now
		}
	}
}

// Step advances the simulator by one tick and redraws.
func (a *App) Step(dt time.Duration) game.TickResult {
	res := a.sim.Update(dt, a.tilt.X, a.tilt.Y)
	for _, ev := range res.Events {
		a.sound.Play(ev)
	}
	a.board.Draw(res.Snapshot, a.tilt.Vec2)
	return res
}

func (a *App) handleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.tilt.HandleKey(ev)
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	}
	return false
}

func (a *App) resize() {
	w, h := a.board.Viewport()
	a.sim.SetViewport(w, h)
}
