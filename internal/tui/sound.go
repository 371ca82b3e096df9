package tui

import (
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/tiltball/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays the audible side of simulator events.
type Sound interface {
	Play(ev game.Event)
	Close()
}

type speakerSound struct{}

// NewSound returns a speaker-backed Sound, or the terminal bell when no audio
// device is available.
func NewSound(screen tcell.Screen) Sound {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("[TUI] Audio initialization failed, using terminal bell: %v", err)
		return bellSound{screen: screen}
	}
	return speakerSound{}
}

func (speakerSound) Play(ev game.Event) {
	freq, dur := toneFor(ev)
	if freq == 0 {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(dur), sine))
}

func (speakerSound) Close() {
	speaker.Close()
}

// toneFor returns the tone for an event; 0 Hz means silence.
func toneFor(ev game.Event) (float64, time.Duration) {
	switch ev.Type {
	case game.EventBounce:
		return 440, time.Duration(ev.PulseMs) * time.Millisecond
	case game.EventHoleEnter:
		return 660, 80 * time.Millisecond
	case game.EventHoleScored:
		return 880, 250 * time.Millisecond
	}
	return 0, 0
}

type bellSound struct {
	screen tcell.Screen
}

func (b bellSound) Play(ev game.Event) {
	if ev.Type == game.EventBounce || ev.Type == game.EventHoleScored {
		b.screen.Beep()
	}
}

func (bellSound) Close() {}
