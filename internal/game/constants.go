package game

import "time"

// Tilt ball tunables. These are fixed by design and not read from config.
const (
	Gain        = 2.0   // acceleration sample -> velocity gain per tick
	MaxSpeed    = 500.0 // per-axis velocity cap, units per tick
	Friction    = 0.98  // velocity multiplier applied every tick
	Restitution = 0.8   // fraction of velocity kept (sign flipped) after a wall hit

	BallRadius = 50.0

	HoleMaxRadius  = 100.0
	HoleMinRadius  = 10.0
	HoleShrinkStep = 8.0 // radius lost per point scored

	HoleCountdown = 5 * time.Second
	BouncePulse   = 100 * time.Millisecond

	// A single tick longer than this is treated as a clock glitch and dropped.
	MaxTickDuration = 10 * time.Second
)

// HoleRadiusForScore returns the hole radius for a given score:
// clamp(HoleMaxRadius - score*HoleShrinkStep, HoleMinRadius, HoleMaxRadius).
func HoleRadiusForScore(score int) float64 {
	return clamp(HoleMaxRadius-float64(score)*HoleShrinkStep, HoleMinRadius, HoleMaxRadius)
}
