package game

import "time"

// Color is an RGBA color handed to the presentation layer.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

var (
	ColorWhite      = Color{R: 255, G: 255, B: 255, A: 255}
	ColorBackground = Color{R: 40, G: 40, B: 40, A: 255}
)

// Edges records which viewport boundaries the ball currently overlaps.
// Only transitions matter; steady contact never produces events.
type Edges struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Top    bool `json:"top"`
	Bottom bool `json:"bottom"`
}

// risingFrom reports whether any edge is set in e but was clear in prev.
func (e Edges) risingFrom(prev Edges) bool {
	return (e.Left && !prev.Left) ||
		(e.Right && !prev.Right) ||
		(e.Top && !prev.Top) ||
		(e.Bottom && !prev.Bottom)
}

// Hole is the target circle the player tilts the ball into.
type Hole struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

// HoleSession exists while the ball stays inside the hole.
type HoleSession struct {
	Active  bool          `json:"active"`
	Elapsed time.Duration `json:"elapsed"`
}

// Remaining returns the countdown time left.
func (hs HoleSession) Remaining() time.Duration {
	if !hs.Active {
		return HoleCountdown
	}
	if hs.Elapsed >= HoleCountdown {
		return 0
	}
	return HoleCountdown - hs.Elapsed
}

// Fraction returns elapsed/HoleCountdown in [0,1].
func (hs HoleSession) Fraction() float64 {
	if !hs.Active {
		return 0
	}
	return clamp(float64(hs.Elapsed)/float64(HoleCountdown), 0, 1)
}

// State is the full simulator state. It is plain data so the session layer
// can persist it and restore it later.
type State struct {
	Position  Vec2        `json:"position"`
	Velocity  Vec2        `json:"velocity"`
	Radius    float64     `json:"radius"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Placed    bool        `json:"placed"`
	Hole      Hole        `json:"hole"`
	Edges     Edges       `json:"edges"`
	Session   HoleSession `json:"session"`
	Score     int         `json:"score"`
	BallColor Color       `json:"ball_color"`
	Tick      uint64      `json:"tick"`
}

// HasBounds reports whether the viewport has been established.
func (s State) HasBounds() bool {
	return s.Width != 0 && s.Height != 0
}

// Snapshot is the per-tick view handed to renderers.
type Snapshot struct {
	Tick             uint64  `json:"tick"`
	BallPosition     Vec2    `json:"ball_position"`
	BallVelocity     Vec2    `json:"ball_velocity"`
	BallRadius       float64 `json:"ball_radius"`
	BallColor        Color   `json:"ball_color"`
	BallAlpha        uint8   `json:"ball_alpha"`
	Background       Color   `json:"background"`
	HoleCenter       Vec2    `json:"hole_center"`
	HoleRadius       float64 `json:"hole_radius"`
	Score            int     `json:"score"`
	InHole           bool    `json:"in_hole"`
	RemainingSeconds int     `json:"remaining_seconds"`
	ElapsedFraction  float64 `json:"elapsed_fraction"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
}
