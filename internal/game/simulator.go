package game

import (
	"log"
	"math"
	"time"
)

// Rand is the random source used for hole placement and ball colors.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Simulator runs the tilt ball. It is not safe for concurrent use: all calls
// must come from the one goroutine delivering samples.
type Simulator struct {
	state State
	rng   Rand
}

// NewSimulator creates a simulator with no viewport. Updates are no-ops
// until SetViewport is called.
func NewSimulator(rng Rand) *Simulator {
	return &Simulator{
		rng: rng,
		state: State{
			Radius:    BallRadius,
			BallColor: ColorWhite,
			Hole:      Hole{Radius: HoleMaxRadius},
		},
	}
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	return s.state
}

// Restore replaces the simulator state, e.g. after loading a persisted session.
func (s *Simulator) Restore(st State) {
	if st.Radius <= 0 {
		st.Radius = BallRadius
	}
	st.Hole.Radius = HoleRadiusForScore(st.Score)
	s.state = st
}

// SetViewport stores the playable bounds. The first call centers the ball;
// every call relocates the hole.
func (s *Simulator) SetViewport(width, height float64) {
	if !NewVec2(width, height).IsFinite() || width <= 0 || height <= 0 {
		log.Printf("[SIM] ignoring invalid viewport %vx%v", width, height)
		return
	}
	if width <= 2*s.state.Radius || height <= 2*s.state.Radius {
		log.Printf("[SIM] viewport %vx%v is narrower than the ball; pinning it to the middle of the short axis", width, height)
	}

	s.state.Width = width
	s.state.Height = height
	if !s.state.Placed {
		s.state.Position = NewVec2(width/2, height/2)
		s.state.Placed = true
	}
	s.placeHole()
}

// Update applies one acceleration sample. dt is the wall-clock time since the
// previous sample and only drives the hole countdown; kinematics are per tick.
func (s *Simulator) Update(dt time.Duration, ax, ay float64) TickResult {
	st := &s.state

	if !NewVec2(ax, ay).IsFinite() || dt < 0 || dt > MaxTickDuration {
		log.Printf("[SIM] dropping sample ax=%v ay=%v dt=%v", ax, ay, dt)
		return TickResult{Snapshot: s.Snapshot()}
	}
	if !st.HasBounds() {
		return TickResult{Snapshot: s.Snapshot()}
	}

	st.Tick++
	var events []Event

	// Integrate
	st.Velocity = st.Velocity.Plus(NewVec2(ax, ay).Times(Gain)).Clamp(MaxSpeed)
	st.Position = st.Position.Plus(st.Velocity)

	// An axis too short for the ball has no room to move: pin it to the middle.
	r := st.Radius
	fitsX, fitsY := st.Width > 2*r, st.Height > 2*r
	if !fitsX {
		st.Position.X = st.Width / 2
		st.Velocity.X = 0
	}
	if !fitsY {
		st.Position.Y = st.Height / 2
		st.Velocity.Y = 0
	}

	edges := Edges{
		Left:   fitsX && st.Position.X-r <= 0,
		Right:  fitsX && st.Position.X+r >= st.Width,
		Top:    fitsY && st.Position.Y-r <= 0,
		Bottom: fitsY && st.Position.Y+r >= st.Height,
	}

	if edges.risingFrom(st.Edges) {
		st.BallColor = s.randomBallColor()
		events = append(events, Event{
			Type:    EventBounce,
			Tick:    st.Tick,
			PulseMs: BouncePulse.Milliseconds(),
		})
	}

	// Correct position while the edge condition holds, not just on contact.
	if edges.Left {
		st.Position.X = r
		st.Velocity.X *= -Restitution
	}
	if edges.Right {
		st.Position.X = st.Width - r
		st.Velocity.X *= -Restitution
	}
	if edges.Top {
		st.Position.Y = r
		st.Velocity.Y *= -Restitution
	}
	if edges.Bottom {
		st.Position.Y = st.Height - r
		st.Velocity.Y *= -Restitution
	}
	st.Edges = edges

	st.Velocity = st.Velocity.Times(Friction)

	if ev, ok := s.updateHole(dt); ok {
		events = append(events, ev)
	}

	return TickResult{Snapshot: s.Snapshot(), Events: events}
}

// updateHole advances the hole session state machine and returns the hole
// event fired this tick, if any.
func (s *Simulator) updateHole(dt time.Duration) (Event, bool) {
	st := &s.state
	inHole := s.ballInHole()

	switch {
	case inHole && !st.Session.Active:
		st.Session = HoleSession{Active: true}
		return Event{Type: EventHoleEnter, Tick: st.Tick}, true

	case !inHole && st.Session.Active:
		st.Session = HoleSession{}
		st.BallColor = s.randomBallColor()
		return Event{Type: EventHoleExit, Tick: st.Tick}, true

	case inHole:
		st.Session.Elapsed += dt
		if st.Session.Elapsed < HoleCountdown {
			return Event{}, false
		}
		// The session stays open: the next tick either exits the relocated
		// hole or keeps counting a fresh countdown inside it.
		st.Score++
		st.Hole.Radius = HoleRadiusForScore(st.Score)
		st.Session.Elapsed = 0
		s.placeHole()
		return Event{
			Type:       EventHoleScored,
			Tick:       st.Tick,
			Score:      st.Score,
			HoleRadius: st.Hole.Radius,
		}, true
	}
	return Event{}, false
}

// ballInHole uses the ball's near edge: the ball counts as in once it touches
// the hole circle, not when fully contained.
func (s *Simulator) ballInHole() bool {
	st := &s.state
	if !st.HasBounds() {
		return false
	}
	return st.Position.DistanceTo(st.Hole.Center)-st.Radius <= st.Hole.Radius
}

func (s *Simulator) placeHole() {
	st := &s.state
	st.Hole.Center = NewVec2(
		s.randomAxis(st.Width, st.Hole.Radius),
		s.randomAxis(st.Height, st.Hole.Radius),
	)
}

// randomAxis picks a coordinate uniformly in [r, dim-r], or the middle when
// the axis is too short to fit the hole.
func (s *Simulator) randomAxis(dim, r float64) float64 {
	span := dim - 2*r
	if span <= 0 {
		return dim / 2
	}
	return s.rng.Float64()*span + r
}

// randomBallColor returns a bright color, each channel uniform in [100,255].
func (s *Simulator) randomBallColor() Color {
	return Color{
		R: uint8(100 + s.rng.IntN(156)),
		G: uint8(100 + s.rng.IntN(156)),
		B: uint8(100 + s.rng.IntN(156)),
		A: 255,
	}
}

// Snapshot renders the current state for presentation.
func (s *Simulator) Snapshot() Snapshot {
	st := &s.state
	inHole := st.Session.Active
	frac := st.Session.Fraction()

	alpha := uint8(255)
	background := ColorBackground
	if inHole {
		alpha = 128
		background = lerpColor(ColorBackground, ColorWhite, frac)
	}

	return Snapshot{
		Tick:             st.Tick,
		BallPosition:     st.Position,
		BallVelocity:     st.Velocity,
		BallRadius:       st.Radius,
		BallColor:        st.BallColor,
		BallAlpha:        alpha,
		Background:       background,
		HoleCenter:       st.Hole.Center,
		HoleRadius:       st.Hole.Radius,
		Score:            st.Score,
		InHole:           inHole,
		RemainingSeconds: int(math.Ceil(st.Session.Remaining().Seconds())),
		ElapsedFraction:  frac,
		Width:            st.Width,
		Height:           st.Height,
	}
}

func lerpColor(from, to Color, t float64) Color {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return Color{
		R: mix(from.R, to.R),
		G: mix(from.G, to.G),
		B: mix(from.B, to.B),
		A: mix(from.A, to.A),
	}
}
