package game

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

// fixedRand always returns the same values, pinning the hole in place.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return r.n % n }

func countEvents(events []Event, t EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUpdateBeforeViewportIsNoop(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewPCG(1, 2)))
	before := sim.State()

	samples := [][2]float64{{0, 0}, {300, -300}, {-5, 7}, {1e6, 1e6}}
	for _, s := range samples {
		res := sim.Update(tick, s[0], s[1])
		if len(res.Events) != 0 {
			t.Errorf("expected no events before viewport, got %v", res.Events)
		}
	}

	if sim.State() != before {
		t.Errorf("state changed before viewport: before=%+v after=%+v", before, sim.State())
	}
}

func TestSetViewportCentersBallOnce(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.25})
	sim.SetViewport(1000, 2000)

	st := sim.State()
	if st.Position != NewVec2(500, 1000) {
		t.Fatalf("ball not centered: %+v", st.Position)
	}
	// 0.25*(1000-200)+100, 0.25*(2000-200)+100
	if st.Hole.Center != NewVec2(300, 550) {
		t.Errorf("unexpected hole center: %+v", st.Hole.Center)
	}

	sim.Update(tick, 5, 0)
	moved := sim.State().Position

	sim.SetViewport(800, 1600)
	st = sim.State()
	if st.Position != moved {
		t.Errorf("second viewport call moved the ball: was %+v now %+v", moved, st.Position)
	}
	if st.Width != 800 || st.Height != 1600 {
		t.Errorf("bounds not updated: %vx%v", st.Width, st.Height)
	}
}

func TestSetViewportRejectsInvalidDimensions(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(0, 100)
	sim.SetViewport(100, -1)
	sim.SetViewport(math.NaN(), 100)

	if sim.State().HasBounds() {
		t.Errorf("invalid viewport was accepted: %+v", sim.State())
	}
}

func TestConcreteRightWallScenario(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.1})
	sim.SetViewport(1000, 2000)

	res := sim.Update(16*time.Millisecond, 300, 0)

	if n := countEvents(res.Events, EventBounce); n != 1 {
		t.Fatalf("expected one bounce, got %d (%v)", n, res.Events)
	}
	st := sim.State()
	if st.Position != NewVec2(950, 1000) {
		t.Errorf("position after bounce = %+v, want (950,1000)", st.Position)
	}
	if !nearlyEqual(st.Velocity.X, -392) || st.Velocity.Y != 0 {
		t.Errorf("velocity after bounce = %+v, want (-392,0)", st.Velocity)
	}
	if !st.Edges.Right || st.Edges.Left || st.Edges.Top || st.Edges.Bottom {
		t.Errorf("unexpected edges: %+v", st.Edges)
	}
	if res.Snapshot.BallColor == ColorWhite {
		t.Errorf("ball was not recolored on bounce")
	}
}

func TestBounceIsEdgeTriggered(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.9})
	sim.SetViewport(1000, 2000)

	st := sim.State()
	st.Position = NewVec2(BallRadius, 1000)
	st.Velocity = Vec2{}
	sim.Restore(st)

	first := sim.Update(tick, 0, 0)
	second := sim.Update(tick, 0, 0)

	if n := countEvents(first.Events, EventBounce); n != 1 {
		t.Errorf("first tick: expected 1 bounce, got %d", n)
	}
	if n := countEvents(second.Events, EventBounce); n != 0 {
		t.Errorf("second tick: expected no bounce while resting on the wall, got %d", n)
	}
	if sim.State().Position.X != BallRadius {
		t.Errorf("ball left the wall: x=%v", sim.State().Position.X)
	}
}

func TestPositionStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	sim := NewSimulator(rng)
	const w, h = 720.0, 1280.0
	sim.SetViewport(w, h)

	for i := 0; i < 20000; i++ {
		ax := (rng.Float64()*2 - 1) * 40
		ay := (rng.Float64()*2 - 1) * 40
		sim.Update(16*time.Millisecond, ax, ay)

		p := sim.State().Position
		if p.X < BallRadius || p.X > w-BallRadius || p.Y < BallRadius || p.Y > h-BallRadius {
			t.Fatalf("tick %d: ball out of bounds at %+v", i, p)
		}
	}
}

func TestVelocityIsClampedToMaxSpeed(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.1})
	sim.SetViewport(100000, 100000)

	sim.Update(tick, 1e5, -1e5)
	v := sim.State().Velocity
	if math.Abs(v.X) > MaxSpeed || math.Abs(v.Y) > MaxSpeed {
		t.Errorf("velocity exceeds max speed: %+v", v)
	}
	if !nearlyEqual(v.X, MaxSpeed*Friction) || !nearlyEqual(v.Y, -MaxSpeed*Friction) {
		t.Errorf("velocity = %+v, want (%v,%v)", v, MaxSpeed*Friction, -MaxSpeed*Friction)
	}
}

func TestFrictionDecaysVelocity(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0})
	sim.SetViewport(1000, 2000)

	st := sim.State()
	st.Velocity = NewVec2(3, 2)
	sim.Restore(st)

	prev := sim.State().Velocity.Magnitude()
	for i := 0; i < 600; i++ {
		res := sim.Update(tick, 0, 0)
		if res.Has(EventBounce) {
			t.Fatalf("tick %d: unexpected bounce", i)
		}
		cur := sim.State().Velocity.Magnitude()
		if cur > prev {
			t.Fatalf("tick %d: speed increased from %v to %v", i, prev, cur)
		}
		prev = cur
	}
	if prev > 1e-3 {
		t.Errorf("speed did not converge toward zero: %v", prev)
	}
}

func TestHoleScoresAfterCountdown(t *testing.T) {
	// f=0.5 places the hole exactly under the centered ball.
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(1000, 2000)

	res := sim.Update(tick, 0, 0)
	if !res.Has(EventHoleEnter) {
		t.Fatalf("expected hole_enter on first tick, got %v", res.Events)
	}
	if !res.Snapshot.InHole || res.Snapshot.BallAlpha != 128 {
		t.Errorf("snapshot does not reflect hole: %+v", res.Snapshot)
	}

	scored := 0
	var scoreEvent Event
	for i := 0; i < 50; i++ {
		res = sim.Update(tick, 0, 0)
		for _, e := range res.Events {
			if e.Type == EventHoleScored {
				scored++
				scoreEvent = e
			}
		}
		if i < 49 && scored > 0 {
			t.Fatalf("scored early after %v", time.Duration(i+1)*tick)
		}
	}

	if scored != 1 {
		t.Fatalf("expected exactly one hole_scored, got %d", scored)
	}
	if scoreEvent.Score != 1 {
		t.Errorf("new score = %d, want 1", scoreEvent.Score)
	}
	if scoreEvent.HoleRadius != 92 {
		t.Errorf("new hole radius = %v, want 92", scoreEvent.HoleRadius)
	}
	// The relocated hole is still under the ball, so the countdown restarts
	// without a new hole_enter.
	st := sim.State()
	if st.Score != 1 || !st.Session.Active || st.Session.Elapsed != 0 {
		t.Errorf("countdown not reset after scoring: %+v", st)
	}
	res = sim.Update(tick, 0, 0)
	if len(res.Events) != 0 {
		t.Errorf("expected no events after scoring inside the new hole, got %v", res.Events)
	}
	if got := sim.State().Session.Elapsed; got != tick {
		t.Errorf("fresh countdown elapsed = %v, want %v", got, tick)
	}
}

// seqRand returns floats from a fixed sequence, repeating the last one.
type seqRand struct {
	fs []float64
	i  int
}

func (r *seqRand) Float64() float64 {
	f := r.fs[min(r.i, len(r.fs)-1)]
	r.i++
	return f
}

func (r *seqRand) IntN(n int) int { return n - 1 }

func TestScoringFollowedByExitWhenHoleMovesAway(t *testing.T) {
	// First placement under the ball, every later one in the top-left corner.
	sim := NewSimulator(&seqRand{fs: []float64{0.5, 0.5, 0}})
	sim.SetViewport(1000, 2000)

	var seen []EventType
	for i := 0; i < 80; i++ {
		res := sim.Update(tick, 0, 0)
		for _, e := range res.Events {
			seen = append(seen, e.Type)
		}
	}

	want := []EventType{EventHoleEnter, EventHoleScored, EventHoleExit}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("events = %v, want %v", seen, want)
		}
	}

	snap := sim.Snapshot()
	if snap.InHole || snap.Background != ColorBackground || snap.Score != 1 {
		t.Errorf("snapshot after leaving the relocated hole: %+v", snap)
	}
}

func TestHoleExitRecolorsBall(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5, n: 7})
	sim.SetViewport(1000, 2000)

	sim.Update(tick, 0, 0)
	res := sim.Update(tick, 100, 0)
	if !res.Has(EventHoleExit) || res.Has(EventBounce) {
		t.Fatalf("expected a plain hole_exit, got %v", res.Events)
	}
	if want := (Color{R: 107, G: 107, B: 107, A: 255}); res.Snapshot.BallColor != want {
		t.Errorf("ball color after exit = %+v, want %+v", res.Snapshot.BallColor, want)
	}
}

func TestShortAxisPinsBall(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(80, 2000)

	for i := 0; i < 20; i++ {
		sim.Update(16*time.Millisecond, 300, 5)
		st := sim.State()
		if st.Edges.Left || st.Edges.Right {
			t.Fatalf("tick %d: wall contact on the pinned axis: %+v", i, st.Edges)
		}
		if st.Position.X != 40 || st.Velocity.X != 0 {
			t.Fatalf("tick %d: ball not pinned on x: pos=%+v vel=%+v", i, st.Position, st.Velocity)
		}
		if st.Position.Y < BallRadius || st.Position.Y > 2000-BallRadius {
			t.Fatalf("tick %d: y out of bounds: %v", i, st.Position.Y)
		}
	}
}

func TestLeavingHoleEarlyDiscardsCountdown(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(1000, 2000)
	center := sim.State().Position

	sim.Update(tick, 0, 0)
	for i := 0; i < 49; i++ {
		if res := sim.Update(tick, 0, 0); res.Has(EventHoleScored) {
			t.Fatalf("scored before leaving the hole")
		}
	}
	if got := sim.State().Session.Elapsed; got != 4900*time.Millisecond {
		t.Fatalf("elapsed before exit = %v, want 4.9s", got)
	}

	res := sim.Update(tick, 250, 0)
	if !res.Has(EventHoleExit) {
		t.Fatalf("expected hole_exit, got %v", res.Events)
	}
	if res.Has(EventHoleScored) || sim.State().Score != 0 {
		t.Errorf("score changed after early exit: %d", sim.State().Score)
	}

	st := sim.State()
	st.Position = center
	st.Velocity = Vec2{}
	sim.Restore(st)

	res = sim.Update(tick, 0, 0)
	if !res.Has(EventHoleEnter) {
		t.Fatalf("expected fresh hole_enter, got %v", res.Events)
	}
	if got := sim.State().Session.Elapsed; got != 0 {
		t.Errorf("re-entry did not restart the countdown: elapsed=%v", got)
	}
	if res.Snapshot.RemainingSeconds != 5 {
		t.Errorf("remaining seconds on re-entry = %d, want 5", res.Snapshot.RemainingSeconds)
	}
}

func TestBounceAndHoleEventsCanCoOccur(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0})
	sim.SetViewport(1000, 2000)

	// Hole at (100,100); park the ball next to the top-left corner.
	st := sim.State()
	st.Position = NewVec2(60, 60)
	st.Velocity = NewVec2(-20, -20)
	sim.Restore(st)

	res := sim.Update(tick, 0, 0)
	if countEvents(res.Events, EventBounce) != 1 || countEvents(res.Events, EventHoleEnter) != 1 {
		t.Errorf("expected bounce and hole_enter together, got %v", res.Events)
	}
	if len(res.Events) != 2 {
		t.Errorf("expected exactly two events, got %v", res.Events)
	}
}

func TestNonFiniteSampleIsDropped(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.1})
	sim.SetViewport(1000, 2000)
	sim.Update(tick, 3, 4)
	before := sim.State()

	sim.Update(tick, math.NaN(), 0)
	sim.Update(tick, 0, math.Inf(1))
	sim.Update(-tick, 1, 1)

	if sim.State() != before {
		t.Errorf("invalid samples changed state")
	}
}

func TestHoleRadiusForScore(t *testing.T) {
	prev := HoleRadiusForScore(0)
	if prev != HoleMaxRadius {
		t.Errorf("radius at score 0 = %v, want %v", prev, HoleMaxRadius)
	}
	for score := 1; score <= 100; score++ {
		r := HoleRadiusForScore(score)
		if r < HoleMinRadius || r > HoleMaxRadius {
			t.Fatalf("score %d: radius %v out of range", score, r)
		}
		if r > prev {
			t.Fatalf("score %d: radius grew from %v to %v", score, prev, r)
		}
		prev = r
	}
	if HoleRadiusForScore(11) != 12 || HoleRadiusForScore(12) != 10 {
		t.Errorf("unexpected radii near the floor: %v %v", HoleRadiusForScore(11), HoleRadiusForScore(12))
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(1000, 2000)

	last := 0
	for i := 0; i < 1000; i++ {
		res := sim.Update(tick, 0, 0)
		if res.Snapshot.Score < last {
			t.Fatalf("score decreased from %d to %d", last, res.Snapshot.Score)
		}
		if res.Snapshot.HoleRadius < HoleMinRadius || res.Snapshot.HoleRadius > HoleMaxRadius {
			t.Fatalf("hole radius out of range: %v", res.Snapshot.HoleRadius)
		}
		last = res.Snapshot.Score
	}
	if last == 0 {
		t.Errorf("expected the parked ball to score at least once")
	}
}

func TestBounceColorsAreBright(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewPCG(9, 9)))
	sim.SetViewport(400, 400)

	for i := 0; i < 200; i++ {
		ax := 200.0
		if i%2 == 1 {
			ax = -200
		}
		res := sim.Update(16*time.Millisecond, ax, 0)
		c := res.Snapshot.BallColor
		if res.Has(EventBounce) && (c.R < 100 || c.G < 100 || c.B < 100) {
			t.Fatalf("dim ball color after bounce: %+v", c)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() State {
		sim := NewSimulator(rand.New(rand.NewPCG(5, 6)))
		sim.SetViewport(640, 480)
		for i := 0; i < 500; i++ {
			sim.Update(16*time.Millisecond, float64(i%7)-3, float64(i%5)-2)
		}
		return sim.State()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("non-deterministic runs:\n%+v\n%+v", a, b)
	}
}

func TestSnapshotBackgroundFollowsCountdown(t *testing.T) {
	sim := NewSimulator(fixedRand{f: 0.5})
	sim.SetViewport(1000, 2000)

	if bg := sim.Snapshot().Background; bg != ColorBackground {
		t.Errorf("idle background = %+v, want %+v", bg, ColorBackground)
	}

	sim.Update(tick, 0, 0)
	for i := 0; i < 25; i++ {
		sim.Update(tick, 0, 0)
	}
	snap := sim.Snapshot()
	if !nearlyEqual(snap.ElapsedFraction, 0.5) {
		t.Errorf("elapsed fraction = %v, want 0.5", snap.ElapsedFraction)
	}
	if snap.RemainingSeconds != 3 {
		t.Errorf("remaining seconds = %d, want 3", snap.RemainingSeconds)
	}
	if snap.Background.R <= ColorBackground.R || snap.Background.R >= 255 {
		t.Errorf("background not interpolated: %+v", snap.Background)
	}
}
