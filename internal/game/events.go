package game

// EventType names a discrete signal emitted by the simulator.
type EventType string

const (
	EventBounce     EventType = "bounce"      // sound + haptic pulse
	EventHoleEnter  EventType = "hole_enter"  // start continuous vibration
	EventHoleExit   EventType = "hole_exit"   // stop vibration, background reverts
	EventHoleScored EventType = "hole_scored" // point scored, hole relocated; hole_exit still follows
)

// Event is a fire-and-forget signal for renderer, audio and haptics.
type Event struct {
	Type       EventType `json:"type"`
	Tick       uint64    `json:"tick"`
	PulseMs    int64     `json:"pulse_ms,omitempty"`    // bounce only
	Score      int       `json:"score,omitempty"`       // hole_scored only
	HoleRadius float64   `json:"hole_radius,omitempty"` // hole_scored only
}

// TickResult is what a single Update call produces.
type TickResult struct {
	Snapshot Snapshot `json:"snapshot"`
	Events   []Event  `json:"events"`
}

// Has reports whether an event of the given type fired.
func (r TickResult) Has(t EventType) bool {
	for _, e := range r.Events {
		if e.Type == t {
			return true
		}
	}
	return false
}
