package lifecycle

// State represents the lifecycle state of a batch engine.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateCancelling
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateCancelling:
		return "Cancelling"
	default:
		return "Unknown"
	}
}

// Active reports whether a run is in progress in this state.
func (s State) Active() bool {
	return s != StateIdle
}

// StateChangeEvent describes one engine state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventEmitter is called when the engine state changes.
type EventEmitter interface {
	OnStateChange(event StateChangeEvent)
}
