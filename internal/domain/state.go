package domain

// SaverState represents the lifecycle state of the save orchestrator.
// The orchestrator is the only legal mutator; everyone else observes.
type SaverState int

const (
	StateUninitialized SaverState = iota
	StateInitializing
	StateIdle
	StateSaving
	StateRecovering
	StateFailed
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s SaverState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateIdle:
		return "Idle"
	case StateSaving:
		return "Saving"
	case StateRecovering:
		return "Recovering"
	case StateFailed:
		return "Failed"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the state accepts no further save requests.
func (s SaverState) Terminal() bool {
	return s == StateFailed || s == StateDestroyed
}
