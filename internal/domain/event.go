package domain

// EventKind identifies the kind of a SaveEvent.
type EventKind int

const (
	// EventSaveStarted is emitted when a save cycle dispatches to the backend.
	EventSaveStarted EventKind = iota

	// EventSaveSuccess is emitted after the backend confirmed a save and the
	// generation advanced.
	EventSaveSuccess

	// EventSaveFailure is emitted when the backend rejected a save; Reason
	// carries the failure kind.
	EventSaveFailure

	// EventRecoveryStarted is emitted when the orchestrator begins the
	// recovery protocol after a conflict.
	EventRecoveryStarted

	// EventRecoverySuccess is emitted when recovery completed and saving is
	// possible again.
	EventRecoverySuccess

	// EventRecoveryFailure is emitted when recovery failed; the saver is
	// Failed afterward and accepts no saves until re-initialized.
	EventRecoveryFailure
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventSaveStarted:
		return "SaveStarted"
	case EventSaveSuccess:
		return "SaveSuccess"
	case EventSaveFailure:
		return "SaveFailure"
	case EventRecoveryStarted:
		return "RecoveryStarted"
	case EventRecoverySuccess:
		return "RecoverySuccess"
	case EventRecoveryFailure:
		return "RecoveryFailure"
	default:
		return "Unknown"
	}
}

// SaveEvent is an immutable notification value emitted on the event channel.
// Consumers must not retain mutable references into it; it is safe to copy.
type SaveEvent struct {
	// Kind identifies what happened.
	Kind EventKind

	// Autosave is true when the cycle that produced this event was scheduled,
	// false for interactive saves. Interactive failures typically interrupt
	// the user; autosave failures typically do not.
	Autosave bool

	// Generation is the committed generation for success events, and the
	// generation the cycle started from for all other kinds.
	Generation Generation

	// Reason carries the failure kind for EventSaveFailure and
	// EventRecoveryFailure; FailureNone otherwise.
	Reason FailureKind
}
