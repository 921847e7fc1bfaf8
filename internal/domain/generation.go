package domain

// Generation identifies a durably-stored version of the document.
// Generations are strictly increasing: the orchestrator never reports
// success for a generation less than or equal to one it has already
// reported.
type Generation uint64

// RecoveryOutcome is the result of a successful recovery round-trip.
type RecoveryOutcome int

const (
	// RecoveryLocalCurrent means the store confirmed the local document is
	// current; no reload is needed.
	RecoveryLocalCurrent RecoveryOutcome = iota

	// RecoveryReloadRequired means the store holds newer content and the
	// embedding application must reload the document before editing resumes.
	RecoveryReloadRequired
)

// String returns a human-readable representation of the outcome.
func (o RecoveryOutcome) String() string {
	switch o {
	case RecoveryLocalCurrent:
		return "LocalCurrent"
	case RecoveryReloadRequired:
		return "ReloadRequired"
	default:
		return "Unknown"
	}
}
