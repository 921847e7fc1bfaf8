package ports

import (
	"context"

	"github.com/bft-labs/docsave/internal/domain"
)

// Backend performs the durable write/read against a concrete store.
// Implementations own serialization, transport, and timeout policy; the
// orchestrator imposes no timer of its own on an in-flight call.
//
// Backends are stateless strategies invoked with explicit arguments. They
// must not reach back into orchestrator state.
type Backend interface {
	// Initialize prepares the backend for use. Called before any Save or
	// Recover, and again on re-initialization after a failure. An error
	// puts the saver in the Failed state, where it accepts no saves until
	// re-initialized.
	Initialize(ctx context.Context) error

	// Save durably writes the snapshot, which the caller believes to be the
	// successor of fromGeneration. On success it returns the new generation,
	// strictly greater than fromGeneration.
	//
	// Failures must be classified through the domain taxonomy: return a
	// *domain.SaveError built with domain.Conflict, domain.Connectivity, or
	// domain.Rejected. Raw transport errors must not escape the backend.
	//
	// The interactive flag is advisory; backends may use it to prioritize
	// or annotate the write, never to skip it.
	Save(ctx context.Context, snapshot []byte, fromGeneration domain.Generation, interactive bool) (domain.Generation, error)

	// Recover reconciles with the store after a conflict. The outcome tells
	// the embedding application whether the local document must be reloaded.
	// An error puts the saver in the Failed state until re-initialized.
	Recover(ctx context.Context) (domain.RecoveryOutcome, error)
}

// AutosaveDisabler is implemented by backends that cannot service periodic
// saves (for example a demo backend with no durability). The saver forces
// the autosave interval to zero for such backends.
type AutosaveDisabler interface {
	AutosaveDisabled() bool
}
