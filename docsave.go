package docsave

import (
	"context"
	"net/http"
	"time"

	"github.com/bft-labs/docsave/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/docsave/internal/adapters/http"
	logAdapter "github.com/bft-labs/docsave/internal/adapters/log"
	"github.com/bft-labs/docsave/internal/adapters/noop"
	"github.com/bft-labs/docsave/internal/app"
	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

// Generation identifies a durably-stored version of the document.
// Generations are strictly increasing.
type Generation = domain.Generation

// State represents the lifecycle state of the saver.
type State = domain.SaverState

// Saver lifecycle states.
const (
	StateUninitialized = domain.StateUninitialized
	StateInitializing  = domain.StateInitializing
	StateIdle          = domain.StateIdle
	StateSaving        = domain.StateSaving
	StateRecovering    = domain.StateRecovering
	StateFailed        = domain.StateFailed
	StateDestroyed     = domain.StateDestroyed
)

// Event is an immutable notification value emitted on the event channel.
type Event = domain.SaveEvent

// EventKind identifies the kind of an Event.
type EventKind = domain.EventKind

// Event kinds.
const (
	EventSaveStarted     = domain.EventSaveStarted
	EventSaveSuccess     = domain.EventSaveSuccess
	EventSaveFailure     = domain.EventSaveFailure
	EventRecoveryStarted = domain.EventRecoveryStarted
	EventRecoverySuccess = domain.EventRecoverySuccess
	EventRecoveryFailure = domain.EventRecoveryFailure
)

// FailureKind classifies save and recovery failures.
type FailureKind = domain.FailureKind

// Failure kinds.
const (
	FailureNone           = domain.FailureNone
	FailureInitialization = domain.FailureInitialization
	FailureConflict       = domain.FailureConflict
	FailureConnectivity   = domain.FailureConnectivity
	FailureRejected       = domain.FailureRejected
	FailureRecovery       = domain.FailureRecovery
	FailureStaleCommit    = domain.FailureStaleCommit
)

// RecoveryOutcome is the result of a successful recovery round-trip.
type RecoveryOutcome = domain.RecoveryOutcome

// Recovery outcomes.
const (
	RecoveryLocalCurrent   = domain.RecoveryLocalCurrent
	RecoveryReloadRequired = domain.RecoveryReloadRequired
)

// Errors returned by the public API; check with errors.Is.
var (
	ErrNotInitialized = domain.ErrNotInitialized
	ErrSaverFailed    = domain.ErrSaverFailed
	ErrDestroyed      = domain.ErrDestroyed
	ErrStaleCommit    = domain.ErrStaleCommit
	ErrInvalidConfig  = domain.ErrInvalidConfig
)

// Error constructors for custom backends, classifying failures at the
// backend boundary.
var (
	ConflictError     = domain.Conflict
	ConnectivityError = domain.Connectivity
	RejectedError     = domain.Rejected
)

// Backend performs the durable write/read against a concrete store.
type Backend = ports.Backend

// DocumentSource supplies the current serialized form of the document.
type DocumentSource = ports.DocumentSource

// DocumentSourceFunc adapts a function to the DocumentSource interface.
type DocumentSourceFunc = ports.DocumentSourceFunc

// Handler receives save events.
type Handler = app.Handler

// Subscription identifies a registered event handler and can cancel it.
type Subscription = app.Subscription

// FileStore is the local-file backend implementation.
type FileStore = fs.Store

// DefaultHTTPTimeout bounds remote-store requests when no custom HTTP
// client is supplied to NewRemoteBackend.
const DefaultHTTPTimeout = 30 * time.Second

// Saver is the document persistence orchestrator. Use New() to create an
// instance, Init() to prepare the backend, then MarkDirty() and Save() as
// the document evolves. All methods are safe for concurrent use.
type Saver struct {
	orch *app.Orchestrator
}

// New creates a Saver with the given backend, document source, and
// configuration. The backend and source are explicit constructor
// collaborators; there is no container lookup and no inheritance hook.
// The instance starts Uninitialized; call Init() before saving.
func New(backend Backend, source DocumentSource, cfg Config, opts ...Option) (*Saver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.guardConfig != nil {
		backend = app.NewGuard(backend, *o.guardConfig, o.logger)
	}

	orch := app.NewOrchestrator(backend, source, app.OrchestratorConfig{
		AutosaveInterval: cfg.AutosaveInterval,
	}, o.logger)

	return &Saver{orch: orch}, nil
}

// Init initializes the backend. On success the saver becomes Idle and the
// autosave scheduler is armed if the configured interval is positive. A
// failed initialization or recovery leaves the saver Failed and accepting
// no saves; calling Init again re-initializes and resumes saving.
func (s *Saver) Init(ctx context.Context) error {
	return s.orch.Init(ctx)
}

// Save requests a save and blocks until the cycle carrying the request
// settles. interactive distinguishes user-triggered saves from
// programmatic ones in emitted events; an interactive request arriving
// while a save is in flight upgrades the coalesced follow-up cycle.
//
// ctx bounds only the caller's wait. A dispatched backend call is never
// cancelled mid-flight; abandoning the wait still lets the save settle.
//
// Event handlers must not call Save; they use RequestSave, which does not
// wait for settlement.
func (s *Saver) Save(ctx context.Context, interactive bool) error {
	return s.orch.Save(ctx, interactive)
}

// RequestSave posts a save request without waiting for it to settle. The
// returned channel receives the outcome of the cycle carrying the request,
// exactly once. This is the request path for event handlers: handlers run
// synchronously with the cycle that emitted the event, so blocking in Save
// from a handler would stall that cycle's settlement indefinitely.
func (s *Saver) RequestSave(interactive bool) (<-chan error, error) {
	return s.orch.RequestSave(interactive)
}

// MarkDirty records a document mutation. Call it on every change; a
// scheduled save on a clean document is skipped before reaching the
// backend.
func (s *Saver) MarkDirty() {
	s.orch.MarkDirty()
}

// SetAutosaveInterval changes the autosave interval at runtime. Zero stops
// future scheduled saves; a positive value atomically re-arms the timer.
func (s *Saver) SetAutosaveInterval(d time.Duration) {
	s.orch.SetAutosaveInterval(d)
}

// Subscribe registers a handler for future events. Handlers run
// synchronously with the transition that caused the event and must return
// promptly. A handler that reacts by requesting another save uses
// RequestSave, never the blocking Save.
func (s *Saver) Subscribe(h Handler) *Subscription {
	return s.orch.Subscribe(h)
}

// State returns the current saver state.
func (s *Saver) State() State {
	return s.orch.State()
}

// Generation returns the last generation known to be durably saved.
func (s *Saver) Generation() Generation {
	return s.orch.Generation()
}

// Dirty reports whether the document changed since the last commit.
func (s *Saver) Dirty() bool {
	return s.orch.Dirty()
}

// Destroy stops the scheduler, detaches the event channel, and puts the
// saver in its terminal state. An outstanding backend call is not aborted.
// Idempotent.
func (s *Saver) Destroy() {
	s.orch.Destroy()
}

// NewFileBackend creates a local-file backend rooted at dir. The document
// and a JSON manifest carrying the generation are written with atomic
// tmp+rename writes.
func NewFileBackend(dir string) *FileStore {
	return fs.NewStore(dir)
}

// NewRemoteBackend creates a backend against a remote HTTP document store.
// A nil client gets a default one with DefaultHTTPTimeout; timeout policy
// belongs to the client, never to the saver.
func NewRemoteBackend(serviceURL, authKey string, client HTTPClient, logger Logger) Backend {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}
	return httpAdapter.NewStore(serviceURL, authKey, client, logger)
}

// NewNoopBackend creates a demo backend that accepts every save without
// durability and opts out of autosave.
func NewNoopBackend() Backend {
	return noop.NewStore()
}
