package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

// OrchestratorConfig is the immutable configuration captured at
// construction. Interval changes after construction go through
// SetAutosaveInterval, which mutates only the scheduler.
type OrchestratorConfig struct {
	// AutosaveInterval is the initial autosave interval; zero disables
	// scheduled saves.
	AutosaveInterval time.Duration
}

// saveCycle describes one in-flight or parked save request. Requests that
// arrive while a save is in flight are coalesced into a single parked cycle
// rather than queued: only the latest document content ever needs to reach
// the store, but the interactive kind is preserved because interactive saves
// carry user-visible feedback obligations.
type saveCycle struct {
	interactive bool
	waiters     []chan error
}

// Orchestrator is the save state machine. It serializes save requests,
// drives the backend, interprets success and failure, and triggers the
// recovery protocol.
//
// At most one backend call is in flight at any instant. State and the
// committed generation are mutated only under o.mu; backend calls happen
// outside the lock. There is no mid-flight cancellation: once dispatched, a
// backend call always settles, even across Destroy.
type Orchestrator struct {
	backend ports.Backend
	source  ports.DocumentSource
	tracker *Tracker
	events  *Broadcaster
	sched   *Scheduler
	logger  ports.Logger

	mu       sync.Mutex
	state    domain.SaverState
	pending  *saveCycle
	interval time.Duration
	autosave bool // false when the backend opted out of autosave
}

// NewOrchestrator creates an orchestrator in the Uninitialized state.
// The backend and document source are required collaborators.
func NewOrchestrator(backend ports.Backend, source ports.DocumentSource, cfg OrchestratorConfig, logger ports.Logger) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		source:   source,
		tracker:  NewTracker(),
		events:   NewBroadcaster(),
		logger:   logger,
		state:    domain.StateUninitialized,
		interval: cfg.AutosaveInterval,
		autosave: true,
	}
	if d, ok := backend.(ports.AutosaveDisabler); ok && d.AutosaveDisabled() {
		o.autosave = false
		o.interval = 0
	}
	o.sched = NewScheduler(o.autosaveTick)
	return o
}

// Init initializes the backend. On success the saver becomes Idle and the
// autosave scheduler is armed if the interval is positive. An
// initialization failure leaves the saver Failed and accepting no saves;
// so does a failed recovery. Init may be called again from Failed to
// re-initialize and resume saving.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case domain.StateDestroyed:
		o.mu.Unlock()
		return domain.ErrDestroyed
	case domain.StateUninitialized, domain.StateFailed:
	default:
		o.mu.Unlock()
		return domain.ErrAlreadyInitialized
	}
	o.state = domain.StateInitializing
	o.mu.Unlock()

	err := o.backend.Initialize(ctx)

	o.mu.Lock()
	if o.state == domain.StateDestroyed {
		o.mu.Unlock()
		return domain.ErrDestroyed
	}
	if err != nil {
		o.state = domain.StateFailed
		o.mu.Unlock()
		o.events.Emit(domain.SaveEvent{
			Kind:   domain.EventSaveFailure,
			Reason: domain.FailureInitialization,
		})
		o.logger.Error("backend initialization failed", ports.Err(err))
		return fmt.Errorf("initialize backend: %w", err)
	}
	o.state = domain.StateIdle
	interval := o.interval
	// Armed under the lock so a concurrent SetAutosaveInterval cannot land
	// between the transition and the arming and be overwritten.
	o.sched.Start(interval)
	o.mu.Unlock()

	o.logger.Info("saver initialized",
		ports.Duration("autosave_interval", interval),
	)
	return nil
}

// Save requests a save and blocks until the cycle carrying the request
// settles. If a save is already in flight, the request coalesces into the
// parked slot and resolves with the outcome of the follow-up cycle.
//
// The caller's ctx only bounds the wait; it never cancels a dispatched
// backend call, so an abandoned wait still lets the save settle.
//
// Event handlers must not call Save: settlement of the emitting cycle waits
// for every handler to return, so a handler blocking in Save holds up its
// own resolution. Handlers react through RequestSave instead.
func (o *Orchestrator) Save(ctx context.Context, interactive bool) error {
	ch, err := o.RequestSave(interactive)
	if err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestSave posts a save request without waiting for it to settle. The
// returned channel receives the outcome of the cycle carrying the request,
// exactly once. This is the entry point for event handlers, which run
// synchronously with the emitting cycle and therefore cannot block in Save.
func (o *Orchestrator) RequestSave(interactive bool) (<-chan error, error) {
	return o.enqueue(interactive)
}

// enqueue funnels every save request, interactive or scheduled, through the
// single serialization point.
func (o *Orchestrator) enqueue(interactive bool) (<-chan error, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan error, 1)
	switch o.state {
	case domain.StateUninitialized, domain.StateInitializing:
		return nil, domain.ErrNotInitialized
	case domain.StateFailed:
		return nil, domain.ErrSaverFailed
	case domain.StateDestroyed:
		return nil, domain.ErrDestroyed
	case domain.StateIdle:
		c := &saveCycle{interactive: interactive, waiters: []chan error{ch}}
		o.state = domain.StateSaving
		go o.runCycle(c)
		return ch, nil
	default: // Saving, Recovering: coalesce
		if o.pending == nil {
			o.pending = &saveCycle{}
		}
		if interactive {
			// Kind upgrade: an interactive save must not be silently
			// skipped in favor of a concurrent scheduled save.
			o.pending.interactive = true
		}
		o.pending.waiters = append(o.pending.waiters, ch)
		return ch, nil
	}
}

// autosaveTick runs on the scheduler goroutine. It posts through the same
// request path as interactive saves and never blocks the timer.
func (o *Orchestrator) autosaveTick() {
	if !o.tracker.Dirty() {
		o.logger.Debug("autosave tick skipped, document clean")
		return
	}
	if _, err := o.enqueue(false); err != nil {
		o.logger.Debug("autosave tick dropped", ports.Err(err))
	}
}

// runCycle dispatches one save cycle to the backend and settles it.
func (o *Orchestrator) runCycle(c *saveCycle) {
	snap := o.tracker.Snapshot()

	o.events.Emit(domain.SaveEvent{
		Kind:       domain.EventSaveStarted,
		Autosave:   !c.interactive,
		Generation: snap.Generation,
	})

	ctx := context.Background()
	var gen domain.Generation
	data, err := o.source.Snapshot(ctx)
	if err != nil {
		err = domain.Rejected(fmt.Errorf("snapshot document: %w", err))
	} else {
		gen, err = o.backend.Save(ctx, data, snap.Generation, c.interactive)
	}

	o.settle(c, snap, gen, err)
}

// settle interprets the backend result, emits events, resolves waiters, and
// drives the next transition. Emission always happens-before the next
// transition is attempted, so a handler that reacts by requesting a new
// save observes a consistent prior state (still Saving, hence coalesced).
func (o *Orchestrator) settle(c *saveCycle, snap Snapshot, gen domain.Generation, saveErr error) {
	kind := domain.Classify(saveErr)
	ev := domain.SaveEvent{Autosave: !c.interactive, Generation: snap.Generation}
	result := saveErr

	if saveErr == nil {
		if err := o.tracker.Commit(gen, snap); err != nil {
			// Assertion-style failure: a commit that does not advance the
			// generation means the single-writer discipline broke.
			kind = domain.FailureStaleCommit
			result = err
			ev.Kind = domain.EventSaveFailure
			ev.Reason = domain.FailureStaleCommit
			o.logger.Error("stale commit detected",
				ports.Uint64("generation", uint64(gen)),
				ports.Uint64("committed", uint64(snap.Generation)),
			)
		} else {
			ev.Kind = domain.EventSaveSuccess
			ev.Generation = gen
		}
	} else {
		ev.Kind = domain.EventSaveFailure
		ev.Reason = kind
		o.logger.Warn("save failed",
			ports.Err(saveErr),
			ports.String("reason", kind.String()),
			ports.Bool("autosave", !c.interactive),
		)
	}

	if o.destroyed() {
		// The adapter completion is still processed (a successful commit is
		// recorded above), but the destroyed sink takes no further action.
		deliver(c, result)
		return
	}

	o.events.Emit(ev)
	deliver(c, result)

	if kind == domain.FailureConflict {
		o.events.Emit(domain.SaveEvent{
			Kind:       domain.EventRecoveryStarted,
			Autosave:   !c.interactive,
			Generation: snap.Generation,
		})
		o.mu.Lock()
		if o.state == domain.StateDestroyed {
			o.mu.Unlock()
			return
		}
		o.state = domain.StateRecovering
		o.mu.Unlock()
		o.runRecovery(!c.interactive)
		return
	}

	if result == nil {
		o.sched.Reset()
		o.logger.Info("saved",
			ports.Uint64("generation", uint64(gen)),
			ports.Bool("autosave", !c.interactive),
		)
	}
	o.advance()
}

// runRecovery issues exactly one backend Recover call after a conflict.
// Recovery success returns the saver to Idle without re-issuing the
// conflicted save; recovery failure leaves the saver Failed until
// re-initialized.
func (o *Orchestrator) runRecovery(autosave bool) {
	out, err := o.backend.Recover(context.Background())

	if o.destroyed() {
		return
	}

	if err != nil {
		o.events.Emit(domain.SaveEvent{
			Kind:       domain.EventRecoveryFailure,
			Autosave:   autosave,
			Generation: o.tracker.Generation(),
			Reason:     domain.FailureRecovery,
		})
		o.logger.Error("recovery failed, saving disabled", ports.Err(err))
		o.mu.Lock()
		o.state = domain.StateFailed
		parked := o.pending
		o.pending = nil
		o.mu.Unlock()
		failWaiters(parked, domain.ErrSaverFailed)
		return
	}

	o.events.Emit(domain.SaveEvent{
		Kind:       domain.EventRecoverySuccess,
		Autosave:   autosave,
		Generation: o.tracker.Generation(),
	})
	if out == domain.RecoveryReloadRequired {
		o.logger.Warn("recovery requires document reload")
	}
	o.advance()
}

// advance launches the parked cycle if one exists, otherwise returns the
// saver to Idle.
func (o *Orchestrator) advance() {
	o.mu.Lock()
	if o.state == domain.StateDestroyed || o.state == domain.StateFailed {
		reason := domain.ErrDestroyed
		if o.state == domain.StateFailed {
			reason = domain.ErrSaverFailed
		}
		parked := o.pending
		o.pending = nil
		o.mu.Unlock()
		failWaiters(parked, reason)
		return
	}
	if o.pending != nil {
		c := o.pending
		o.pending = nil
		o.state = domain.StateSaving
		o.mu.Unlock()
		go o.runCycle(c)
		return
	}
	o.state = domain.StateIdle
	o.mu.Unlock()
}

// SetAutosaveInterval changes the autosave interval at runtime. Zero stops
// future scheduled saves. A no-op for backends that opted out of autosave
// and after Destroy.
func (o *Orchestrator) SetAutosaveInterval(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == domain.StateDestroyed || !o.autosave {
		return
	}
	o.interval = d
	if o.state != domain.StateUninitialized && o.state != domain.StateInitializing {
		o.sched.SetInterval(d)
	}
}

// MarkDirty records a document mutation.
func (o *Orchestrator) MarkDirty() {
	o.tracker.MarkDirty()
}

// Subscribe registers a handler on the event channel.
func (o *Orchestrator) Subscribe(h Handler) *Subscription {
	return o.events.Subscribe(h)
}

// State returns the current saver state.
func (o *Orchestrator) State() domain.SaverState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generation returns the committed generation.
func (o *Orchestrator) Generation() domain.Generation {
	return o.tracker.Generation()
}

// Dirty reports whether the document changed since the last commit.
func (o *Orchestrator) Dirty() bool {
	return o.tracker.Dirty()
}

// Destroy stops the scheduler, detaches the event channel, and forces the
// state machine into its terminal sink. An outstanding backend call is not
// aborted; its completion is still processed but drives no further action.
// Idempotent.
func (o *Orchestrator) Destroy() {
	o.mu.Lock()
	if o.state == domain.StateDestroyed {
		o.mu.Unlock()
		return
	}
	o.state = domain.StateDestroyed
	parked := o.pending
	o.pending = nil
	o.mu.Unlock()

	o.sched.Stop()
	failWaiters(parked, domain.ErrDestroyed)
	o.events.Close()
	o.logger.Info("saver destroyed")
}

func (o *Orchestrator) destroyed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == domain.StateDestroyed
}

// deliver resolves every waiter of a settled cycle. Waiter channels are
// buffered, so delivery never blocks on an abandoned wait.
func deliver(c *saveCycle, err error) {
	for _, ch := range c.waiters {
		ch <- err
	}
}

func failWaiters(c *saveCycle, err error) {
	if c == nil {
		return
	}
	deliver(c, err)
}
