package app

import (
	"sync"

	"github.com/bft-labs/docsave/internal/domain"
)

// Tracker maintains the last generation known to be durably saved and
// whether the in-memory document has changed since.
//
// The orchestrator is the single writer of commits; the editing layer only
// calls MarkDirty. All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	committed domain.Generation
	mutations uint64
	savedAt   uint64
}

// Snapshot is an atomic view of the tracker taken at the start of a save
// cycle. The mutation mark inside it lets a later commit decide whether the
// dirty flag may be cleared.
type Snapshot struct {
	Generation domain.Generation
	Dirty      bool

	mark uint64
}

// NewTracker creates a tracker at generation zero with a clean document.
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkDirty records a document mutation. Called by the editing layer on
// every change; cheap enough to call unconditionally.
func (t *Tracker) MarkDirty() {
	t.mu.Lock()
	t.mutations++
	t.mu.Unlock()
}

// Snapshot returns the committed generation and dirty flag atomically.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Generation: t.committed,
		Dirty:      t.mutations > t.savedAt,
		mark:       t.mutations,
	}
}

// Commit records a confirmed successful save of the content captured at
// snap. The generation must strictly advance; a stale commit indicates a
// race the orchestrator is supposed to prevent and is returned as
// domain.ErrStaleCommit rather than silently ignored.
//
// The dirty flag is cleared only up to the mutations covered by snap, so
// edits made while the save was in flight keep the document dirty.
func (t *Tracker) Commit(gen domain.Generation, snap Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen <= t.committed {
		return domain.ErrStaleCommit
	}
	t.committed = gen
	if snap.mark > t.savedAt {
		t.savedAt = snap.mark
	}
	return nil
}

// Generation returns the committed generation.
func (t *Tracker) Generation() domain.Generation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed
}

// Dirty reports whether the document changed since the last commit.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutations > t.savedAt
}
