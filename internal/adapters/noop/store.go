// Package noop implements a demo backend that accepts every save without
// durability. It opts out of autosave: there is no point in periodically
// persisting to nowhere.
package noop

import (
	"context"
	"sync"

	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

// Store accepts saves and advances generations in memory only.
type Store struct {
	mu  sync.Mutex
	gen domain.Generation
}

// NewStore creates a demo backend.
func NewStore() *Store {
	return &Store{}
}

// Initialize succeeds immediately.
func (s *Store) Initialize(ctx context.Context) error { return nil }

// Save discards the snapshot and returns the next generation.
func (s *Store) Save(ctx context.Context, snapshot []byte, fromGeneration domain.Generation, interactive bool) (domain.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fromGeneration > s.gen {
		s.gen = fromGeneration
	}
	s.gen++
	return s.gen, nil
}

// Recover succeeds immediately; there is nothing to reconcile.
func (s *Store) Recover(ctx context.Context) (domain.RecoveryOutcome, error) {
	return domain.RecoveryLocalCurrent, nil
}

// AutosaveDisabled reports that this backend does not support autosave.
func (s *Store) AutosaveDisabled() bool { return true }

var (
	_ ports.Backend          = (*Store)(nil)
	_ ports.AutosaveDisabler = (*Store)(nil)
)
