// Package fs implements a local-file backend. The document is written next
// to a JSON manifest that carries the stored generation, both with atomic
// tmp+rename writes so a crash never leaves a half-written store.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

const (
	documentFileName = "document.xml"
	manifestFileName = "manifest.json"
)

// manifest is the JSON sidecar persisted next to the document.
type manifest struct {
	Generation domain.Generation `json:"generation"`
	SavedAt    time.Time         `json:"saved_at"`
	Size       int               `json:"size"`
}

// Store implements ports.Backend against a directory on the local file
// system. A concurrent writer to the same directory (another editor
// instance) is detected as a conflict through the manifest generation.
type Store struct {
	dir string

	mu   sync.Mutex
	seen domain.Generation // store generation observed at the last round-trip
}

// NewStore creates a local-file backend rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Initialize ensures the store directory exists and reads the current
// manifest if one is present.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("store dir: %w", err)
	}
	m, err := s.readManifest()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.seen = m.Generation
	s.mu.Unlock()
	return nil
}

// Save writes the snapshot and advances the manifest generation. A manifest
// already ahead of fromGeneration means another writer got there first and
// is reported as a conflict.
func (s *Store) Save(ctx context.Context, snapshot []byte, fromGeneration domain.Generation, interactive bool) (domain.Generation, error) {
	m, err := s.readManifest()
	if err != nil {
		return 0, domain.Rejected(err)
	}
	if m.Generation > fromGeneration {
		return 0, domain.Conflict(fmt.Errorf("store at generation %d, client at %d", m.Generation, fromGeneration))
	}

	gen := fromGeneration + 1
	if err := atomicWrite(filepath.Join(s.dir, documentFileName), snapshot, 0o600); err != nil {
		return 0, domain.Rejected(fmt.Errorf("write document: %w", err))
	}
	next := manifest{
		Generation: gen,
		SavedAt:    time.Now().UTC(),
		Size:       len(snapshot),
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return 0, domain.Rejected(err)
	}
	if err := atomicWrite(filepath.Join(s.dir, manifestFileName), data, 0o600); err != nil {
		return 0, domain.Rejected(fmt.Errorf("write manifest: %w", err))
	}

	s.mu.Lock()
	s.seen = gen
	s.mu.Unlock()
	return gen, nil
}

// Recover re-reads the manifest after a conflict. If the store moved past
// the generation seen on the last round-trip, the local document must be
// reloaded.
func (s *Store) Recover(ctx context.Context) (domain.RecoveryOutcome, error) {
	m, err := s.readManifest()
	if err != nil {
		return domain.RecoveryLocalCurrent, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Generation > s.seen {
		s.seen = m.Generation
		return domain.RecoveryReloadRequired, nil
	}
	return domain.RecoveryLocalCurrent, nil
}

// Load returns the stored document and its generation. Used by the
// embedding application after a recovery that requires a reload.
func (s *Store) Load(ctx context.Context) ([]byte, domain.Generation, error) {
	m, err := s.readManifest()
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, documentFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, m.Generation, nil
		}
		return nil, 0, err
	}
	return data, m.Generation, nil
}

// readManifest returns the manifest, or a zero manifest if none exists.
func (s *Store) readManifest() (manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, nil
		}
		return manifest{}, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("manifest corrupt: %w", err)
	}
	return m, nil
}

// atomicWrite writes to a temp file and renames it into place.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var _ ports.Backend = (*Store)(nil)
