package docsave

import (
	"fmt"
	"time"

	"github.com/bft-labs/docsave/internal/domain"
)

// Config holds the configuration for a Saver. It is captured at
// construction and never mutated afterward; runtime interval changes go
// through [Saver.SetAutosaveInterval], which adjusts only the scheduler.
type Config struct {
	// AutosaveInterval is the initial interval between scheduled saves.
	// Zero disables autosave. Backends that opt out of autosave force this
	// to zero regardless.
	AutosaveInterval time.Duration
}

// DefaultConfig returns a Config with autosave disabled. Set
// AutosaveInterval to enable scheduled saves.
func DefaultConfig() Config {
	return Config{}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("%w: autosave interval must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
