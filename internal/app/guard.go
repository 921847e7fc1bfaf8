package app

import (
	"context"
	"time"

	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

// GuardConfig configures the connectivity guard.
type GuardConfig struct {
	// MaxAttempts is the total number of attempts per backend call,
	// including the first. Default: 3.
	MaxAttempts int

	// InitialDelay is the delay before the first retry. Default: 500ms.
	InitialDelay time.Duration

	// MaxDelay caps the backoff. Default: 10s.
	MaxDelay time.Duration
}

// DefaultGuardConfig returns a GuardConfig with sensible defaults.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxAttempts:  3,
		InitialDelay: DefaultBackoffInitial,
		MaxDelay:     DefaultBackoffMax,
	}
}

// Guard wraps a Backend and retries transport-level connectivity failures
// with exponential backoff before surfacing them. Conflicts, rejections,
// and every other failure kind pass through untouched; the orchestrator
// still treats a surfaced connectivity failure as one more save-failure
// kind and does no retrying of its own.
type Guard struct {
	backend ports.Backend
	cfg     GuardConfig
	logger  ports.Logger
}

// NewGuard creates a connectivity guard around backend.
func NewGuard(backend ports.Backend, cfg GuardConfig, logger ports.Logger) *Guard {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultBackoffInitial
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultBackoffMax
	}
	return &Guard{backend: backend, cfg: cfg, logger: logger}
}

// Initialize passes through to the wrapped backend.
func (g *Guard) Initialize(ctx context.Context) error {
	return g.backend.Initialize(ctx)
}

// Save calls the wrapped backend, retrying connectivity failures.
func (g *Guard) Save(ctx context.Context, snapshot []byte, from domain.Generation, interactive bool) (domain.Generation, error) {
	back := newBackoff(g.cfg.InitialDelay, g.cfg.MaxDelay)

	var gen domain.Generation
	var err error
	for attempt := 1; ; attempt++ {
		gen, err = g.backend.Save(ctx, snapshot, from, interactive)
		if err == nil || domain.Classify(err) != domain.FailureConnectivity {
			return gen, err
		}
		if attempt >= g.cfg.MaxAttempts {
			return gen, err
		}
		g.logger.Warn("save transport failure, retrying",
			ports.Err(err),
			ports.Int("attempt", attempt),
			ports.Duration("delay", back.Current()),
		)
		if werr := back.Wait(ctx); werr != nil {
			return gen, err
		}
	}
}

// Recover calls the wrapped backend, retrying connectivity failures.
func (g *Guard) Recover(ctx context.Context) (domain.RecoveryOutcome, error) {
	back := newBackoff(g.cfg.InitialDelay, g.cfg.MaxDelay)

	var out domain.RecoveryOutcome
	var err error
	for attempt := 1; ; attempt++ {
		out, err = g.backend.Recover(ctx)
		if err == nil || domain.Classify(err) != domain.FailureConnectivity {
			return out, err
		}
		if attempt >= g.cfg.MaxAttempts {
			return out, err
		}
		g.logger.Warn("recover transport failure, retrying",
			ports.Err(err),
			ports.Int("attempt", attempt),
		)
		if werr := back.Wait(ctx); werr != nil {
			return out, err
		}
	}
}

// AutosaveDisabled delegates to the wrapped backend when it advertises the
// capability.
func (g *Guard) AutosaveDisabled() bool {
	if d, ok := g.backend.(ports.AutosaveDisabler); ok {
		return d.AutosaveDisabled()
	}
	return false
}

// Ensure Guard remains a valid Backend.
var _ ports.Backend = (*Guard)(nil)
