package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/types"
)

// Selector presents a single reliable Sample operation backed by either the
// primary or secondary provider. It falls back to secondary the moment the
// primary fails and periodically re-probes the primary for recovery.
//
// All exported methods are safe for concurrent use. The blocking provider
// calls happen outside the lock so a slow inverter never stalls readers.
type Selector struct {
	primary   Provider
	secondary Provider

	mu              sync.Mutex
	mode            types.SourceMode
	lastHealthCheck time.Time
	checkInterval   time.Duration

	now func() time.Time
}

// NewSelector builds a selector and performs the initial health probe against
// the primary to pick the starting mode.
func NewSelector(ctx context.Context, primary, secondary Provider, checkInterval time.Duration) *Selector {
	s := &Selector{
		primary:       primary,
		secondary:     secondary,
		checkInterval: checkInterval,
		now:           time.Now,
	}
	s.init(ctx)
	return s
}

func (s *Selector) init(ctx context.Context) {
	mode := types.SourceModeSecondary
	if err := s.primary.HealthCheck(ctx); err == nil {
		mode = types.SourceModePrimary
	} else {
		log.Ctx(ctx).InfoContext(ctx, "primary source unavailable at startup, using secondary", slog.Any("error", err))
	}
	s.mu.Lock()
	s.mode = mode
	s.lastHealthCheck = s.now()
	s.mu.Unlock()
}

// Mode returns the currently active source mode.
func (s *Selector) Mode() types.SourceMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// LastHealthCheckAt returns when the primary was last probed.
func (s *Selector) LastHealthCheckAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHealthCheck
}

// ForceMode overrides the active mode, for demos and testing. The override
// takes effect on the next Sample call; the next naturally scheduled health
// check can still change the mode again. An empty mode clears the override by
// scheduling an immediate health check.
func (s *Selector) ForceMode(ctx context.Context, mode types.SourceMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == "" {
		s.lastHealthCheck = time.Time{}
		return
	}
	if mode != s.mode {
		log.Ctx(ctx).InfoContext(ctx, "source mode forced",
			slog.String("from", string(s.mode)),
			slog.String("to", string(mode)),
		)
	}
	s.mode = mode
	// hold the forced mode for a full interval before re-probing
	s.lastHealthCheck = s.now()
}

// Sample returns the current power reading from the active provider. Primary
// failures are recovered by switching to secondary and never surface to the
// caller; a secondary failure is a bug and is returned as a hard error.
func (s *Selector) Sample(ctx context.Context) (types.PowerSample, error) {
	s.maybeCheckHealth(ctx)

	if s.Mode() == types.SourceModePrimary {
		sample, err := s.primary.Sample(ctx)
		switch {
		case err != nil:
			log.Ctx(ctx).WarnContext(ctx, "primary sample failed, switching to secondary", slog.Any("error", err))
			s.setMode(ctx, types.SourceModeSecondary)
		case sample.Degenerate():
			// an all-zero reading can be a real calm night or a wedged
			// inverter; only fall back when the probe also fails
			if herr := s.primary.HealthCheck(ctx); herr != nil {
				log.Ctx(ctx).WarnContext(ctx, "primary returned zeros and failed probe, switching to secondary", slog.Any("error", herr))
				s.setMode(ctx, types.SourceModeSecondary)
			} else {
				return sample, nil
			}
		default:
			return sample, nil
		}
	}

	sample, err := s.secondary.Sample(ctx)
	if err != nil {
		// secondary must never fail by contract, surface it loudly
		log.Ctx(ctx).ErrorContext(ctx, "secondary source failed", slog.Any("error", err))
		return types.PowerSample{}, fmt.Errorf("secondary source failed: %w", err)
	}
	return sample, nil
}

// maybeCheckHealth runs a health check if at least checkInterval has passed
// since the last one. The probe itself happens outside the lock.
func (s *Selector) maybeCheckHealth(ctx context.Context) {
	s.mu.Lock()
	if s.now().Sub(s.lastHealthCheck) < s.checkInterval {
		s.mu.Unlock()
		return
	}
	// claim this check before probing so concurrent callers don't stack probes
	s.lastHealthCheck = s.now()
	s.mu.Unlock()

	mode := types.SourceModeSecondary
	if err := s.primary.HealthCheck(ctx); err == nil {
		mode = types.SourceModePrimary
	}
	s.setMode(ctx, mode)
}

// setMode stores the mode, logging only on an actual transition.
func (s *Selector) setMode(ctx context.Context, mode types.SourceMode) {
	s.mu.Lock()
	changed := s.mode != mode
	s.mode = mode
	s.mu.Unlock()
	if changed {
		log.Ctx(ctx).InfoContext(ctx, "source mode changed", slog.String("mode", string(mode)))
	}
}
