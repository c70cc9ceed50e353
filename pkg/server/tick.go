package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunwarden/sunwarden/pkg/log"
)

// runLoop drives the control loop until the context is canceled.
func (s *Server) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// run once immediately so a fresh deploy doesn't wait a full interval
	s.runTick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick performs one sample/reconcile/persist pass. Storage and notifier
// failures are logged and skipped so a flaky dependency never stops the
// loop; only a failed sample aborts the tick.
func (s *Server) runTick(ctx context.Context) {
	settings, _, err := s.storage.GetSettings(ctx)
	if err != nil {
		// keep controlling with default settings rather than stalling
		log.Ctx(ctx).WarnContext(ctx, "failed to load settings", slog.Any("error", err))
	}
	if settings.Pause {
		return
	}

	sample, err := s.selector.Sample(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to sample power", slog.Any("error", err))
		return
	}

	if err := s.storage.StoreSample(ctx, sample); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to store sample", slog.Any("error", err))
	}

	events := s.controller.Reconcile(ctx, sample, s.registry)
	for _, ev := range events {
		log.Ctx(ctx).InfoContext(ctx, "device transition",
			slog.String("device", ev.Device),
			slog.String("action", string(ev.Action)),
			slog.String("reason", string(ev.Reason)),
			slog.Float64("surplusWatts", ev.SurplusWatts),
		)
		if err := s.storage.InsertEvent(ctx, ev); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to persist event",
				slog.String("device", ev.Device),
				slog.Any("error", err),
			)
		}
		if settings.DryRun {
			continue
		}
		if err := s.notifier.PublishTransition(ctx, ev); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to publish transition",
				slog.String("device", ev.Device),
				slog.Any("error", err),
			)
		}
	}
}
