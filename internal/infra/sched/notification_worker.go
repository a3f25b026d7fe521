package sched

import (
	"context"
	"time"

	"clinic-credit-service/internal/usecase"

	"github.com/rs/zerolog"
)

// NotificationWorker periodically warns patients about plans that are
// about to expire.
type NotificationWorker struct {
	interval   time.Duration
	withinDays int
	notifUC    usecase.NotificationUseCase
	log        *zerolog.Logger
}

func NewNotificationWorker(interval time.Duration, withinDays int, notifUC usecase.NotificationUseCase, logger *zerolog.Logger) *NotificationWorker {
	compLog := logger.With().Str("component", "NotificationWorker").Logger()
	return &NotificationWorker{
		interval:   interval,
		withinDays: withinDays,
		notifUC:    notifUC,
		log:        &compLog,
	}
}

func (w *NotificationWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting notification worker")
	// Run once on startup, then on every tick
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping notification worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *NotificationWorker) runCheck(ctx context.Context) {
	sent, err := w.notifUC.NotifyExpiring(ctx, w.withinDays)
	if err != nil {
		w.log.Error().Err(err).Msg("notification check failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("expiry notifications sent")
	}
}
