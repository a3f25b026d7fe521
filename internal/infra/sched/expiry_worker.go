package sched

import (
	"context"
	"time"

	"clinic-credit-service/internal/domain/ports/repository"
	"clinic-credit-service/internal/infra/metrics"
	"clinic-credit-service/internal/usecase"

	"github.com/rs/zerolog"
)

// ExpiryWorker periodically closes expired user plans and prunes spent
// nonces whose tokens are long past expiry.
type ExpiryWorker struct {
	interval   time.Duration
	userPlanUC usecase.UserPlanUseCase
	nonces     repository.NonceRepository
	log        *zerolog.Logger
}

// Spent nonces stay around for a day past token expiry so audits can
// still see recent replays.
const noncePruneGrace = 24 * time.Hour

func NewExpiryWorker(interval time.Duration, userPlanUC usecase.UserPlanUseCase, nonces repository.NonceRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:   interval,
		userPlanUC: userPlanUC,
		nonces:     nonces,
		log:        &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.userPlanUC.FinishExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
			}
			if n > 0 {
				metrics.AddPlansExpired(n)
				w.log.Info().Int64("count", n).Msg("expired plans finished")
			}

			cutoff := time.Now().Add(-noncePruneGrace)
			pruned, err := w.nonces.DeleteExpiredBefore(ctx, repository.NoTX, cutoff)
			if err != nil {
				w.log.Error().Err(err).Msg("nonce prune error")
			} else if pruned > 0 {
				w.log.Info().Int64("count", pruned).Msg("stale nonces pruned")
			}
		}
	}
}
