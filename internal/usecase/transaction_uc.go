package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

// CancelRequest describes an administrative cancellation.
type CancelRequest struct {
	TransactionID string
	CancelledBy   string
	Reason        string
	// Refund restores the debited credits. Defaults to true at the API
	// edge; the usecase takes it as given.
	Refund bool
}

// Compile-time check
var _ TransactionUseCase = (*transactionUC)(nil)

type TransactionUseCase interface {
	// Cancel voids a validated transaction and optionally refunds its
	// credits, capped at the plan's original grant.
	Cancel(ctx context.Context, req CancelRequest) (*model.Transaction, error)
	Get(ctx context.Context, id string) (*model.Transaction, error)
	GetByCode(ctx context.Context, code string) (*model.Transaction, error)
	ListByClinic(ctx context.Context, clinicID string, limit, offset int) ([]*model.Transaction, error)
	ListByUserPlan(ctx context.Context, userPlanID string, limit, offset int) ([]*model.Transaction, error)
}

type transactionUC struct {
	tm        repository.TransactionManager
	txRepo    repository.TransactionRepository
	userPlans repository.UserPlanRepository
	log       *zerolog.Logger
}

func NewTransactionUseCase(tm repository.TransactionManager, txRepo repository.TransactionRepository, userPlans repository.UserPlanRepository, logger *zerolog.Logger) *transactionUC {
	return &transactionUC{tm: tm, txRepo: txRepo, userPlans: userPlans, log: logger}
}

func (u *transactionUC) Cancel(ctx context.Context, req CancelRequest) (*model.Transaction, error) {
	if req.TransactionID == "" || req.Reason == "" {
		return nil, domain.ErrInvalidArgument
	}

	var cancelled *model.Transaction
	txOpt := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpt, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.txRepo.FindByID(ctx, tx, req.TransactionID)
		if err != nil {
			return err
		}
		if err := t.Cancel(req.CancelledBy, req.Reason, req.Refund); err != nil {
			return err
		}
		if req.Refund {
			if err := u.userPlans.RefundCredits(ctx, tx, t.UserPlanID, t.CreditsUsed); err != nil {
				return err
			}
		}
		if err := u.txRepo.Save(ctx, tx, t); err != nil {
			return err
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("transaction_id", cancelled.ID).Bool("refunded", cancelled.Refunded).
		Str("reason", cancelled.CancelReason).Msg("transaction cancelled")
	return cancelled, nil
}

func (u *transactionUC) Get(ctx context.Context, id string) (*model.Transaction, error) {
	return u.txRepo.FindByID(ctx, repository.NoTX, id)
}

func (u *transactionUC) GetByCode(ctx context.Context, code string) (*model.Transaction, error) {
	return u.txRepo.FindByCode(ctx, repository.NoTX, code)
}

func (u *transactionUC) ListByClinic(ctx context.Context, clinicID string, limit, offset int) ([]*model.Transaction, error) {
	return u.txRepo.ListByClinic(ctx, repository.NoTX, clinicID, normalizePage(limit), offset)
}

func (u *transactionUC) ListByUserPlan(ctx context.Context, userPlanID string, limit, offset int) ([]*model.Transaction, error) {
	return u.txRepo.ListByUserPlan(ctx, repository.NoTX, userPlanID, normalizePage(limit), offset)
}

func normalizePage(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
