package repository

import (
	"context"

	"clinic-credit-service/internal/domain/model"
)

// TransactionRepository is the port for redemption records.
type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Transaction, error)
	ListByClinic(ctx context.Context, tx Tx, clinicID string, limit, offset int) ([]*model.Transaction, error)
	ListByUserPlan(ctx context.Context, tx Tx, userPlanID string, limit, offset int) ([]*model.Transaction, error)

	// --- Statistics read-only methods ---
	SumCreditsByClinic(ctx context.Context, tx Tx) (map[string]int64, error)
	CountByStatus(ctx context.Context, tx Tx) (map[string]int64, error)
}
