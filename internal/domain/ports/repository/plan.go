package repository

import (
	"context"

	"clinic-credit-service/internal/domain/model"
)

// PlanRepository is the port for purchasable credit plans.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
