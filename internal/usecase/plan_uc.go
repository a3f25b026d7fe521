package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, name string, credits int64, price decimal.Decimal, validityDays int) (*model.Plan, error)
	Get(ctx context.Context, id string) (*model.Plan, error)
	ListActive(ctx context.Context) ([]*model.Plan, error)
	Deactivate(ctx context.Context, id string) error
}

type planUC struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, log: logger}
}

func (u *planUC) Create(ctx context.Context, name string, credits int64, price decimal.Decimal, validityDays int) (*model.Plan, error) {
	p, err := model.NewPlan("", name, credits, price, validityDays)
	if err != nil {
		return nil, err
	}
	if err := u.plans.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	u.log.Info().Str("plan_id", p.ID).Str("name", p.Name).Msg("plan created")
	return p, nil
}

func (u *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	return u.plans.FindByID(ctx, repository.NoTX, id)
}

func (u *planUC) ListActive(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListActive(ctx, repository.NoTX)
}

func (u *planUC) Deactivate(ctx context.Context, id string) error {
	p, err := u.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	p.Active = false
	return u.plans.Save(ctx, repository.NoTX, p)
}
