package repository

import (
	"context"
	"time"

	"clinic-credit-service/internal/domain/model"
)

// UserPlanRepository is the port for purchased credit packages.
type UserPlanRepository interface {
	Save(ctx context.Context, tx Tx, up *model.UserPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserPlan, error)
	FindActiveByPatient(ctx context.Context, tx Tx, patientID string) ([]*model.UserPlan, error)

	// DebitCredits atomically subtracts amount from the balance. It
	// returns false without error when the balance is too low.
	DebitCredits(ctx context.Context, tx Tx, id string, amount int64) (bool, error)
	// RefundCredits restores credits, capped at the original grant.
	RefundCredits(ctx context.Context, tx Tx, id string, amount int64) error

	// DeactivateExpired flips Active off for plans past their expiry
	// and returns how many rows changed.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int64, error)
	FindExpiring(ctx context.Context, tx Tx, withinDays int) ([]*model.UserPlan, error)

	// TotalRemainingCredits sums the balance across active plans.
	TotalRemainingCredits(ctx context.Context, tx Tx) (int64, error)
}
