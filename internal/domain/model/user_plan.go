package model

import (
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
)

// UserPlan is a patient's purchased credit package. CreditsRemaining is
// always within [0, Credits].
type UserPlan struct {
	ID               string
	PatientID        string
	PlanID           string
	Credits          int64
	CreditsRemaining int64
	ExpiresAt        time.Time
	Active           bool
	CreatedAt        time.Time
}

// NewUserPlan grants a plan to a patient, computing expiry from the
// plan's validity window.
func NewUserPlan(id, patientID string, plan *Plan) (*UserPlan, error) {
	if patientID == "" || plan == nil {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &UserPlan{
		ID:               id,
		PatientID:        patientID,
		PlanID:           plan.ID,
		Credits:          plan.Credits,
		CreditsRemaining: plan.Credits,
		ExpiresAt:        now.Add(time.Duration(plan.ValidityDays) * 24 * time.Hour),
		Active:           true,
		CreatedAt:        now,
	}, nil
}

func (up *UserPlan) CreditsUsed() int64 { return up.Credits - up.CreditsRemaining }

func (up *UserPlan) Expired(at time.Time) bool { return at.After(up.ExpiresAt) }

// Redeemable reports whether the plan can back a redemption at the
// given instant, ignoring the balance check.
func (up *UserPlan) Redeemable(at time.Time) bool {
	return up.Active && !up.Expired(at)
}

// Debit reduces the balance on the in-memory copy. Persistence uses a
// guarded UPDATE; this is for callers that already hold a locked row.
func (up *UserPlan) Debit(amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidArgument
	}
	if up.CreditsRemaining < amount {
		return &domain.InsufficientCreditsError{Available: up.CreditsRemaining, Required: amount}
	}
	up.CreditsRemaining -= amount
	return nil
}

// Refund restores credits, capped so the balance never exceeds the
// original grant.
func (up *UserPlan) Refund(amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidArgument
	}
	up.CreditsRemaining += amount
	if up.CreditsRemaining > up.Credits {
		up.CreditsRemaining = up.Credits
	}
	return nil
}
