package model

import (
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan represents a purchasable credit package with a fixed validity window,
// credit allotment, and price in BRL.
type Plan struct {
	ID           string
	Name         string
	Credits      int64
	Price        decimal.Decimal
	ValidityDays int
	Active       bool
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, credits int64, price decimal.Decimal, validityDays int) (*Plan, error) {
	if name == "" || credits <= 0 || validityDays <= 0 || price.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Credits:      credits,
		Price:        price,
		ValidityDays: validityDays,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}
