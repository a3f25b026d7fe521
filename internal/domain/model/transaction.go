package model

import (
	"crypto/rand"
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusValidated TransactionStatus = "validated"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusExpired   TransactionStatus = "expired"
)

// Transaction records a single redemption of credits at a clinic. Code
// is a ULID shown on receipts; ID is the internal UUID key.
type Transaction struct {
	ID                 string
	Code               string
	UserPlanID         string
	ClinicID           string
	Status             TransactionStatus
	CreditsUsed        int64
	Amount             decimal.Decimal
	ServiceDescription string
	ValidatedAt        *time.Time
	ValidatedBy        string
	CancelledAt        *time.Time
	CancelledBy        string
	CancelReason       string
	Refunded           bool
	ClientIP           string
	Latitude           *float64
	Longitude          *float64
	CreatedAt          time.Time
}

// NewTransaction creates a validated transaction for a completed
// redemption.
func NewTransaction(userPlanID, clinicID string, credits int64, amount decimal.Decimal, service string) (*Transaction, error) {
	if userPlanID == "" || clinicID == "" || credits <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Transaction{
		ID:                 uuid.NewString(),
		Code:               NewTransactionCode(now),
		UserPlanID:         userPlanID,
		ClinicID:           clinicID,
		Status:             TransactionStatusValidated,
		CreditsUsed:        credits,
		Amount:             amount,
		ServiceDescription: service,
		ValidatedAt:        &now,
		CreatedAt:          now,
	}, nil
}

// NewTransactionCode returns a ULID so codes sort by creation time.
func NewTransactionCode(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

// Cancellable reports whether the transaction may still be cancelled.
func (t *Transaction) Cancellable() bool {
	return t.Status == TransactionStatusValidated || t.Status == TransactionStatusPending
}

// Cancel marks the transaction cancelled. Refund bookkeeping is the
// caller's responsibility.
func (t *Transaction) Cancel(by, reason string, refunded bool) error {
	if reason == "" {
		return domain.ErrInvalidArgument
	}
	if !t.Cancellable() {
		return domain.ErrNotCancellable
	}
	now := time.Now()
	t.Status = TransactionStatusCancelled
	t.CancelledAt = &now
	t.CancelledBy = by
	t.CancelReason = reason
	t.Refunded = refunded
	return nil
}
