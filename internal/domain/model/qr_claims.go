package model

import (
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
)

// QRClaims is the payload carried by a signed QR token. The nonce makes
// each token single-use.
type QRClaims struct {
	PatientID  string
	UserPlanID string
	Nonce      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

func NewQRClaims(patientID, userPlanID string, ttl time.Duration) (*QRClaims, error) {
	if patientID == "" || userPlanID == "" || ttl <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &QRClaims{
		PatientID:  patientID,
		UserPlanID: userPlanID,
		Nonce:      uuid.NewString(),
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

func (c *QRClaims) Expired(at time.Time) bool { return at.After(c.ExpiresAt) }
