package model

import (
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
)

// Patient is a domain entity representing a credit-holding patient.
type Patient struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	Active       bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewPatient(id, fullName, email, phone string) (*Patient, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if fullName == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Patient{
		ID:           id,
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		Active:       true,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (p *Patient) IsZero() bool { return p == nil || p.ID == "" }
func (p *Patient) Touch()       { p.LastActiveAt = time.Now() }
