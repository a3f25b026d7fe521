package repository

import (
	"context"

	"clinic-credit-service/internal/domain/model"
)

// PatientRepository is the port for patient accounts.
type PatientRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Patient) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Patient, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Patient, error)
	CountPatients(ctx context.Context, tx Tx) (int64, error)
}
