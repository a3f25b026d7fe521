package repository

import (
	"context"

	"clinic-credit-service/internal/domain/model"
)

// ClinicRepository is the port for clinics.
type ClinicRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Clinic) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Clinic, error)
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.Clinic, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Clinic, error)
}
