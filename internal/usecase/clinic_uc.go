package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Compile-time check
var _ ClinicUseCase = (*clinicUC)(nil)

type ClinicUseCase interface {
	Register(ctx context.Context, name, city, address string) (*model.Clinic, error)
	Get(ctx context.Context, id string) (*model.Clinic, error)
	ListActive(ctx context.Context) ([]*model.Clinic, error)
	Deactivate(ctx context.Context, id string) error
}

type clinicUC struct {
	clinics repository.ClinicRepository
	log     *zerolog.Logger
}

func NewClinicUseCase(clinics repository.ClinicRepository, logger *zerolog.Logger) *clinicUC {
	return &clinicUC{clinics: clinics, log: logger}
}

func (u *clinicUC) Register(ctx context.Context, name, city, address string) (*model.Clinic, error) {
	c, err := model.NewClinic("", name, city, address)
	if err != nil {
		return nil, err
	}
	if err := u.clinics.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	u.log.Info().Str("clinic_id", c.ID).Str("slug", c.Slug).Msg("clinic registered")
	return c, nil
}

func (u *clinicUC) Get(ctx context.Context, id string) (*model.Clinic, error) {
	return u.clinics.FindByID(ctx, repository.NoTX, id)
}

func (u *clinicUC) ListActive(ctx context.Context) ([]*model.Clinic, error) {
	return u.clinics.ListActive(ctx, repository.NoTX)
}

func (u *clinicUC) Deactivate(ctx context.Context, id string) error {
	c, err := u.clinics.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	c.Active = false
	return u.clinics.Save(ctx, repository.NoTX, c)
}
