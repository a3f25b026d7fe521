package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Compile-time check
var _ PatientUseCase = (*patientUC)(nil)

type PatientUseCase interface {
	Register(ctx context.Context, fullName, email, phone string) (*model.Patient, error)
	Get(ctx context.Context, id string) (*model.Patient, error)
	Touch(ctx context.Context, id string) error
}

type patientUC struct {
	patients repository.PatientRepository
	log      *zerolog.Logger
}

func NewPatientUseCase(patients repository.PatientRepository, logger *zerolog.Logger) *patientUC {
	return &patientUC{patients: patients, log: logger}
}

func (u *patientUC) Register(ctx context.Context, fullName, email, phone string) (*model.Patient, error) {
	existing, err := u.patients.FindByEmail(ctx, repository.NoTX, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	p, err := model.NewPatient("", fullName, email, phone)
	if err != nil {
		return nil, err
	}
	if err := u.patients.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	u.log.Info().Str("patient_id", p.ID).Msg("patient registered")
	return p, nil
}

func (u *patientUC) Get(ctx context.Context, id string) (*model.Patient, error) {
	return u.patients.FindByID(ctx, repository.NoTX, id)
}

func (u *patientUC) Touch(ctx context.Context, id string) error {
	p, err := u.patients.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	p.Touch()
	return u.patients.Save(ctx, repository.NoTX, p)
}
