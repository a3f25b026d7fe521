package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Compile-time check
var _ UserPlanUseCase = (*userPlanUC)(nil)

type UserPlanUseCase interface {
	// Grant assigns a plan's credits to a patient.
	Grant(ctx context.Context, patientID, planID string) (*model.UserPlan, error)
	Get(ctx context.Context, id string) (*model.UserPlan, error)
	ListActiveByPatient(ctx context.Context, patientID string) ([]*model.UserPlan, error)
	// FinishExpired deactivates plans past their expiry and returns how
	// many were closed.
	FinishExpired(ctx context.Context) (int64, error)
}

type userPlanUC struct {
	userPlans repository.UserPlanRepository
	plans     repository.PlanRepository
	patients  repository.PatientRepository
	log       *zerolog.Logger
}

func NewUserPlanUseCase(userPlans repository.UserPlanRepository, plans repository.PlanRepository, patients repository.PatientRepository, logger *zerolog.Logger) *userPlanUC {
	return &userPlanUC{userPlans: userPlans, plans: plans, patients: patients, log: logger}
}

func (u *userPlanUC) Grant(ctx context.Context, patientID, planID string) (*model.UserPlan, error) {
	patient, err := u.patients.FindByID(ctx, repository.NoTX, patientID)
	if err != nil {
		return nil, err
	}
	if !patient.Active {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrInvalidArgument
	}

	up, err := model.NewUserPlan("", patient.ID, plan)
	if err != nil {
		return nil, err
	}
	if err := u.userPlans.Save(ctx, repository.NoTX, up); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_plan_id", up.ID).Str("patient_id", patientID).
		Str("plan_id", planID).Int64("credits", up.Credits).Msg("plan granted")
	return up, nil
}

func (u *userPlanUC) Get(ctx context.Context, id string) (*model.UserPlan, error) {
	return u.userPlans.FindByID(ctx, repository.NoTX, id)
}

func (u *userPlanUC) ListActiveByPatient(ctx context.Context, patientID string) ([]*model.UserPlan, error) {
	return u.userPlans.FindActiveByPatient(ctx, repository.NoTX, patientID)
}

func (u *userPlanUC) FinishExpired(ctx context.Context) (int64, error) {
	n, err := u.userPlans.DeactivateExpired(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info().Int64("count", n).Msg("expired plans deactivated")
	}
	return n, nil
}
