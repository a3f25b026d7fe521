package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Totals(ctx context.Context) (patients int64, remainingCredits int64, err error)
	RedemptionsByStatus(ctx context.Context) (map[string]int64, error)
	CreditsByClinic(ctx context.Context) (map[string]int64, error)
}

type statsUC struct {
	patients  repository.PatientRepository
	userPlans repository.UserPlanRepository
	txRepo    repository.TransactionRepository

	log *zerolog.Logger
}

func NewStatsUseCase(patients repository.PatientRepository, userPlans repository.UserPlanRepository, txRepo repository.TransactionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{patients: patients, userPlans: userPlans, txRepo: txRepo, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (int64, int64, error) {
	patients, err := s.patients.CountPatients(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, err
	}
	rem, err := s.userPlans.TotalRemainingCredits(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, err
	}
	return patients, rem, nil
}

func (s *statsUC) RedemptionsByStatus(ctx context.Context) (map[string]int64, error) {
	return s.txRepo.CountByStatus(ctx, repository.NoTX)
}

func (s *statsUC) CreditsByClinic(ctx context.Context) (map[string]int64, error) {
	return s.txRepo.SumCreditsByClinic(ctx, repository.NoTX)
}
