//go:build !integration

package web_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/usecase"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// Function-field mocks. Handlers under test only touch the fields a
// test sets; anything else falls through to ErrNotFound.

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string) (bool, error)
}

var _ usecase.RateLimiter = (*MockRateLimiter)(nil)

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key)
	}
	return true, nil
}

type MockQRTokenUC struct {
	IssueFunc func(ctx context.Context, patientID, userPlanID string, ttl time.Duration) (string, *model.QRClaims, error)
}

var _ usecase.QRTokenUseCase = (*MockQRTokenUC)(nil)

func (m *MockQRTokenUC) Issue(ctx context.Context, patientID, userPlanID string, ttl time.Duration) (string, *model.QRClaims, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, patientID, userPlanID, ttl)
	}
	return "", nil, domain.ErrNotFound
}

type MockRedemptionUC struct {
	RedeemFunc func(ctx context.Context, req usecase.RedeemRequest) (*usecase.RedemptionResult, error)
}

var _ usecase.RedemptionUseCase = (*MockRedemptionUC)(nil)

func (m *MockRedemptionUC) Redeem(ctx context.Context, req usecase.RedeemRequest) (*usecase.RedemptionResult, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, req)
	}
	return nil, domain.ErrInvalidQR
}

type MockTransactionUC struct {
	CancelFunc         func(ctx context.Context, req usecase.CancelRequest) (*model.Transaction, error)
	GetFunc            func(ctx context.Context, id string) (*model.Transaction, error)
	GetByCodeFunc      func(ctx context.Context, code string) (*model.Transaction, error)
	ListByClinicFunc   func(ctx context.Context, clinicID string, limit, offset int) ([]*model.Transaction, error)
	ListByUserPlanFunc func(ctx context.Context, userPlanID string, limit, offset int) ([]*model.Transaction, error)
}

var _ usecase.TransactionUseCase = (*MockTransactionUC)(nil)

func (m *MockTransactionUC) Cancel(ctx context.Context, req usecase.CancelRequest) (*model.Transaction, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, req)
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionUC) Get(ctx context.Context, id string) (*model.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionUC) GetByCode(ctx context.Context, code string) (*model.Transaction, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionUC) ListByClinic(ctx context.Context, clinicID string, limit, offset int) ([]*model.Transaction, error) {
	if m.ListByClinicFunc != nil {
		return m.ListByClinicFunc(ctx, clinicID, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionUC) ListByUserPlan(ctx context.Context, userPlanID string, limit, offset int) ([]*model.Transaction, error) {
	if m.ListByUserPlanFunc != nil {
		return m.ListByUserPlanFunc(ctx, userPlanID, limit, offset)
	}
	return nil, nil
}

type MockUserPlanUC struct {
	GrantFunc               func(ctx context.Context, patientID, planID string) (*model.UserPlan, error)
	GetFunc                 func(ctx context.Context, id string) (*model.UserPlan, error)
	ListActiveByPatientFunc func(ctx context.Context, patientID string) ([]*model.UserPlan, error)
	FinishExpiredFunc       func(ctx context.Context) (int64, error)
}

var _ usecase.UserPlanUseCase = (*MockUserPlanUC)(nil)

func (m *MockUserPlanUC) Grant(ctx context.Context, patientID, planID string) (*model.UserPlan, error) {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, patientID, planID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserPlanUC) Get(ctx context.Context, id string) (*model.UserPlan, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserPlanUC) ListActiveByPatient(ctx context.Context, patientID string) ([]*model.UserPlan, error) {
	if m.ListActiveByPatientFunc != nil {
		return m.ListActiveByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockUserPlanUC) FinishExpired(ctx context.Context) (int64, error) {
	if m.FinishExpiredFunc != nil {
		return m.FinishExpiredFunc(ctx)
	}
	return 0, nil
}

type MockPlanUC struct {
	CreateFunc     func(ctx context.Context, name string, credits int64, price decimal.Decimal, validityDays int) (*model.Plan, error)
	GetFunc        func(ctx context.Context, id string) (*model.Plan, error)
	ListActiveFunc func(ctx context.Context) ([]*model.Plan, error)
	DeactivateFunc func(ctx context.Context, id string) error
}

var _ usecase.PlanUseCase = (*MockPlanUC)(nil)

func (m *MockPlanUC) Create(ctx context.Context, name string, credits int64, price decimal.Decimal, validityDays int) (*model.Plan, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, credits, price, validityDays)
	}
	return nil, domain.ErrOperationFailed
}

func (m *MockPlanUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanUC) ListActive(ctx context.Context) ([]*model.Plan, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *MockPlanUC) Deactivate(ctx context.Context, id string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return domain.ErrNotFound
}

type MockClinicUC struct {
	RegisterFunc   func(ctx context.Context, name, city, address string) (*model.Clinic, error)
	GetFunc        func(ctx context.Context, id string) (*model.Clinic, error)
	ListActiveFunc func(ctx context.Context) ([]*model.Clinic, error)
	DeactivateFunc func(ctx context.Context, id string) error
}

var _ usecase.ClinicUseCase = (*MockClinicUC)(nil)

func (m *MockClinicUC) Register(ctx context.Context, name, city, address string) (*model.Clinic, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, city, address)
	}
	return nil, domain.ErrOperationFailed
}

func (m *MockClinicUC) Get(ctx context.Context, id string) (*model.Clinic, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockClinicUC) ListActive(ctx context.Context) ([]*model.Clinic, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *MockClinicUC) Deactivate(ctx context.Context, id string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return domain.ErrNotFound
}

type MockPatientUC struct {
	RegisterFunc func(ctx context.Context, fullName, email, phone string) (*model.Patient, error)
	GetFunc      func(ctx context.Context, id string) (*model.Patient, error)
	TouchFunc    func(ctx context.Context, id string) error
}

var _ usecase.PatientUseCase = (*MockPatientUC)(nil)

func (m *MockPatientUC) Register(ctx context.Context, fullName, email, phone string) (*model.Patient, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, fullName, email, phone)
	}
	return nil, domain.ErrOperationFailed
}

func (m *MockPatientUC) Get(ctx context.Context, id string) (*model.Patient, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockPatientUC) Touch(ctx context.Context, id string) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id)
	}
	return nil
}

type MockStatsUC struct {
	TotalsFunc              func(ctx context.Context) (int64, int64, error)
	RedemptionsByStatusFunc func(ctx context.Context) (map[string]int64, error)
	CreditsByClinicFunc     func(ctx context.Context) (map[string]int64, error)
}

var _ usecase.StatsUseCase = (*MockStatsUC)(nil)

func (m *MockStatsUC) Totals(ctx context.Context) (int64, int64, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	return 0, 0, nil
}

func (m *MockStatsUC) RedemptionsByStatus(ctx context.Context) (map[string]int64, error) {
	if m.RedemptionsByStatusFunc != nil {
		return m.RedemptionsByStatusFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (m *MockStatsUC) CreditsByClinic(ctx context.Context) (map[string]int64, error) {
	if m.CreditsByClinicFunc != nil {
		return m.CreditsByClinicFunc(ctx)
	}
	return map[string]int64{}, nil
}
