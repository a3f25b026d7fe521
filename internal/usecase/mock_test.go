//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/adapter"
	"clinic-credit-service/internal/domain/ports/repository"
	"clinic-credit-service/internal/usecase"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction.
// Assign WithTxFunc to control behavior in specific tests.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Repositories
// =============================

type MockUserPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.UserPlan

	SaveFunc                  func(ctx context.Context, tx repository.Tx, up *model.UserPlan) error
	FindByIDFunc              func(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error)
	FindActiveByPatientFunc   func(ctx context.Context, tx repository.Tx, patientID string) ([]*model.UserPlan, error)
	DebitCreditsFunc          func(ctx context.Context, tx repository.Tx, id string, amount int64) (bool, error)
	RefundCreditsFunc         func(ctx context.Context, tx repository.Tx, id string, amount int64) error
	DeactivateExpiredFunc     func(ctx context.Context, tx repository.Tx, now time.Time) (int64, error)
	FindExpiringFunc          func(ctx context.Context, tx repository.Tx, withinDays int) ([]*model.UserPlan, error)
	TotalRemainingCreditsFunc func(ctx context.Context, tx repository.Tx) (int64, error)
}

var _ repository.UserPlanRepository = (*MockUserPlanRepo)(nil)

func NewMockUserPlanRepo() *MockUserPlanRepo {
	return &MockUserPlanRepo{data: make(map[string]*model.UserPlan)}
}

func (m *MockUserPlanRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPlan) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, up)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *up
	m.data[up.ID] = &cp
	return nil
}

func (m *MockUserPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *up
	return &cp, nil
}

func (m *MockUserPlanRepo) FindActiveByPatient(ctx context.Context, tx repository.Tx, patientID string) ([]*model.UserPlan, error) {
	if m.FindActiveByPatientFunc != nil {
		return m.FindActiveByPatientFunc(ctx, tx, patientID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserPlan
	for _, up := range m.data {
		if up.PatientID == patientID && up.Active {
			cp := *up
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockUserPlanRepo) DebitCredits(ctx context.Context, tx repository.Tx, id string, amount int64) (bool, error) {
	if m.DebitCreditsFunc != nil {
		return m.DebitCreditsFunc(ctx, tx, id, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.data[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if up.CreditsRemaining < amount {
		return false, nil
	}
	up.CreditsRemaining -= amount
	return true, nil
}

func (m *MockUserPlanRepo) RefundCredits(ctx context.Context, tx repository.Tx, id string, amount int64) error {
	if m.RefundCreditsFunc != nil {
		return m.RefundCreditsFunc(ctx, tx, id, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	up.CreditsRemaining += amount
	if up.CreditsRemaining > up.Credits {
		up.CreditsRemaining = up.Credits
	}
	return nil
}

func (m *MockUserPlanRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	if m.DeactivateExpiredFunc != nil {
		return m.DeactivateExpiredFunc(ctx, tx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, up := range m.data {
		if up.Active && now.After(up.ExpiresAt) {
			up.Active = false
			n++
		}
	}
	return n, nil
}

func (m *MockUserPlanRepo) FindExpiring(ctx context.Context, tx repository.Tx, withinDays int) ([]*model.UserPlan, error) {
	if m.FindExpiringFunc != nil {
		return m.FindExpiringFunc(ctx, tx, withinDays)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(time.Duration(withinDays) * 24 * time.Hour)
	var out []*model.UserPlan
	for _, up := range m.data {
		if up.Active && up.ExpiresAt.Before(cutoff) {
			cp := *up
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockUserPlanRepo) TotalRemainingCredits(ctx context.Context, tx repository.Tx) (int64, error) {
	if m.TotalRemainingCreditsFunc != nil {
		return m.TotalRemainingCreditsFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, up := range m.data {
		if up.Active {
			total += up.CreditsRemaining
		}
	}
	return total, nil
}

type MockTransactionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Transaction

	SaveFunc func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{data: make(map[string]*model.Transaction)}
}

func (m *MockTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.data[t.ID] = &cp
	return nil
}

func (m *MockTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.data {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionRepo) ListByClinic(ctx context.Context, tx repository.Tx, clinicID string, limit, offset int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, t := range m.data {
		if t.ClinicID == clinicID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTransactionRepo) ListByUserPlan(ctx context.Context, tx repository.Tx, userPlanID string, limit, offset int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, t := range m.data {
		if t.UserPlanID == userPlanID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTransactionRepo) SumCreditsByClinic(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	for _, t := range m.data {
		if t.Status == model.TransactionStatusValidated {
			out[t.ClinicID] += t.CreditsUsed
		}
	}
	return out, nil
}

func (m *MockTransactionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	for _, t := range m.data {
		out[string(t.Status)]++
	}
	return out, nil
}

type usedNonce struct {
	userPlanID string
	clinicID   string
	expiresAt  time.Time
}

type MockNonceRepo struct {
	mu   sync.Mutex
	used map[string]usedNonce

	MarkUsedFunc func(ctx context.Context, tx repository.Tx, nonce, userPlanID, clinicID string, expiresAt time.Time) error
}

var _ repository.NonceRepository = (*MockNonceRepo)(nil)

func NewMockNonceRepo() *MockNonceRepo {
	return &MockNonceRepo{used: make(map[string]usedNonce)}
}

func (m *MockNonceRepo) MarkUsed(ctx context.Context, tx repository.Tx, nonce, userPlanID, clinicID string, expiresAt time.Time) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, tx, nonce, userPlanID, clinicID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.used[nonce]; ok {
		return &domain.QRAlreadyUsedError{Nonce: nonce}
	}
	m.used[nonce] = usedNonce{userPlanID: userPlanID, clinicID: clinicID, expiresAt: expiresAt}
	return nil
}

// Used returns the stored record for a nonce.
func (m *MockNonceRepo) Used(nonce string) (usedNonce, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.used[nonce]
	return rec, ok
}

func (m *MockNonceRepo) DeleteExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for nonce, rec := range m.used {
		if rec.expiresAt.Before(cutoff) {
			delete(m.used, nonce)
			n++
		}
	}
	return n, nil
}

type MockNonceCache struct {
	mu   sync.Mutex
	seen map[string]bool

	SeenFunc func(ctx context.Context, nonce string) (bool, error)
	MarkFunc func(ctx context.Context, nonce string, ttl time.Duration) error
}

var _ repository.NonceCache = (*MockNonceCache)(nil)

func NewMockNonceCache() *MockNonceCache {
	return &MockNonceCache{seen: make(map[string]bool)}
}

func (m *MockNonceCache) Seen(ctx context.Context, nonce string) (bool, error) {
	if m.SeenFunc != nil {
		return m.SeenFunc(ctx, nonce)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[nonce], nil
}

func (m *MockNonceCache) Mark(ctx context.Context, nonce string, ttl time.Duration) error {
	if m.MarkFunc != nil {
		return m.MarkFunc(ctx, nonce, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[nonce] = true
	return nil
}

type MockClinicRepo struct {
	mu   sync.Mutex
	data map[string]*model.Clinic
}

var _ repository.ClinicRepository = (*MockClinicRepo)(nil)

func NewMockClinicRepo() *MockClinicRepo {
	return &MockClinicRepo{data: make(map[string]*model.Clinic)}
}

func (m *MockClinicRepo) Save(ctx context.Context, tx repository.Tx, c *model.Clinic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.data[c.ID] = &cp
	return nil
}

func (m *MockClinicRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockClinicRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.data {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockClinicRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Clinic
	for _, c := range m.data {
		if c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type MockPatientRepo struct {
	mu   sync.Mutex
	data map[string]*model.Patient
}

var _ repository.PatientRepository = (*MockPatientRepo)(nil)

func NewMockPatientRepo() *MockPatientRepo {
	return &MockPatientRepo{data: make(map[string]*model.Patient)}
}

func (m *MockPatientRepo) Save(ctx context.Context, tx repository.Tx, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *MockPatientRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPatientRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.data {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPatientRepo) CountPatients(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.Plan
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: make(map[string]*model.Plan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.data {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type MockNotificationLogRepo struct {
	mu   sync.Mutex
	sent map[string]bool
}

var _ repository.NotificationLogRepository = (*MockNotificationLogRepo)(nil)

func NewMockNotificationLogRepo() *MockNotificationLogRepo {
	return &MockNotificationLogRepo{sent: make(map[string]bool)}
}

func logKey(userPlanID, kind string, threshold int64) string {
	return fmt.Sprintf("%s|%s|%d", userPlanID, kind, threshold)
}

func (m *MockNotificationLogRepo) Save(ctx context.Context, tx repository.Tx, userPlanID, patientID, kind string, threshold int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[logKey(userPlanID, kind, threshold)] = true
	return nil
}

func (m *MockNotificationLogRepo) Exists(ctx context.Context, tx repository.Tx, userPlanID, kind string, threshold int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[logKey(userPlanID, kind, threshold)], nil
}

// =============================
// Adapters
// =============================

type MockSigner struct {
	SignFunc   func(claims *model.QRClaims) (string, error)
	VerifyFunc func(token string) (*model.QRClaims, error)

	mu     sync.Mutex
	tokens map[string]*model.QRClaims
	seq    int
}

var _ adapter.TokenSigner = (*MockSigner)(nil)

func NewMockSigner() *MockSigner {
	return &MockSigner{tokens: make(map[string]*model.QRClaims)}
}

func (m *MockSigner) Sign(claims *model.QRClaims) (string, error) {
	if m.SignFunc != nil {
		return m.SignFunc(claims)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	tok := "tok-" + claims.Nonce
	cp := *claims
	m.tokens[tok] = &cp
	return tok, nil
}

func (m *MockSigner) Verify(token string) (*model.QRClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidQR
	}
	cp := *claims
	return &cp, nil
}

type MockNotifier struct {
	mu   sync.Mutex
	Sent []string

	NotifyFunc func(ctx context.Context, recipient, subject, body string) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, recipient, subject, body)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, recipient+": "+subject)
	return nil
}

type MockEventPublisher struct {
	mu        sync.Mutex
	Published []string

	PublishFunc func(ctx context.Context, topic, key string, payload any) error
}

var _ adapter.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, key, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, topic+"/"+key)
	return nil
}

func (m *MockEventPublisher) Close() {}

// syncDispatcher runs submitted tasks inline so tests see side effects
// immediately.
type syncDispatcher struct{}

var _ usecase.Dispatcher = (*syncDispatcher)(nil)

func (syncDispatcher) Submit(task func(ctx context.Context) error) error {
	return task(context.Background())
}

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
