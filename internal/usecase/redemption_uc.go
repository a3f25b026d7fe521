package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/adapter"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Dispatcher runs fire-and-forget work off the request path.
type Dispatcher interface {
	Submit(task func(ctx context.Context) error) error
}

// RedeemRequest carries everything a clinic submits when scanning a QR
// token.
type RedeemRequest struct {
	Token              string
	ClinicID           string
	Credits            int64
	Amount             decimal.Decimal
	ServiceDescription string
	ValidatedBy        string
	ClientIP           string
	Latitude           *float64
	Longitude          *float64
}

// RedemptionEvent is the payload published after a successful
// redemption.
type RedemptionEvent struct {
	TransactionID    string    `json:"transaction_id"`
	Code             string    `json:"code"`
	PatientID        string    `json:"patient_id"`
	UserPlanID       string    `json:"user_plan_id"`
	ClinicID         string    `json:"clinic_id"`
	CreditsUsed      int64     `json:"credits_used"`
	CreditsRemaining int64     `json:"credits_remaining"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// RedemptionResult is what the clinic sees after a successful
// redemption: who the patient is, what the plan has left, and the
// transaction record.
type RedemptionResult struct {
	Transaction      *model.Transaction
	PatientID        string
	PatientName      string
	CreditsRemaining int64
}

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

type RedemptionUseCase interface {
	// Redeem validates a QR token and debits the patient's credits in
	// a single transaction. All gates pass or nothing is written.
	Redeem(ctx context.Context, req RedeemRequest) (*RedemptionResult, error)
}

type redemptionUC struct {
	tm         repository.TransactionManager
	userPlans  repository.UserPlanRepository
	patients   repository.PatientRepository
	clinics    repository.ClinicRepository
	nonces     repository.NonceRepository
	txRepo     repository.TransactionRepository
	signer     adapter.TokenSigner
	nonceCache repository.NonceCache
	notifier   NotificationUseCase
	events     adapter.EventPublisher
	dispatch   Dispatcher
	log        *zerolog.Logger
}

func NewRedemptionUseCase(
	tm repository.TransactionManager,
	userPlans repository.UserPlanRepository,
	patients repository.PatientRepository,
	clinics repository.ClinicRepository,
	nonces repository.NonceRepository,
	txRepo repository.TransactionRepository,
	signer adapter.TokenSigner,
	nonceCache repository.NonceCache,
	notifier NotificationUseCase,
	events adapter.EventPublisher,
	dispatch Dispatcher,
	logger *zerolog.Logger,
) *redemptionUC {
	return &redemptionUC{
		tm:         tm,
		userPlans:  userPlans,
		patients:   patients,
		clinics:    clinics,
		nonces:     nonces,
		txRepo:     txRepo,
		signer:     signer,
		nonceCache: nonceCache,
		notifier:   notifier,
		events:     events,
		dispatch:   dispatch,
		log:        logger,
	}
}

func (u *redemptionUC) Redeem(ctx context.Context, req RedeemRequest) (*RedemptionResult, error) {
	if req.Token == "" || req.ClinicID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if req.Credits == 0 {
		req.Credits = 1
	}
	if req.Credits < 0 {
		return nil, domain.ErrInvalidArgument
	}

	claims, err := u.signer.Verify(req.Token)
	if err != nil {
		return nil, domain.ErrInvalidQR
	}
	now := time.Now()
	if claims.Expired(now) {
		return nil, &domain.QRExpiredError{ExpiresAt: claims.ExpiresAt}
	}

	// Fast path: a hit means the nonce was definitely spent. A miss or
	// a cache error proves nothing; the unique index decides.
	if u.nonceCache != nil {
		if seen, cerr := u.nonceCache.Seen(ctx, claims.Nonce); cerr == nil && seen {
			return nil, &domain.QRAlreadyUsedError{Nonce: claims.Nonce}
		}
	}

	var (
		created   *model.Transaction
		patient   *model.Patient
		remaining int64
	)
	txOpt := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = u.tm.WithTx(ctx, txOpt, func(ctx context.Context, tx repository.Tx) error {
		up, err := u.userPlans.FindByID(ctx, tx, claims.UserPlanID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidUserPlan
			}
			return err
		}
		if up.PatientID != claims.PatientID || !up.Redeemable(now) {
			return domain.ErrInvalidUserPlan
		}

		// The balance gate comes before the clinic gate; when both
		// fail, the caller learns about the shortfall.
		if up.CreditsRemaining < req.Credits {
			return &domain.InsufficientCreditsError{Available: up.CreditsRemaining, Required: req.Credits}
		}

		clinic, err := u.clinics.FindByID(ctx, tx, req.ClinicID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUnauthorizedClinic
			}
			return err
		}
		if !clinic.Active {
			return domain.ErrUnauthorizedClinic
		}

		// Last gate before money moves. A duplicate nonce aborts the
		// whole transaction.
		if err := u.nonces.MarkUsed(ctx, tx, claims.Nonce, up.ID, clinic.ID, claims.ExpiresAt); err != nil {
			return err
		}

		ok, err := u.userPlans.DebitCredits(ctx, tx, up.ID, req.Credits)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.InsufficientCreditsError{Available: up.CreditsRemaining, Required: req.Credits}
		}
		remaining = up.CreditsRemaining - req.Credits

		t, err := model.NewTransaction(up.ID, clinic.ID, req.Credits, req.Amount, req.ServiceDescription)
		if err != nil {
			return err
		}
		t.ValidatedBy = req.ValidatedBy
		t.ClientIP = req.ClientIP
		t.Latitude = req.Latitude
		t.Longitude = req.Longitude
		if err := u.txRepo.Save(ctx, tx, t); err != nil {
			return err
		}
		created = t

		patient, err = u.patients.FindByID(ctx, tx, up.PatientID)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.afterCommit(created, claims, remaining)

	u.log.Info().Str("transaction_id", created.ID).Str("code", created.Code).
		Str("clinic_id", created.ClinicID).Int64("credits", created.CreditsUsed).
		Int64("remaining", remaining).Msg("redemption completed")
	return &RedemptionResult{
		Transaction:      created,
		PatientID:        patient.ID,
		PatientName:      patient.FullName,
		CreditsRemaining: remaining,
	}, nil
}

// afterCommit runs the best-effort side effects. None of them can undo
// the committed redemption.
func (u *redemptionUC) afterCommit(t *model.Transaction, claims *model.QRClaims, remaining int64) {
	if u.nonceCache != nil {
		ttl := time.Until(claims.ExpiresAt) + time.Hour
		if err := u.nonceCache.Mark(context.Background(), claims.Nonce, ttl); err != nil {
			u.log.Warn().Err(err).Msg("nonce cache mark failed")
		}
	}
	if u.dispatch == nil {
		return
	}

	ev := RedemptionEvent{
		TransactionID:    t.ID,
		Code:             t.Code,
		PatientID:        claims.PatientID,
		UserPlanID:       t.UserPlanID,
		ClinicID:         t.ClinicID,
		CreditsUsed:      t.CreditsUsed,
		CreditsRemaining: remaining,
		OccurredAt:       t.CreatedAt,
	}
	if u.events != nil {
		if err := u.dispatch.Submit(func(ctx context.Context) error {
			return u.events.Publish(ctx, adapter.TopicRedemptions, t.UserPlanID, ev)
		}); err != nil {
			u.log.Warn().Err(err).Msg("event dispatch rejected")
		}
	}
	if u.notifier != nil {
		if err := u.dispatch.Submit(func(ctx context.Context) error {
			return u.notifier.NotifyLowBalance(ctx, t.UserPlanID, claims.PatientID, remaining)
		}); err != nil {
			u.log.Warn().Err(err).Msg("low balance dispatch rejected")
		}
	}
}
