package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/adapter"
	"clinic-credit-service/internal/domain/ports/repository"
)

// TTL bounds for issued QR tokens.
const (
	MinQRTTL     = 5 * time.Minute
	MaxQRTTL     = 60 * time.Minute
	DefaultQRTTL = 30 * time.Minute
)

// RateLimiter bounds how often a key may perform an action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Compile-time check
var _ QRTokenUseCase = (*qrTokenUC)(nil)

type QRTokenUseCase interface {
	// Issue mints a signed single-use QR token against one of the
	// patient's credit packages.
	Issue(ctx context.Context, patientID, userPlanID string, ttl time.Duration) (string, *model.QRClaims, error)
}

type qrTokenUC struct {
	userPlans repository.UserPlanRepository
	signer    adapter.TokenSigner
	limiter   RateLimiter
	log       *zerolog.Logger
}

func NewQRTokenUseCase(userPlans repository.UserPlanRepository, signer adapter.TokenSigner, limiter RateLimiter, logger *zerolog.Logger) *qrTokenUC {
	return &qrTokenUC{userPlans: userPlans, signer: signer, limiter: limiter, log: logger}
}

// ClampTTL forces ttl into the allowed window; zero means the default.
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl == 0:
		return DefaultQRTTL
	case ttl < MinQRTTL:
		return MinQRTTL
	case ttl > MaxQRTTL:
		return MaxQRTTL
	}
	return ttl
}

func (u *qrTokenUC) Issue(ctx context.Context, patientID, userPlanID string, ttl time.Duration) (string, *model.QRClaims, error) {
	if patientID == "" || userPlanID == "" {
		return "", nil, domain.ErrInvalidArgument
	}
	if u.limiter != nil {
		ok, err := u.limiter.Allow(ctx, "qr-issue:"+patientID)
		if err != nil {
			u.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			return "", nil, domain.ErrRateLimited
		}
	}

	up, err := u.userPlans.FindByID(ctx, repository.NoTX, userPlanID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidUserPlan
		}
		return "", nil, err
	}
	if up.PatientID != patientID {
		return "", nil, domain.ErrInvalidUserPlan
	}
	if !up.Redeemable(time.Now()) {
		return "", nil, domain.ErrInvalidUserPlan
	}
	if up.CreditsRemaining <= 0 {
		return "", nil, &domain.InsufficientCreditsError{Available: 0, Required: 1}
	}

	claims, err := model.NewQRClaims(patientID, userPlanID, ClampTTL(ttl))
	if err != nil {
		return "", nil, err
	}
	token, err := u.signer.Sign(claims)
	if err != nil {
		return "", nil, err
	}

	u.log.Debug().Str("patient_id", patientID).Str("user_plan_id", userPlanID).
		Time("expires_at", claims.ExpiresAt).Msg("qr token issued")
	return token, claims, nil
}
