package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Redemption errors
	ErrInvalidQR           = errors.New("invalid qr token")
	ErrQRExpired           = errors.New("qr token expired")
	ErrQRAlreadyUsed       = errors.New("qr token already used")
	ErrInvalidUserPlan     = errors.New("user plan missing, inactive or expired")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnauthorizedClinic  = errors.New("clinic not authorized to redeem")
	ErrNotCancellable      = errors.New("transaction is not in a cancellable state")
	ErrRateLimited         = errors.New("rate limit exceeded")

	// Infrastructure errors. These indicate transient storage trouble and are
	// safe for the caller to retry; they never carry business meaning.
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)

// QRExpiredError carries the token expiry so clients can display it.
// errors.Is(err, ErrQRExpired) matches.
type QRExpiredError struct {
	ExpiresAt time.Time
}

func (e *QRExpiredError) Error() string {
	return fmt.Sprintf("qr token expired at %s", e.ExpiresAt.Format(time.RFC3339))
}

func (e *QRExpiredError) Is(target error) bool { return target == ErrQRExpired }

// QRAlreadyUsedError carries the replayed nonce for audit trails.
type QRAlreadyUsedError struct {
	Nonce string
}

func (e *QRAlreadyUsedError) Error() string {
	return fmt.Sprintf("qr token already used (nonce %s)", e.Nonce)
}

func (e *QRAlreadyUsedError) Is(target error) bool { return target == ErrQRAlreadyUsed }

// InsufficientCreditsError reports available vs required for client messaging.
type InsufficientCreditsError struct {
	Available int64
	Required  int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: available %d, required %d", e.Available, e.Required)
}

func (e *InsufficientCreditsError) Is(target error) bool { return target == ErrInsufficientCredits }
