package repository

import (
	"context"
	"time"
)

// NonceRepository persists spent QR nonces. The table carries a unique
// index on the nonce, which is the authoritative replay guard.
type NonceRepository interface {
	// MarkUsed records the nonce together with the plan and clinic
	// that spent it; a duplicate returns domain.ErrQRAlreadyUsed.
	MarkUsed(ctx context.Context, tx Tx, nonce, userPlanID, clinicID string, expiresAt time.Time) error
	DeleteExpiredBefore(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}

// NonceCache is a best-effort fast path over the nonce table. A miss
// means nothing; the database stays the source of truth.
type NonceCache interface {
	Seen(ctx context.Context, nonce string) (bool, error)
	Mark(ctx context.Context, nonce string, ttl time.Duration) error
}
