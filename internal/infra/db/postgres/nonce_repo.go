package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.NonceRepository = (*nonceRepo)(nil)

type nonceRepo struct{ pool *pgxpool.Pool }

func NewNonceRepo(pool *pgxpool.Pool) *nonceRepo {
	return &nonceRepo{pool: pool}
}

// MarkUsed inserts the nonce into used_nonces. The unique index makes
// this the authoritative replay gate: a second insert of the same
// nonce fails with 23505 regardless of concurrency.
func (r *nonceRepo) MarkUsed(ctx context.Context, tx repository.Tx, nonce, userPlanID, clinicID string, expiresAt time.Time) error {
	const q = `INSERT INTO used_nonces (nonce, user_plan_id, clinic_id, token_expires_at, used_at) VALUES ($1, $2, $3, $4, NOW());`
	_, err := execSQL(ctx, r.pool, tx, q, nonce, userPlanID, clinicID, expiresAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			if isUniqueViolation(err) {
				return &domain.QRAlreadyUsedError{Nonce: nonce}
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *nonceRepo) DeleteExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM used_nonces WHERE token_expires_at < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return 0, err
		default:
			return 0, domain.ErrOperationFailed
		}
	}
	return tag.RowsAffected(), nil
}
