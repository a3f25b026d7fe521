package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.UserPlanRepository = (*userPlanRepo)(nil)

type userPlanRepo struct{ pool *pgxpool.Pool }

func NewUserPlanRepo(pool *pgxpool.Pool) *userPlanRepo {
	return &userPlanRepo{pool: pool}
}

const userPlanColumns = `id, patient_id, plan_id, credits, credits_remaining, expires_at, active, created_at`

func (r *userPlanRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPlan) error {
	const q = `
INSERT INTO user_plans (
  id, patient_id, plan_id, credits, credits_remaining, expires_at, active, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  patient_id=$2, plan_id=$3, credits=$4, credits_remaining=$5, expires_at=$6, active=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, up.ID, up.PatientID, up.PlanID, up.Credits, up.CreditsRemaining, up.ExpiresAt, up.Active, up.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *userPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	q := `SELECT ` + userPlanColumns + ` FROM user_plans WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUserPlan(row)
}

func (r *userPlanRepo) FindActiveByPatient(ctx context.Context, tx repository.Tx, patientID string) ([]*model.UserPlan, error) {
	const q = `
SELECT ` + userPlanColumns + `
  FROM user_plans
 WHERE patient_id=$1 AND active AND expires_at > NOW()
 ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserPlan
	for rows.Next() {
		up, err := scanUserPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

// DebitCredits is the guarded balance update: it only succeeds when the
// row still holds enough credits, so concurrent debits cannot push the
// balance negative.
func (r *userPlanRepo) DebitCredits(ctx context.Context, tx repository.Tx, id string, amount int64) (bool, error) {
	const q = `
UPDATE user_plans
   SET credits_remaining = credits_remaining - $2
 WHERE id=$1 AND credits_remaining >= $2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, amount)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return false, err
		default:
			return false, domain.ErrOperationFailed
		}
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userPlanRepo) RefundCredits(ctx context.Context, tx repository.Tx, id string, amount int64) error {
	const q = `
UPDATE user_plans
   SET credits_remaining = LEAST(credits, credits_remaining + $2)
 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, amount)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *userPlanRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `UPDATE user_plans SET active=FALSE WHERE active AND expires_at <= $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
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

func (r *userPlanRepo) FindExpiring(ctx context.Context, tx repository.Tx, withinDays int) ([]*model.UserPlan, error) {
	const q = `
SELECT ` + userPlanColumns + `
  FROM user_plans
 WHERE active AND expires_at > NOW() AND expires_at <= NOW() + ($1 * INTERVAL '1 day')
 ORDER BY expires_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserPlan
	for rows.Next() {
		up, err := scanUserPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

func (r *userPlanRepo) TotalRemainingCredits(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COALESCE(SUM(credits_remaining),0) FROM user_plans WHERE active;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return total, nil
}

func scanUserPlan(row pgx.Row) (*model.UserPlan, error) {
	up := &model.UserPlan{}
	if err := row.Scan(&up.ID, &up.PatientID, &up.PlanID, &up.Credits, &up.CreditsRemaining, &up.ExpiresAt, &up.Active, &up.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return up, nil
}
