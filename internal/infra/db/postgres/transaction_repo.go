package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `id, code, user_plan_id, clinic_id, status, credits_used, amount, service_description,
  validated_at, validated_by, cancelled_at, cancelled_by, cancel_reason, refunded, client_ip, latitude, longitude, created_at`

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  id, code, user_plan_id, clinic_id, status, credits_used, amount, service_description,
  validated_at, validated_by, cancelled_at, cancelled_by, cancel_reason, refunded, client_ip, latitude, longitude, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (id) DO UPDATE SET
  status=$5, validated_at=$9, validated_by=$10, cancelled_at=$11, cancelled_by=$12, cancel_reason=$13, refunded=$14;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.Code, t.UserPlanID, t.ClinicID, t.Status, t.CreditsUsed, t.Amount, t.ServiceDescription,
		t.ValidatedAt, t.ValidatedBy, t.CancelledAt, t.CancelledBy, t.CancelReason, t.Refunded, t.ClientIP, t.Latitude, t.Longitude, t.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTransaction(row)
}

func (r *transactionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Transaction, error) {
	const q = `SELECT ` + transactionColumns + ` FROM transactions WHERE code=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanTransaction(row)
}

func (r *transactionRepo) ListByClinic(ctx context.Context, tx repository.Tx, clinicID string, limit, offset int) ([]*model.Transaction, error) {
	const q = `
SELECT ` + transactionColumns + `
  FROM transactions
 WHERE clinic_id=$1
 ORDER BY created_at DESC
 LIMIT $2 OFFSET $3;`
	return r.list(ctx, tx, q, clinicID, limit, offset)
}

func (r *transactionRepo) ListByUserPlan(ctx context.Context, tx repository.Tx, userPlanID string, limit, offset int) ([]*model.Transaction, error) {
	const q = `
SELECT ` + transactionColumns + `
  FROM transactions
 WHERE user_plan_id=$1
 ORDER BY created_at DESC
 LIMIT $2 OFFSET $3;`
	return r.list(ctx, tx, q, userPlanID, limit, offset)
}

func (r *transactionRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Transaction, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionRepo) SumCreditsByClinic(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	const q = `
SELECT clinic_id, COALESCE(SUM(credits_used),0)
  FROM transactions
 WHERE status='validated'
 GROUP BY clinic_id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var clinicID string
		var sum int64
		if err := rows.Scan(&clinicID, &sum); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[clinicID] = sum
	}
	return out, rows.Err()
}

func (r *transactionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	const q = `SELECT status, COUNT(*) FROM transactions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.ID, &t.Code, &t.UserPlanID, &t.ClinicID, &t.Status, &t.CreditsUsed, &t.Amount, &t.ServiceDescription,
		&t.ValidatedAt, &t.ValidatedBy, &t.CancelledAt, &t.CancelledBy, &t.CancelReason, &t.Refunded, &t.ClientIP, &t.Latitude, &t.Longitude, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}
