package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct{ pool *pgxpool.Pool }

func NewNotificationLogRepo(pool *pgxpool.Pool) *notificationLogRepo {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, userPlanID, patientID, kind string, threshold int64) error {
	const q = `
INSERT INTO notification_log (user_plan_id, patient_id, kind, threshold, sent_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (user_plan_id, kind, threshold) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q, userPlanID, patientID, kind, threshold)
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

func (r *notificationLogRepo) Exists(ctx context.Context, tx repository.Tx, userPlanID, kind string, threshold int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM notification_log WHERE user_plan_id=$1 AND kind=$2 AND threshold=$3);`
	row, err := pickRow(ctx, r.pool, tx, q, userPlanID, kind, threshold)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
