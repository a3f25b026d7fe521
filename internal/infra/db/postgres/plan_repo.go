package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, credits, price, validity_days, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, credits=$3, price=$4, validity_days=$5, active=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Credits, p.Price, p.ValidityDays, p.Active, p.CreatedAt)
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

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT id, name, credits, price, validity_days, active, created_at FROM plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT id, name, credits, price, validity_days, active, created_at FROM plans WHERE active ORDER BY price;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	p := &model.Plan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Credits, &p.Price, &p.ValidityDays, &p.Active, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
