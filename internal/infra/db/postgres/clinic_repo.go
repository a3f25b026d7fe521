package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.ClinicRepository = (*clinicRepo)(nil)

type clinicRepo struct{ pool *pgxpool.Pool }

func NewClinicRepo(pool *pgxpool.Pool) *clinicRepo {
	return &clinicRepo{pool: pool}
}

func (r *clinicRepo) Save(ctx context.Context, tx repository.Tx, c *model.Clinic) error {
	const q = `
INSERT INTO clinics (id, name, slug, city, address, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, slug=$3, city=$4, address=$5, active=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Slug, c.City, c.Address, c.Active, c.CreatedAt)
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

func (r *clinicRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Clinic, error) {
	const q = `SELECT id, name, slug, city, address, active, created_at FROM clinics WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanClinic(row)
}

func (r *clinicRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Clinic, error) {
	const q = `SELECT id, name, slug, city, address, active, created_at FROM clinics WHERE slug=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, slug)
	if err != nil {
		return nil, err
	}
	return scanClinic(row)
}

func (r *clinicRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Clinic, error) {
	const q = `SELECT id, name, slug, city, address, active, created_at FROM clinics WHERE active ORDER BY name;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClinic(row pgx.Row) (*model.Clinic, error) {
	c := &model.Clinic{}
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.City, &c.Address, &c.Active, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
