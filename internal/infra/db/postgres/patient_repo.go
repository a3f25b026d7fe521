package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/repository"
)

var _ repository.PatientRepository = (*patientRepo)(nil)

type patientRepo struct{ pool *pgxpool.Pool }

func NewPatientRepo(pool *pgxpool.Pool) *patientRepo {
	return &patientRepo{pool: pool}
}

func (r *patientRepo) Save(ctx context.Context, tx repository.Tx, p *model.Patient) error {
	const q = `
INSERT INTO patients (id, full_name, email, phone, active, registered_at, last_active_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  full_name=$2, email=$3, phone=$4, active=$5, last_active_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.FullName, p.Email, p.Phone, p.Active, p.RegisteredAt, p.LastActiveAt)
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

func (r *patientRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Patient, error) {
	const q = `SELECT id, full_name, email, phone, active, registered_at, last_active_at FROM patients WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPatient(row)
}

func (r *patientRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Patient, error) {
	const q = `SELECT id, full_name, email, phone, active, registered_at, last_active_at FROM patients WHERE email=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanPatient(row)
}

func (r *patientRepo) CountPatients(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COUNT(*) FROM patients;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanPatient(row pgx.Row) (*model.Patient, error) {
	p := &model.Patient{}
	if err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Active, &p.RegisteredAt, &p.LastActiveAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
