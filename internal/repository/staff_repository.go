package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/domain"
)

type StaffRepository struct {
	DB *db.Postgres
}

func (r StaffRepository) List(ctx context.Context, limit int) ([]domain.Staff, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, email, specialty, created_at, updated_at
		FROM staff
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Staff
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Specialty, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r StaffRepository) Get(ctx context.Context, id int64) (*domain.Staff, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, email, specialty, created_at, updated_at
		FROM staff
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	var s domain.Staff
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Specialty, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r StaffRepository) Upsert(ctx context.Context, s domain.Staff) (*domain.Staff, error) {
	var out domain.Staff
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO staff (id, name, email, specialty, created_at, updated_at)
		VALUES (COALESCE($1, nextval('staff_id_seq')), $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			email=EXCLUDED.email,
			specialty=EXCLUDED.specialty,
			updated_at=now(),
			deleted_at=NULL
		RETURNING id, name, email, specialty, created_at, updated_at
	`, nullableID(s.ID), s.Name, s.Email, s.Specialty).Scan(
		&out.ID, &out.Name, &out.Email, &out.Specialty, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r StaffRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE staff SET deleted_at=now() WHERE id=$1`, id)
	return err
}
