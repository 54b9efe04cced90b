package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/domain"
)

type ServiceRepository struct {
	DB *db.Postgres
}

func (r ServiceRepository) List(ctx context.Context, limit int) ([]domain.Service, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, description, duration_minutes, price_cents, created_at, updated_at
		FROM services
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r ServiceRepository) Get(ctx context.Context, id int64) (*domain.Service, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, description, duration_minutes, price_cents, created_at, updated_at
		FROM services
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	var s domain.Service
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r ServiceRepository) Upsert(ctx context.Context, s domain.Service) (*domain.Service, error) {
	var out domain.Service
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO services (id, name, description, duration_minutes, price_cents, created_at, updated_at)
		VALUES (COALESCE($1, nextval('services_id_seq')), $2, $3, $4, $5, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			description=EXCLUDED.description,
			duration_minutes=EXCLUDED.duration_minutes,
			price_cents=EXCLUDED.price_cents,
			updated_at=now(),
			deleted_at=NULL
		RETURNING id, name, description, duration_minutes, price_cents, created_at, updated_at
	`, nullableID(s.ID), s.Name, s.Description, s.DurationMinutes, s.PriceCents).Scan(
		&out.ID, &out.Name, &out.Description, &out.DurationMinutes, &out.PriceCents, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r ServiceRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE services SET deleted_at=now() WHERE id=$1`, id)
	return err
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
