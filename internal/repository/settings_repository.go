package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/knowelle28/autobook/internal/db"
)

// SettingsRepository stores the app_settings key/value singleton table.
type SettingsRepository struct {
	DB *db.Postgres
}

func (r SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.Pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO app_settings (key, value) VALUES ($1,$2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value
	`, key, value)
	return err
}
