package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/domain"
)

type HoursRepository struct {
	DB *db.Postgres
}

// Get returns the row for one (day, schedule) pair, or ErrNotFound.
func (r HoursRepository) Get(ctx context.Context, day domain.Weekday, schedule domain.ScheduleType) (*domain.BusinessHours, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT day_of_week, schedule_type, open_time, close_time, is_closed
		FROM business_hours
		WHERE day_of_week=$1 AND schedule_type=$2
	`, int(day), schedule)
	bh, err := scanHours(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return bh, nil
}

// ListBySchedule returns the full week for one schedule, Monday first.
func (r HoursRepository) ListBySchedule(ctx context.Context, schedule domain.ScheduleType) ([]domain.BusinessHours, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT day_of_week, schedule_type, open_time, close_time, is_closed
		FROM business_hours
		WHERE schedule_type=$1
		ORDER BY day_of_week ASC
	`, schedule)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.BusinessHours
	for rows.Next() {
		bh, err := scanHours(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *bh)
	}
	return items, rows.Err()
}

// Upsert writes one (day, schedule) row; the pair key keeps the table at
// exactly one row per combination.
func (r HoursRepository) Upsert(ctx context.Context, bh domain.BusinessHours) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO business_hours (day_of_week, schedule_type, open_time, close_time, is_closed)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (day_of_week, schedule_type) DO UPDATE SET
			open_time=EXCLUDED.open_time,
			close_time=EXCLUDED.close_time,
			is_closed=EXCLUDED.is_closed
	`, int(bh.Day), bh.Schedule, toPgTime(bh.Open), toPgTime(bh.Close), bh.Closed)
	return err
}

func scanHours(row pgx.Row) (*domain.BusinessHours, error) {
	var (
		bh          domain.BusinessHours
		day         int
		schedule    string
		open, close pgtype.Time
	)
	if err := row.Scan(&day, &schedule, &open, &close, &bh.Closed); err != nil {
		return nil, err
	}
	bh.Day = domain.Weekday(day)
	bh.Schedule = domain.ScheduleType(schedule)
	bh.Open = fromPgTime(open)
	bh.Close = fromPgTime(close)
	return &bh, nil
}

func toPgTime(t *domain.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	us := time.Duration(t.Minutes()) * time.Minute / time.Microsecond
	return pgtype.Time{Microseconds: int64(us), Valid: true}
}

func fromPgTime(t pgtype.Time) *domain.TimeOfDay {
	if !t.Valid {
		return nil
	}
	minutes := int(t.Microseconds / int64(time.Minute/time.Microsecond))
	return &domain.TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}
