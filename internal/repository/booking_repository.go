package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/domain"
)

type BookingRepository struct {
	DB *db.Postgres
}

const bookingColumns = `
	b.id, b.code, b.user_id, b.service_id, b.staff_id, b.start_time, b.end_time,
	b.status, b.notes, b.created_at, sv.name, st.name, u.name
`

const bookingJoins = `
	FROM bookings b
	JOIN services sv ON sv.id = b.service_id
	JOIN staff st ON st.id = b.staff_id
	JOIN users u ON u.id = b.user_id
`

type CreateBookingParams struct {
	Code      string
	UserID    int64
	ServiceID int64
	StaffID   int64
	StartTime time.Time
	EndTime   time.Time
	Status    domain.BookingStatus
	Notes     string
}

func (r BookingRepository) Create(ctx context.Context, p CreateBookingParams) (*domain.Booking, error) {
	b := domain.Booking{
		Code:      p.Code,
		UserID:    p.UserID,
		ServiceID: p.ServiceID,
		StaffID:   p.StaffID,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Status:    p.Status,
		Notes:     p.Notes,
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO bookings (code, user_id, service_id, staff_id, start_time, end_time, status, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
		RETURNING id, created_at
	`, p.Code, p.UserID, p.ServiceID, p.StaffID, p.StartTime, p.EndTime, p.Status, p.Notes).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+bookingColumns+bookingJoins+` WHERE b.id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// HasOverlap reports whether any non-cancelled booking for the staff member
// intersects the half-open interval [start, end).
func (r BookingRepository) HasOverlap(ctx context.Context, staffID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE staff_id=$1 AND status <> 'cancelled'
			  AND start_time < $3 AND end_time > $2
		)
	`, staffID, start, end).Scan(&exists)
	return exists, err
}

// ListByUser returns the user's bookings, newest start first.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+bookingColumns+bookingJoins+`
		WHERE b.user_id=$1
		ORDER BY b.start_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

type BookingFilter struct {
	Date    *time.Time
	StaffID *int64
	Status  *domain.BookingStatus
}

// ListFiltered returns bookings matching the admin filters, newest start first.
// A date filter matches the whole local day of Date.
func (r BookingRepository) ListFiltered(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + bookingJoins + ` WHERE 1=1`
	args := []any{}
	if f.Date != nil {
		dayStart := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, f.Date.Location())
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
		query += ` AND b.start_time >= $1 AND b.start_time < $2`
	}
	if f.StaffID != nil {
		args = append(args, *f.StaffID)
		query += ` AND b.staff_id=$` + strconv.Itoa(len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += ` AND b.status=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY b.start_time DESC`
	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListBetween returns bookings starting within [from, to), earliest first.
func (r BookingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+bookingColumns+bookingJoins+`
		WHERE b.start_time >= $1 AND b.start_time < $2
		ORDER BY b.start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

type StatusCounts struct {
	Total     int64
	Pending   int64
	Confirmed int64
	Cancelled int64
}

func (r BookingRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var c StatusCounts
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status='pending'),
		       count(*) FILTER (WHERE status='confirmed'),
		       count(*) FILTER (WHERE status='cancelled')
		FROM bookings
	`).Scan(&c.Total, &c.Pending, &c.Confirmed, &c.Cancelled)
	return c, err
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE bookings SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	var items []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	if err := row.Scan(
		&b.ID,
		&b.Code,
		&b.UserID,
		&b.ServiceID,
		&b.StaffID,
		&b.StartTime,
		&b.EndTime,
		&status,
		&b.Notes,
		&b.CreatedAt,
		&b.ServiceName,
		&b.StaffName,
		&b.CustomerName,
	); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

