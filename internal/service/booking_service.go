package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/metrics"
	"github.com/knowelle28/autobook/internal/repository"
)

// Rejection reasons surfaced to callers. Handlers map them to HTTP statuses;
// none are fatal.
var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrInvalidStart     = errors.New("invalid start time")
	ErrInThePast        = errors.New("booking must be scheduled in the future")
	ErrClosed           = errors.New("closed on that day")
	ErrOutsideHours     = errors.New("booking must be within business hours")
	ErrStaffConflict    = errors.New("staff member is not available at that time")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrForbidden        = errors.New("booking belongs to another user")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrPastBooking      = errors.New("cannot cancel a past booking")
	ErrInvalidStatus    = errors.New("invalid booking status")
)

// startTimeLayout matches the datetime-local input format clients submit.
const startTimeLayout = "2006-01-02T15:04"

type ServiceStore interface {
	Get(ctx context.Context, id int64) (*domain.Service, error)
}

type StaffStore interface {
	Get(ctx context.Context, id int64) (*domain.Staff, error)
}

type HoursStore interface {
	Get(ctx context.Context, day domain.Weekday, schedule domain.ScheduleType) (*domain.BusinessHours, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type BookingStore interface {
	Create(ctx context.Context, p repository.CreateBookingParams) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	HasOverlap(ctx context.Context, staffID int64, start, end time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// BookingService validates and persists booking requests against business
// hours and existing staff bookings.
type BookingService struct {
	Services ServiceStore
	Staff    StaffStore
	Hours    HoursStore
	Settings SettingsStore
	Bookings BookingStore
	Logger   *slog.Logger

	// Now is the clock; tests override it. Defaults to time.Now.
	Now func() time.Time
}

type CreateBookingInput struct {
	ServiceID int64
	StaffID   int64
	StartTime string
	Notes     string
}

// CreateBooking runs the validation sequence and persists a pending booking.
// Checks short-circuit on the first failure; order determines the user-facing
// message, not correctness. All timestamps are shop-local wall clock.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*domain.Booking, error) {
	svc, err := s.Services.Get(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject(ErrServiceNotFound)
		}
		return nil, err
	}
	staff, err := s.Staff.Get(ctx, in.StaffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject(ErrStaffNotFound)
		}
		return nil, err
	}

	start, err := time.Parse(startTimeLayout, in.StartTime)
	if err != nil {
		return nil, s.reject(ErrInvalidStart)
	}
	end := start.Add(svc.Duration())

	if !start.After(s.now()) {
		return nil, s.reject(ErrInThePast)
	}

	schedule, err := s.activeSchedule(ctx)
	if err != nil {
		return nil, err
	}
	hours, err := s.Hours.Get(ctx, domain.WeekdayOf(start), schedule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject(ErrClosed)
		}
		return nil, err
	}
	if err := checkWindow(start, end, hours); err != nil {
		return nil, s.reject(err)
	}

	conflict, err := s.Bookings.HasOverlap(ctx, staff.ID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, s.reject(ErrStaffConflict)
	}

	booking, err := s.Bookings.Create(ctx, repository.CreateBookingParams{
		Code:      uuid.NewString(),
		UserID:    userID,
		ServiceID: svc.ID,
		StaffID:   staff.ID,
		StartTime: start,
		EndTime:   end,
		Status:    domain.BookingPending,
		Notes:     in.Notes,
	})
	if err != nil {
		// A racing request can slip past HasOverlap; the exclusion
		// constraint rejects the second insert.
		if db.IsExclusionViolation(err) {
			return nil, s.reject(ErrStaffConflict)
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.log().Info("booking created",
		"booking_id", booking.ID,
		"staff_id", staff.ID,
		"service_id", svc.ID,
		"start", start.Format(startTimeLayout),
	)
	return booking, nil
}

// Cancel transitions the caller's own future booking to cancelled. The row is
// never deleted.
func (s *BookingService) Cancel(ctx context.Context, userID int64, bookingID int64) (*domain.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.Status == domain.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !booking.StartTime.After(s.now()) {
		return nil, ErrPastBooking
	}
	if err := s.Bookings.UpdateStatus(ctx, booking.ID, domain.BookingCancelled); err != nil {
		return nil, err
	}
	booking.Status = domain.BookingCancelled
	metrics.IncBookingCancelled()
	s.log().Info("booking cancelled", "booking_id", booking.ID)
	return booking, nil
}

// UpdateStatus sets any of the three known statuses (admin operation). A
// booking leaving the cancelled state re-enters the staff member's timeline,
// so the overlap check runs again before the transition is allowed.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status == domain.BookingCancelled && status != domain.BookingCancelled {
		conflict, err := s.Bookings.HasOverlap(ctx, booking.StaffID, booking.StartTime, booking.EndTime)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrStaffConflict
		}
	}
	if err := s.Bookings.UpdateStatus(ctx, booking.ID, status); err != nil {
		return nil, err
	}
	booking.Status = status
	metrics.IncStatusDecision(string(status))
	s.log().Info("booking status updated", "booking_id", booking.ID, "status", string(status))
	return booking, nil
}

// ActiveSchedule returns the currently configured business-hours variant.
func (s *BookingService) ActiveSchedule(ctx context.Context) (domain.ScheduleType, error) {
	return s.activeSchedule(ctx)
}

// SetActiveSchedule switches which business-hours variant governs new
// bookings. Existing bookings keep their stored times.
func (s *BookingService) SetActiveSchedule(ctx context.Context, schedule domain.ScheduleType) error {
	if !schedule.IsValid() {
		return fmt.Errorf("%w: unknown schedule %q", ErrInvalidStatus, schedule)
	}
	return s.Settings.Set(ctx, domain.SettingActiveSchedule, string(schedule))
}

func (s *BookingService) activeSchedule(ctx context.Context) (domain.ScheduleType, error) {
	value, err := s.Settings.Get(ctx, domain.SettingActiveSchedule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ScheduleRegular, nil
		}
		return "", err
	}
	schedule := domain.ScheduleType(value)
	if !schedule.IsValid() {
		return domain.ScheduleRegular, nil
	}
	return schedule, nil
}

// checkWindow validates that [start, end) sits inside the day's open window.
// Business hours never span midnight, so a booking crossing midnight can
// never fit.
func checkWindow(start, end time.Time, hours *domain.BusinessHours) error {
	if hours.Closed || hours.Open == nil || hours.Close == nil {
		return ErrClosed
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		// Crossed midnight; cannot fit in a same-day window.
		return fmt.Errorf("%w (%s - %s)", ErrOutsideHours, hours.Open, hours.Close)
	}
	startClock := domain.TimeOfDayFrom(start)
	endClock := domain.TimeOfDayFrom(end)
	if startClock.Before(*hours.Open) || endClock.After(*hours.Close) {
		return fmt.Errorf("%w (%s - %s)", ErrOutsideHours, hours.Open, hours.Close)
	}
	return nil
}

func (s *BookingService) reject(err error) error {
	metrics.IncBookingRejected(rejectReason(err))
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrStaffNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidStart):
		return "invalid_input"
	case errors.Is(err, ErrInThePast):
		return "in_the_past"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrOutsideHours):
		return "outside_hours"
	case errors.Is(err, ErrStaffConflict):
		return "staff_conflict"
	}
	return "other"
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *BookingService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
