package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
)

// Monday 2025-06-02; the fixed clock sits the day before.
var (
	testNow    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testMonday = "2025-06-02"
	testSunday = "2025-06-08"
)

type fakeServiceStore map[int64]domain.Service

func (f fakeServiceStore) Get(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

type fakeStaffStore map[int64]domain.Staff

func (f fakeStaffStore) Get(_ context.Context, id int64) (*domain.Staff, error) {
	s, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

type hoursKey struct {
	day      domain.Weekday
	schedule domain.ScheduleType
}

type fakeHoursStore map[hoursKey]domain.BusinessHours

func (f fakeHoursStore) Get(_ context.Context, day domain.Weekday, schedule domain.ScheduleType) (*domain.BusinessHours, error) {
	bh, ok := f[hoursKey{day, schedule}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &bh, nil
}

type fakeSettingsStore map[string]string

func (f fakeSettingsStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (f fakeSettingsStore) Set(_ context.Context, key, value string) error {
	f[key] = value
	return nil
}

type fakeBookingStore struct {
	items     []domain.Booking
	nextID    int64
	createErr error
}

func (f *fakeBookingStore) Create(_ context.Context, p repository.CreateBookingParams) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	b := domain.Booking{
		ID:        f.nextID,
		Code:      p.Code,
		UserID:    p.UserID,
		ServiceID: p.ServiceID,
		StaffID:   p.StaffID,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: time.Now(),
	}
	f.items = append(f.items, b)
	return &b, nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	for _, b := range f.items {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookingStore) HasOverlap(_ context.Context, staffID int64, start, end time.Time) (bool, error) {
	for _, b := range f.items {
		if b.StaffID == staffID && b.Status != domain.BookingCancelled && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	for i, b := range f.items {
		if b.ID == id {
			f.items[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func at(hour, minute int) *domain.TimeOfDay {
	return &domain.TimeOfDay{Hour: hour, Minute: minute}
}

func newTestService() (*BookingService, *fakeBookingStore, fakeSettingsStore) {
	bookings := &fakeBookingStore{}
	settings := fakeSettingsStore{domain.SettingActiveSchedule: "regular"}
	svc := &BookingService{
		Services: fakeServiceStore{
			1: {ID: 1, Name: "Oil Change", DurationMinutes: 30, PriceCents: 4500},
			2: {ID: 2, Name: "Full Detail", DurationMinutes: 90, PriceCents: 12000},
		},
		Staff: fakeStaffStore{
			1: {ID: 1, Name: "Mike Torres"},
			2: {ID: 2, Name: "Sara Al-Rashid"},
		},
		Hours: fakeHoursStore{
			{domain.Monday, domain.ScheduleRegular}: {Day: domain.Monday, Schedule: domain.ScheduleRegular, Open: at(9, 0), Close: at(18, 0)},
			{domain.Monday, domain.ScheduleRamadan}: {Day: domain.Monday, Schedule: domain.ScheduleRamadan, Open: at(9, 0), Close: at(15, 0)},
			{domain.Sunday, domain.ScheduleRegular}: {Day: domain.Sunday, Schedule: domain.ScheduleRegular, Closed: true},
		},
		Settings: settings,
		Bookings: bookings,
		Now:      func() time.Time { return testNow },
	}
	return svc, bookings, settings
}

func TestCreateBooking_Accepted(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1,
		StaffID:   1,
		StartTime: testMonday + "T10:00",
		Notes:     "please check tires too",
	})
	require.NoError(t, err)
	require.Equal(t, domain.BookingPending, b.Status)
	require.Equal(t, int64(7), b.UserID)
	require.NotEmpty(t, b.Code)
	require.Equal(t, 30*time.Minute, b.EndTime.Sub(b.StartTime))
}

func TestCreateBooking_EndAtCloseAccepted(t *testing.T) {
	svc, _, _ := newTestService()

	// 17:30 + 30min ends exactly at close; still inside the window.
	b, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T17:30",
	})
	require.NoError(t, err)
	require.Equal(t, 18, b.EndTime.Hour())
}

func TestCreateBooking_OutsideHours(t *testing.T) {
	svc, _, _ := newTestService()

	// 17:45 + 30min ends 18:15, past the 18:00 close.
	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T17:45",
	})
	require.ErrorIs(t, err, ErrOutsideHours)
}

func TestCreateBooking_BeforeOpen(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T08:30",
	})
	require.ErrorIs(t, err, ErrOutsideHours)
}

func TestCreateBooking_StaffConflict(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)

	// 10:15 overlaps [10:00, 10:30) for the same staff member.
	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:15",
	})
	require.ErrorIs(t, err, ErrStaffConflict)

	// A different staff member is free at the same time.
	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 1, StaffID: 2, StartTime: testMonday + "T10:15",
	})
	require.NoError(t, err)
}

func TestCreateBooking_BackToBackAccepted(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)

	// Half-open intervals: [10:00,10:30) and [10:30,11:00) do not overlap.
	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:30",
	})
	require.NoError(t, err)
}

func TestCreateBooking_CancelledBookingDoesNotBlock(t *testing.T) {
	svc, bookings, _ := newTestService()

	b, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)
	require.NoError(t, bookings.UpdateStatus(context.Background(), b.ID, domain.BookingCancelled))

	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:15",
	})
	require.NoError(t, err)
}

func TestCreateBooking_InThePast(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: "2025-05-26T10:00",
	})
	require.ErrorIs(t, err, ErrInThePast)
}

func TestCreateBooking_ClosedDay(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testSunday + "T10:00",
	})
	require.ErrorIs(t, err, ErrClosed)
}

func TestCreateBooking_MissingHoursRowMeansClosed(t *testing.T) {
	svc, _, _ := newTestService()

	// Tuesday has no business_hours row at all.
	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: "2025-06-03T10:00",
	})
	require.ErrorIs(t, err, ErrClosed)
}

func TestCreateBooking_UnknownRefs(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 99, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.ErrorIs(t, err, ErrServiceNotFound)

	_, err = svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 99, StartTime: testMonday + "T10:00",
	})
	require.ErrorIs(t, err, ErrStaffNotFound)
}

func TestCreateBooking_InvalidStart(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: "next tuesday at noon",
	})
	require.ErrorIs(t, err, ErrInvalidStart)
}

func TestCreateBooking_ScheduleSwitchGovernsNewBookings(t *testing.T) {
	svc, bookings, settings := newTestService()

	// 14:00 + 90min ends 15:30: fine under regular hours (close 18:00).
	existing, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 2, StaffID: 1, StartTime: testMonday + "T14:00",
	})
	require.NoError(t, err)

	require.NoError(t, settings.Set(context.Background(), domain.SettingActiveSchedule, "ramadan"))

	// The same request for another staff member now breaches the 15:00 close.
	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 2, StaffID: 2, StartTime: testMonday + "T14:00",
	})
	require.ErrorIs(t, err, ErrOutsideHours)

	// The earlier booking keeps its stored window.
	got, err := bookings.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Equal(t, existing.StartTime, got.StartTime)
	require.Equal(t, existing.EndTime, got.EndTime)
}

func TestCreateBooking_MissingSettingDefaultsToRegular(t *testing.T) {
	svc, _, settings := newTestService()
	delete(settings, domain.SettingActiveSchedule)

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)
}

func TestCreateBooking_ExclusionViolationMapsToConflict(t *testing.T) {
	svc, bookings, _ := newTestService()
	bookings.createErr = &pgconn.PgError{Code: "23P01"}

	_, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.ErrorIs(t, err, ErrStaffConflict)
}

func TestCancel(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 8, b.ID)
	require.ErrorIs(t, err, ErrForbidden)

	cancelled, err := svc.Cancel(context.Background(), 7, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookingCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), 7, b.ID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = svc.Cancel(context.Background(), 7, 999)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_PastBooking(t *testing.T) {
	svc, bookings, _ := newTestService()

	start := time.Date(2025, 5, 26, 10, 0, 0, 0, time.UTC)
	b, err := bookings.Create(context.Background(), repository.CreateBookingParams{
		Code: "past", UserID: 7, ServiceID: 1, StaffID: 1,
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		Status: domain.BookingConfirmed,
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, b.ID)
	require.ErrorIs(t, err, ErrPastBooking)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingConfirmed)
	require.NoError(t, err)
	require.Equal(t, domain.BookingConfirmed, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), b.ID, "rescheduled")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), 999, domain.BookingConfirmed)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateStatus_ReviveIntoConflictRefused(t *testing.T) {
	svc, _, _ := newTestService()

	first, err := svc.CreateBooking(context.Background(), 7, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, first.ID)
	require.NoError(t, err)

	// The freed slot gets taken.
	_, err = svc.CreateBooking(context.Background(), 8, CreateBookingInput{
		ServiceID: 1, StaffID: 1, StartTime: testMonday + "T10:15",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), first.ID, domain.BookingConfirmed)
	require.ErrorIs(t, err, ErrStaffConflict)
}

func TestCheckWindow_MidnightCrossing(t *testing.T) {
	hours := &domain.BusinessHours{Open: at(0, 0), Close: at(23, 0)}
	start := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)

	err := checkWindow(start, start.Add(time.Hour), hours)
	require.ErrorIs(t, err, ErrOutsideHours)
}

func TestSetActiveSchedule(t *testing.T) {
	svc, _, settings := newTestService()

	require.NoError(t, svc.SetActiveSchedule(context.Background(), domain.ScheduleRamadan))
	require.Equal(t, "ramadan", settings[domain.SettingActiveSchedule])

	require.Error(t, svc.SetActiveSchedule(context.Background(), "summer"))
}
