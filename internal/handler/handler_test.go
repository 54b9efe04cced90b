package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/service"
)

func TestBookingErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrServiceNotFound, http.StatusNotFound},
		{service.ErrStaffNotFound, http.StatusNotFound},
		{service.ErrBookingNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrStaffConflict, http.StatusConflict},
		{service.ErrAlreadyCancelled, http.StatusConflict},
		{service.ErrInvalidStart, http.StatusBadRequest},
		{service.ErrInThePast, http.StatusBadRequest},
		{service.ErrClosed, http.StatusBadRequest},
		{service.ErrOutsideHours, http.StatusBadRequest},
		{service.ErrPastBooking, http.StatusBadRequest},
		{service.ErrInvalidStatus, http.StatusBadRequest},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, bookingErrorStatus(tc.err), tc.err.Error())
	}
	require.Equal(t, http.StatusInternalServerError, bookingErrorStatus(http.ErrAbortHandler))
}

func TestCalendarEvent(t *testing.T) {
	b := domain.Booking{
		ID:           42,
		StartTime:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
		Status:       domain.BookingConfirmed,
		Notes:        "loaner car needed",
		ServiceName:  "Oil Change",
		StaffName:    "Mike Torres",
		CustomerName: "Dana",
	}

	event := calendarEvent(b)
	require.Equal(t, int64(42), event["id"])
	require.Equal(t, "Oil Change - Dana", event["title"])
	require.Equal(t, "2025-06-02T10:00", event["start"])
	require.Equal(t, "2025-06-02T10:30", event["end"])
	require.Equal(t, "#1cc88a", event["color"])

	props := event["extendedProps"].(map[string]any)
	require.Equal(t, "Mike Torres", props["staff"])
	require.Equal(t, "confirmed", props["status"])
	require.Equal(t, "loaner car needed", props["notes"])

	// Unknown statuses fall back to the pending color.
	b.Status = domain.BookingStatus("weird")
	require.Equal(t, "#f6c23e", calendarEvent(b)["color"])
}

func TestParseDateQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/bookings?date=2025-06-02", nil)
	got, err := parseDateQuery(r, "date")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), *got)

	r = httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	got, err = parseDateQuery(r, "date")
	require.NoError(t, err)
	require.Nil(t, got)

	r = httptest.NewRequest(http.MethodGet, "/admin/bookings?date=06%2F02%2F2025", nil)
	_, err = parseDateQuery(r, "date")
	require.Error(t, err)
}

func TestParseBookingFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/bookings?date=2025-06-02&staffId=3&status=pending", nil)
	filter, err := parseBookingFilter(r)
	require.NoError(t, err)
	require.NotNil(t, filter.Date)
	require.NotNil(t, filter.StaffID)
	require.Equal(t, int64(3), *filter.StaffID)
	require.NotNil(t, filter.Status)
	require.Equal(t, domain.BookingPending, *filter.Status)

	r = httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	filter, err = parseBookingFilter(r)
	require.NoError(t, err)
	require.Nil(t, filter.Date)
	require.Nil(t, filter.StaffID)
	require.Nil(t, filter.Status)

	r = httptest.NewRequest(http.MethodGet, "/admin/bookings?status=rescheduled", nil)
	_, err = parseBookingFilter(r)
	require.ErrorIs(t, err, service.ErrInvalidStatus)

	r = httptest.NewRequest(http.MethodGet, "/admin/bookings?staffId=mike", nil)
	_, err = parseBookingFilter(r)
	require.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	openStr, closeStr := "08:30", "17:00"
	open, close, err := parseWindow(&openStr, &closeStr)
	require.NoError(t, err)
	require.Equal(t, "08:30", open.String())
	require.Equal(t, "17:00", close.String())

	// Missing values fall back to the 09:00-18:00 defaults.
	open, close, err = parseWindow(nil, nil)
	require.NoError(t, err)
	require.Equal(t, "09:00", open.String())
	require.Equal(t, "18:00", close.String())

	bad := "5pm"
	_, _, err = parseWindow(&openStr, &bad)
	require.Error(t, err)
}

func TestBookingPayload(t *testing.T) {
	b := domain.Booking{
		ID:        7,
		Code:      "abc-123",
		ServiceID: 1,
		StaffID:   2,
		StartTime: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
		Status:    domain.BookingPending,
	}
	payload := bookingPayload(b)
	require.Equal(t, "abc-123", payload["code"])
	require.Equal(t, "2025-06-02T10:00", payload["startTime"])
	require.Equal(t, "2025-06-02T10:30", payload["endTime"])
	require.Equal(t, "pending", payload["status"])
}

func TestBookingsWorkbook(t *testing.T) {
	buf, err := bookingsWorkbook([]domain.Booking{
		{
			ID: 1, Code: "abc", CustomerName: "Dana", ServiceName: "Oil Change",
			StaffName: "Mike Torres",
			StartTime: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
			Status:    domain.BookingConfirmed,
		},
	})
	require.NoError(t, err)
	require.NotZero(t, buf.Len())
}
