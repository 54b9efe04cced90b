package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
	"github.com/knowelle28/autobook/internal/service"
)

// statusColors key the calendar rendering by booking status.
var statusColors = map[domain.BookingStatus]string{
	domain.BookingPending:   "#f6c23e",
	domain.BookingConfirmed: "#1cc88a",
	domain.BookingCancelled: "#e74a3b",
}

type AdminHandler struct {
	Service *service.BookingService
	Repo    repository.BookingRepository

	// Now is the clock for the dashboard's "today"; tests override it.
	Now func() time.Time
}

func (h AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/dashboard", h.dashboard)
	r.Get("/admin/bookings", h.bookings)
	r.Post("/admin/bookings/{id}/status", h.updateStatus)
	r.Get("/admin/bookings/export", h.export)
	r.Get("/admin/calendar", h.calendar)
}

func (h AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := h.Repo.ListBetween(r.Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts, err := h.Repo.CountByStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	todayPayload := make([]map[string]any, 0, len(today))
	for _, b := range today {
		todayPayload = append(todayPayload, bookingPayload(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":           dayStart.Format(dateLayout),
		"todayBookings":  todayPayload,
		"totalBookings":  counts.Total,
		"pendingCount":   counts.Pending,
		"confirmedCount": counts.Confirmed,
	})
}

func (h AdminHandler) bookings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.ListFiltered(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, bookingPayload(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	booking, err := h.Service.UpdateStatus(r.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(w, bookingErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookingPayload(*booking))
}

func (h AdminHandler) export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.ListFiltered(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	buf, err := bookingsWorkbook(items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (h AdminHandler) calendar(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.ListFiltered(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events := make([]map[string]any, 0, len(items))
	for _, b := range items {
		events = append(events, calendarEvent(b))
	}
	// Raw array: calendar widgets consume the feed directly.
	writeRawJSON(w, http.StatusOK, events)
}

func parseBookingFilter(r *http.Request) (repository.BookingFilter, error) {
	var filter repository.BookingFilter
	date, err := parseDateQuery(r, "date")
	if err != nil {
		return filter, err
	}
	filter.Date = date
	if raw := r.URL.Query().Get("staffId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.StaffID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.BookingStatus(raw)
		if !status.IsValid() {
			return filter, service.ErrInvalidStatus
		}
		filter.Status = &status
	}
	return filter, nil
}

func calendarEvent(b domain.Booking) map[string]any {
	color, ok := statusColors[b.Status]
	if !ok {
		color = statusColors[domain.BookingPending]
	}
	return map[string]any{
		"id":    b.ID,
		"title": b.ServiceName + " - " + b.CustomerName,
		"start": b.StartTime.Format(timestampLayout),
		"end":   b.EndTime.Format(timestampLayout),
		"color": color,
		"extendedProps": map[string]any{
			"staff":    b.StaffName,
			"service":  b.ServiceName,
			"customer": b.CustomerName,
			"notes":    b.Notes,
			"status":   string(b.Status),
		},
	}
}

func bookingsWorkbook(items []domain.Booking) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Code", "Customer", "Service", "Staff", "Start", "End", "Status", "Notes"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, b := range items {
		row := r + 2
		values := []any{
			b.ID,
			b.Code,
			b.CustomerName,
			b.ServiceName,
			b.StaffName,
			b.StartTime.Format(timestampLayout),
			b.EndTime.Format(timestampLayout),
			string(b.Status),
			b.Notes,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 38)
	_ = f.SetColWidth(sheet, "C", "E", 24)
	_ = f.SetColWidth(sheet, "F", "G", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
