package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
	"github.com/knowelle28/autobook/internal/server/authctx"
	"github.com/knowelle28/autobook/internal/service"
)

// timestampLayout renders shop-local wall-clock times, no timezone.
const timestampLayout = "2006-01-02T15:04"

type BookingHandler struct {
	Service *service.BookingService
	Repo    repository.BookingRepository
}

func (h BookingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bookings", h.create)
	r.Get("/bookings", h.listOwn)
	r.Post("/bookings/{id}/cancel", h.cancel)
}

func (h BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		ServiceID int64  `json:"serviceId"`
		StaffID   int64  `json:"staffId"`
		StartTime string `json:"startTime"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	booking, err := h.Service.CreateBooking(r.Context(), user.ID, service.CreateBookingInput{
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		StartTime: req.StartTime,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, bookingErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, bookingPayload(*booking))
}

func (h BookingHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Repo.ListByUser(r.Context(), user.ID, 200)
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

func (h BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	booking, err := h.Service.Cancel(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, bookingErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookingPayload(*booking))
}

func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrStaffNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrStaffConflict),
		errors.Is(err, service.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidStart),
		errors.Is(err, service.ErrInThePast),
		errors.Is(err, service.ErrClosed),
		errors.Is(err, service.ErrOutsideHours),
		errors.Is(err, service.ErrPastBooking),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func bookingPayload(b domain.Booking) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"code":      b.Code,
		"serviceId": b.ServiceID,
		"staffId":   b.StaffID,
		"service":   b.ServiceName,
		"staff":     b.StaffName,
		"customer":  b.CustomerName,
		"startTime": b.StartTime.Format(timestampLayout),
		"endTime":   b.EndTime.Format(timestampLayout),
		"status":    string(b.Status),
		"notes":     b.Notes,
	}
}
