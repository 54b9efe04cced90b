package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/service"
)

// SettingsHandler exposes the active-schedule switch. Flipping it changes
// which business-hours rows govern new bookings; stored bookings keep their
// times.
type SettingsHandler struct {
	Service *service.BookingService
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/settings/active-schedule", h.get)
	r.Put("/admin/settings/active-schedule", h.save)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Service.ActiveSchedule(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"activeSchedule": string(schedule)})
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActiveSchedule string `json:"activeSchedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	schedule := domain.ScheduleType(req.ActiveSchedule)
	if !schedule.IsValid() {
		writeError(w, http.StatusBadRequest, "activeSchedule must be regular or ramadan")
		return
	}
	if err := h.Service.SetActiveSchedule(r.Context(), schedule); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"activeSchedule": string(schedule)})
}
