package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
)

type HoursHandler struct {
	Repo repository.HoursRepository
}

func (h HoursHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/hours", h.list)
	r.Put("/admin/hours", h.save)
}

func (h HoursHandler) list(w http.ResponseWriter, r *http.Request) {
	schedule := domain.ScheduleType(r.URL.Query().Get("schedule"))
	if schedule == "" {
		schedule = domain.ScheduleRegular
	}
	if !schedule.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown schedule type")
		return
	}
	items, err := h.Repo.ListBySchedule(r.Context(), schedule)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, bh := range items {
		resp = append(resp, hoursPayload(bh))
	}
	writeJSON(w, http.StatusOK, resp)
}

// save upserts the whole week for one schedule type in a single request,
// mirroring the weekly hours form.
func (h HoursHandler) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Schedule string `json:"schedule"`
		Days     []struct {
			Day    int     `json:"day"`
			Open   *string `json:"open"`
			Close  *string `json:"close"`
			Closed bool    `json:"closed"`
		} `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	schedule := domain.ScheduleType(req.Schedule)
	if !schedule.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown schedule type")
		return
	}
	for _, d := range req.Days {
		if d.Day < int(domain.Monday) || d.Day > int(domain.Sunday) {
			writeError(w, http.StatusBadRequest, "day must be 0 (Monday) through 6 (Sunday)")
			return
		}
		bh := domain.BusinessHours{
			Day:      domain.Weekday(d.Day),
			Schedule: schedule,
			Closed:   d.Closed,
		}
		if !d.Closed {
			open, close, err := parseWindow(d.Open, d.Close)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid time for "+bh.Day.String())
				return
			}
			bh.Open = open
			bh.Close = close
		}
		if err := h.Repo.Upsert(r.Context(), bh); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseWindow(openStr, closeStr *string) (*domain.TimeOfDay, *domain.TimeOfDay, error) {
	// Defaults match the original weekly form.
	open := domain.TimeOfDay{Hour: 9}
	close := domain.TimeOfDay{Hour: 18}
	if openStr != nil {
		parsed, err := domain.ParseTimeOfDay(*openStr)
		if err != nil {
			return nil, nil, err
		}
		open = parsed
	}
	if closeStr != nil {
		parsed, err := domain.ParseTimeOfDay(*closeStr)
		if err != nil {
			return nil, nil, err
		}
		close = parsed
	}
	return &open, &close, nil
}

func hoursPayload(bh domain.BusinessHours) map[string]any {
	payload := map[string]any{
		"day":      int(bh.Day),
		"dayName":  bh.Day.String(),
		"schedule": string(bh.Schedule),
		"closed":   bh.Closed,
		"open":     nil,
		"close":    nil,
	}
	if bh.Open != nil {
		payload["open"] = bh.Open.String()
	}
	if bh.Close != nil {
		payload["close"] = bh.Close.String()
	}
	return payload
}
