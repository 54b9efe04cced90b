package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
)

type ServiceHandler struct {
	Repo repository.ServiceRepository
}

func (h ServiceHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/services", h.list)
}

func (h ServiceHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admin/services", h.upsert)
	r.Delete("/admin/services/{id}", h.delete)
}

func (h ServiceHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, servicePayload(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ServiceHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID              *int64 `json:"id"`
		Name            string `json:"name"`
		Description     string `json:"description"`
		DurationMinutes int    `json:"durationMinutes"`
		PriceCents      int64  `json:"priceCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.DurationMinutes <= 0 || req.PriceCents < 0 {
		writeError(w, http.StatusBadRequest, "name, a positive duration and a non-negative price are required")
		return
	}
	s := domain.Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
	}
	if req.ID != nil {
		s.ID = *req.ID
	}
	saved, err := h.Repo.Upsert(r.Context(), s)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, servicePayload(*saved))
}

func (h ServiceHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func servicePayload(s domain.Service) map[string]any {
	return map[string]any{
		"id":              s.ID,
		"name":            s.Name,
		"description":     s.Description,
		"durationMinutes": s.DurationMinutes,
		"priceCents":      s.PriceCents,
	}
}
