package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/repository"
)

type StaffHandler struct {
	Repo repository.StaffRepository
}

func (h StaffHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/staff", h.list)
}

func (h StaffHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admin/staff", h.upsert)
	r.Delete("/admin/staff/{id}", h.delete)
}

func (h StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, staffPayload(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h StaffHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        *int64 `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Specialty string `json:"specialty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	s := domain.Staff{
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Specialty: req.Specialty,
	}
	if req.ID != nil {
		s.ID = *req.ID
	}
	saved, err := h.Repo.Upsert(r.Context(), s)
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "a staff member with that email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, staffPayload(*saved))
}

func (h StaffHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func staffPayload(s domain.Staff) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"name":      s.Name,
		"email":     s.Email,
		"specialty": s.Specialty,
	}
}
