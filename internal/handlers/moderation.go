package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pulse-backend/internal/lifecycle"
	"pulse-backend/internal/middleware"
	"pulse-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 20

type ModerationHandler struct {
	engine *lifecycle.Engine
}

func NewModerationHandler(engine *lifecycle.Engine) *ModerationHandler {
	return &ModerationHandler{
		engine: engine,
	}
}

// --- GET /moderate/feedbacks ---

func (h *ModerationHandler) ListFeedbacks(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	query := lifecycle.ListQuery{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
		Skip:   intQueryParam(r, "skip", 0),
		Limit:  intQueryParam(r, "limit", defaultListLimit),
	}

	items, err := h.engine.List(r.Context(), identity, query)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// --- POST /moderate/feedbacks/{id}/status ---

func (h *ModerationHandler) UpdateFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	item, err := h.engine.Transition(r.Context(), identity, id, models.Status(req.Status))
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
