package handlers

import (
	"encoding/json"
	"net/http"

	"pulse-backend/internal/lifecycle"
	"pulse-backend/internal/middleware"
)

type FeedbackHandler struct {
	engine *lifecycle.Engine
}

func NewFeedbackHandler(engine *lifecycle.Engine) *FeedbackHandler {
	return &FeedbackHandler{
		engine: engine,
	}
}

type SubmitFeedbackRequest struct {
	Content string `json:"content"`
}

// --- POST /feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.engine.Submit(r.Context(), identity, req.Content)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}
