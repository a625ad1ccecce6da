package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pulse-backend/internal/lifecycle"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeLifecycleError maps the lifecycle error taxonomy onto HTTP responses.
// Unknown errors become an opaque 500.
func writeLifecycleError(w http.ResponseWriter, err error) {
	var (
		validation *lifecycle.ValidationError
		rejected   *lifecycle.ContentRejectedError
		finalized  *lifecycle.AlreadyFinalizedError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Reason})
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "profanity detected: '" + rejected.Term + "' in feedback",
		})
	case errors.As(err, &finalized):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "already " + string(finalized.Current),
		})
	case errors.Is(err, lifecycle.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "moderator role required"})
	case errors.Is(err, lifecycle.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "feedback not found"})
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status update"})
	default:
		log.Printf("Error handling request: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
