package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"persona/internal/domain"
	"persona/internal/platform/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to HTTP responses. Internal
// detail never leaks: storage and unknown errors collapse to a generic 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrAuthRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrStorageFull):
		writeJSON(w, http.StatusInsufficientStorage, map[string]string{"error": "local storage is full"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// modeOf derives the storage mode from what the identity middleware resolved.
func modeOf(r *http.Request) domain.Mode {
	ctx := r.Context()
	if middleware.IsGuestRequest(ctx) {
		return domain.GuestMode()
	}
	return domain.RemoteMode(domain.Identity{
		ID:    middleware.GetUserID(ctx),
		Email: middleware.GetEmail(ctx),
	})
}
