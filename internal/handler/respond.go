package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nimbusdrive/nimbus/internal/ai"
	"github.com/nimbusdrive/nimbus/internal/vfs"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondVFSError maps the drive's error taxonomy to one uniform failure
// shape. Raw store errors never reach the client.
func respondVFSError(w http.ResponseWriter, err error) {
	var bulk *vfs.BulkError

	switch {
	case errors.Is(err, vfs.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, vfs.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, vfs.ErrNameRequired):
		respondError(w, http.StatusUnprocessableEntity, "name is required")
	case errors.Is(err, vfs.ErrInvalidView), errors.Is(err, vfs.ErrInvalidItemKind):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrDisabled):
		respondError(w, http.StatusServiceUnavailable, "ai features are not configured")
	case errors.As(err, &bulk):
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"error":     "some items could not be deleted",
			"failedIds": bulk.FailedIDs,
		})
	default:
		slog.Error("drive operation failed", "error", err)
		respondError(w, http.StatusBadGateway, "operation failed, please try again")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
