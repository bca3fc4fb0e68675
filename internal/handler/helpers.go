package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/notepad/internal/provider"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeProviderError maps the data layer's error taxonomy onto HTTP status
// codes; anything unrecognized is logged and reported as a 500.
func writeProviderError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *provider.ValidationError
	var constraintErr *provider.ConstraintError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.As(err, &constraintErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": constraintErr.Error()})
	case errors.Is(err, provider.ErrUnknownRoute), errors.Is(err, provider.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, provider.ErrStreamUnsupported):
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "stream type not supported"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
