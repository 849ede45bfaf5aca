package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/http/middleware"
	"github.com/preston-bernstein/mister-service/internal/logging"
	"github.com/preston-bernstein/mister-service/internal/selection"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err, logging.FieldStatusCode, status)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeSolveError answers a failed solve. Domain errors go back to the caller
// as 400 with their message; anything else is logged and reported as 500.
func writeSolveError(w http.ResponseWriter, r *http.Request, scenario domain.Scenario, err error, logger *slog.Logger) {
	attrs := []any{
		logging.FieldPolicy, selection.PolicyFor(scenario.Optimal),
		logging.FieldPlayers, len(scenario.Players),
		logging.FieldTeams, scenario.NTeams,
	}
	if domain.IsDomainError(err) {
		logging.Info(logger, "scenario rejected", append(attrs, "reason", err.Error())...)
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	logging.Error(logger, "make teams failed", err, attrs...)
	writeError(w, r, http.StatusInternalServerError, "unknown error", logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
