package handlers

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/mister-service/internal/domain"
)

// DefaultMaxBodyBytes caps scenario payloads when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// TeamMaker solves scenarios into teams.
type TeamMaker interface {
	MakeTeams(ctx context.Context, scenario domain.Scenario) (domain.Solution, error)
}

// Handler wires HTTP routes to the team service.
type Handler struct {
	svc          TeamMaker
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewHandler constructs a Handler. A non-positive maxBodyBytes uses DefaultMaxBodyBytes.
func NewHandler(svc TeamMaker, logger *slog.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		svc:          svc,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// ServeHTTP dispatches the known routes.
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.URL.Path {
	case "/health":
		h.Health(w, r)
	case "/make-teams":
		h.MakeTeams(w, r)
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	resp := map[string]string{"status": "ok"}
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// MakeTeams decodes a scenario, solves it and returns the teams.
func (h *Handler) MakeTeams(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodPost {
		w.Header().Set("Allow", nethttp.MethodPost)
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	logger := loggerFromContext(r, h.logger)

	scenario, err := domain.DecodeScenario(nethttp.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *nethttp.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, nethttp.StatusRequestEntityTooLarge, "request body too large", logger)
			return
		}
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), logger)
		return
	}

	solution, err := h.svc.MakeTeams(r.Context(), scenario)
	if err != nil {
		writeSolveError(w, r, scenario, err, logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, solution, logger)
}
