package logging

import "log/slog"

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldPolicy     = "policy"
	FieldPlayers    = "players"
	FieldTeams      = "teams"
	FieldEpsilon    = "epsilon"
	FieldAvgRating  = "avg_rating"
	FieldStatus     = "solver_status"
	FieldConflicts  = "conflicts"
	FieldBranches   = "branches"
	FieldWallTime   = "wall_time"
	FieldSolutions  = "solutions"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
