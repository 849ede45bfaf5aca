package config

import "time"

const (
	envPort          = "PORT"
	envLogLevel      = "LOG_LEVEL"
	envLogFormat     = "LOG_FORMAT"
	envSolverTimeout = "SOLVER_TIME_LIMIT"
	envMaxBodyBytes  = "MAX_BODY_BYTES"
	envMaxConcurrent = "SOLVER_MAX_CONCURRENT"
	envMetricsPort   = "METRICS_PORT"
	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort        = "8000"
	defaultMetricsPort = "9090"
	defaultService     = "mister-service"
	// Bounds a single search; the best assignment found so far is kept when it fires.
	defaultSolverTimeLimit = 30 * time.Second
	defaultMaxBodyBytes    = 1 << 20
	// 0 disables the cap.
	defaultMaxConcurrent = 4
)
