package server

import "time"

const (
	readTimeout = 10 * time.Second
	// Leaves room for a full solver run plus encoding on top of the configured limit.
	writeSlack  = 10 * time.Second
	idleTimeout = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second

func writeTimeout(solverLimit time.Duration) time.Duration {
	return solverLimit + writeSlack
}
