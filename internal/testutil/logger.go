package testutil

import (
	"bytes"
	"log/slog"

	"github.com/preston-bernstein/mister-service/internal/logging"
)

// NewBufferLogger returns a debug-level text logger writing to the returned
// buffer, built the same way the binaries build theirs.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "debug", Output: &buf})
	return logger, &buf
}
