package cpmodel

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// limitedEngine caps the number of searches running at once.
type limitedEngine struct {
	next   Engine
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// Limit wraps next so that at most n searches run concurrently. Callers beyond
// the cap block until a slot frees or their context is done. n < 1 returns next
// unchanged.
func Limit(next Engine, n int64, logger *slog.Logger) Engine {
	if n < 1 || next == nil {
		return next
	}
	return &limitedEngine{next: next, sem: semaphore.NewWeighted(n), logger: logger}
}

func (e *limitedEngine) Solve(ctx context.Context, m *Model, cb Callback) (Response, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		if e.logger != nil {
			e.logger.Warn("solve canceled while waiting for a slot")
		}
		return Response{}, err
	}
	defer e.sem.Release(1)
	return e.next.Solve(ctx, m, cb)
}
