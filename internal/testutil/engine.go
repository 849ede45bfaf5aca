package testutil

import (
	"context"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
)

// StubEngine replays canned solutions through the callback and returns Resp.
type StubEngine struct {
	Stream []cpmodel.Solution
	Resp   cpmodel.Response
	Err    error
	Calls  int
	Model  *cpmodel.Model
}

func (e *StubEngine) Solve(ctx context.Context, m *cpmodel.Model, cb cpmodel.Callback) (cpmodel.Response, error) {
	_ = ctx
	e.Calls++
	e.Model = m
	if cb != nil {
		for _, s := range e.Stream {
			cb(s)
		}
	}
	return e.Resp, e.Err
}
