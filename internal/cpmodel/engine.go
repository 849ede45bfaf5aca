package cpmodel

import (
	"context"
	"time"
)

// Status is the terminal state of a search.
type Status int

const (
	Unknown Status = iota
	Optimal
	Feasible
	Infeasible
	ModelInvalid
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case ModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether the status carries an assignment.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Solution is one feasible assignment. Values is indexed by Var.
type Solution struct {
	Objective int
	Values    []int
}

// Value returns the value assigned to v.
func (s Solution) Value(v Var) int {
	if int(v) < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// BoolValue reports whether v is true in the assignment.
func (s Solution) BoolValue(v Var) bool {
	return s.Value(v) != 0
}

// Stats summarises the search effort.
type Stats struct {
	Conflicts int64
	Branches  int64
	WallTime  time.Duration
	Solutions int
}

// Response is the outcome of Engine.Solve. Best is only meaningful when
// Status.HasSolution() is true.
type Response struct {
	Status Status
	Best   Solution
	Stats  Stats
}

// Callback receives each newly found feasible solution during search. It is
// called from the goroutine that invoked Solve.
type Callback func(Solution)

// Engine searches a Model for an assignment minimising its objective.
// Implementations must not retain state between calls.
type Engine interface {
	Solve(ctx context.Context, m *Model, cb Callback) (Response, error)
}
