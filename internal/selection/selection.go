// Package selection runs a search and picks the assignment to return.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/logging"
)

const (
	// AcceptanceRatio is the share of the epsilon range a solution may use
	// and still be eligible for the representative pick.
	AcceptanceRatio = 0.32
	// MinSolutions is how many candidates the representative pick wants to
	// choose from before it stops widening the objective window.
	MinSolutions = 3

	maxEpsilon = domain.MaxRating
)

// Policy names how a solution is chosen.
type Policy string

const (
	PolicyOptimal        Policy = "optimal"
	PolicyRepresentative Policy = "representative"
)

// PolicyFor maps the scenario flag to a policy.
func PolicyFor(optimal bool) Policy {
	if optimal {
		return PolicyOptimal
	}
	return PolicyRepresentative
}

// AcceptanceLimit is the largest objective recorded by the representative policy.
func AcceptanceLimit() int {
	return int(maxEpsilon * AcceptanceRatio)
}

// Rand picks an index in [0, n).
type Rand interface {
	Intn(n int) int
}

// Result is the chosen assignment together with the search outcome.
type Result struct {
	Policy   Policy
	Solution cpmodel.Solution
	Status   cpmodel.Status
	Stats    cpmodel.Stats
	// Accepted counts the solutions recorded under the acceptance limit.
	Accepted int
}

// Selector runs the engine and applies a policy to what it finds.
type Selector struct {
	engine cpmodel.Engine
	rng    Rand
	logger *slog.Logger
}

// New returns a selector. rng is only used by the representative policy.
func New(engine cpmodel.Engine, rng Rand, logger *slog.Logger) *Selector {
	return &Selector{engine: engine, rng: rng, logger: logger}
}

// Select solves model and returns the assignment chosen by policy.
func (s *Selector) Select(ctx context.Context, model *cpmodel.Model, policy Policy) (Result, error) {
	if policy == PolicyOptimal {
		return s.optimal(ctx, model)
	}
	return s.representative(ctx, model)
}

func (s *Selector) optimal(ctx context.Context, model *cpmodel.Model) (Result, error) {
	resp, err := s.engine.Solve(ctx, model, nil)
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	res := Result{Policy: PolicyOptimal, Status: resp.Status, Stats: resp.Stats}
	if resp.Status != cpmodel.Optimal {
		return res, &domain.NoSolutionError{Status: resp.Status.String()}
	}
	res.Solution = resp.Best
	return res, nil
}

func (s *Selector) representative(ctx context.Context, model *cpmodel.Model) (Result, error) {
	acc := NewAccumulator(AcceptanceLimit())
	resp, err := s.engine.Solve(ctx, model, func(sol cpmodel.Solution) {
		if acc.Record(sol) {
			logging.Debug(s.logger, "solution accepted",
				logging.FieldEpsilon, sol.Objective,
				logging.FieldCount, acc.Len(),
			)
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	res := Result{Policy: PolicyRepresentative, Status: resp.Status, Stats: resp.Stats, Accepted: acc.Len()}
	if !resp.Status.HasSolution() || acc.Len() == 0 {
		return res, &domain.NoSolutionError{Status: resp.Status.String()}
	}

	candidates := acc.Candidates(MinSolutions)
	res.Solution = candidates[s.pick(len(candidates))]
	return res, nil
}

func (s *Selector) pick(n int) int {
	if s.rng == nil || n <= 1 {
		return 0
	}
	return s.rng.Intn(n)
}

// Accumulator records the solutions streamed during one search. It is not
// safe for concurrent use and must not outlive the search that fills it.
type Accumulator struct {
	limit     int
	solutions []cpmodel.Solution
}

// NewAccumulator keeps solutions whose objective is at most limit.
func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{limit: limit}
}

// Record stores sol if it is under the limit and reports whether it did.
func (a *Accumulator) Record(sol cpmodel.Solution) bool {
	if sol.Objective > a.limit {
		return false
	}
	a.solutions = append(a.solutions, cpmodel.Solution{
		Objective: sol.Objective,
		Values:    append([]int(nil), sol.Values...),
	})
	return true
}

// Len returns the number of recorded solutions.
func (a *Accumulator) Len() int { return len(a.solutions) }

// Candidates returns the best recorded solutions: whole groups of equal
// objective, best first, until at least want are collected or none remain.
func (a *Accumulator) Candidates(want int) []cpmodel.Solution {
	sorted := append([]cpmodel.Solution(nil), a.solutions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Objective < sorted[j].Objective })

	end := 0
	for end < len(sorted) && end < want {
		group := sorted[end].Objective
		for end < len(sorted) && sorted[end].Objective == group {
			end++
		}
	}
	return sorted[:end]
}
