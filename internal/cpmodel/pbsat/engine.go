// Package pbsat solves cpmodel models with the gophersat pseudo-boolean solver.
package pbsat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crillab/gophersat/solver"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/logging"
)

// Engine is a cpmodel.Engine backed by gophersat. The zero value searches
// without a time limit.
type Engine struct {
	// TimeLimit bounds a single search; 0 means unbounded. When it expires the
	// best assignment found so far is reported as Feasible.
	TimeLimit time.Duration
	Logger    *slog.Logger
}

// New returns an Engine with the given search time limit.
func New(timeLimit time.Duration, logger *slog.Logger) *Engine {
	return &Engine{TimeLimit: timeLimit, Logger: logger}
}

var _ cpmodel.Engine = (*Engine)(nil)

// Solve implements cpmodel.Engine.
func (e *Engine) Solve(ctx context.Context, m *cpmodel.Model, cb cpmodel.Callback) (cpmodel.Response, error) {
	if err := m.Validate(); err != nil {
		return cpmodel.Response{Status: cpmodel.ModelInvalid}, err
	}

	start := time.Now()
	enc := encode(m)
	if enc.infeasible {
		return cpmodel.Response{Status: cpmodel.Infeasible, Stats: cpmodel.Stats{WallTime: time.Since(start)}}, nil
	}

	objective, hasObjective := m.Objective()
	cost := enc.linearize(objective)
	costLits, costWeights, costConst := cost.positive()
	enc.anchorUnreferenced(costLits)

	if enc.nbVars == 0 {
		// Nothing to decide: the empty assignment is the only one.
		sol := cpmodel.Solution{Objective: objective.Constant, Values: enc.decode(nil)}
		if cb != nil {
			cb(sol)
		}
		return cpmodel.Response{
			Status: cpmodel.Optimal,
			Best:   sol,
			Stats:  cpmodel.Stats{WallTime: time.Since(start), Solutions: 1},
		}, nil
	}

	searchCtx := ctx
	if e.TimeLimit > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, e.TimeLimit)
		defer cancel()
	}

	var (
		resp cpmodel.Response
		err  error
	)
	if hasObjective && len(costLits) > 0 {
		resp = e.optimize(searchCtx, enc, objective, costBound{lits: costLits, weights: costWeights, constant: costConst}, cb)
	} else {
		resp, err = e.satisfy(searchCtx, enc, objective, cb)
	}
	resp.Stats.WallTime = time.Since(start)

	logging.Debug(e.Logger, "pseudo-boolean search finished",
		"status", resp.Status.String(),
		"sat_vars", enc.nbVars,
		"constraints", len(enc.constrs),
		"solutions", resp.Stats.Solutions,
		"conflicts", resp.Stats.Conflicts,
	)
	return resp, err
}

// costBound is the objective in positive-weight form: the objective equals
// constant plus the weights of the true literals.
type costBound struct {
	lits     []int
	weights  []int
	constant int
}

// below returns a constraint admitting only assignments whose objective is
// strictly less than objective.
func (c costBound) below(objective int) solver.PBConstr {
	total := 0
	negated := make([]int, len(c.lits))
	for i, l := range c.lits {
		negated[i] = -l
		total += c.weights[i]
	}
	spent := objective - c.constant
	// sum(w * lit) <= spent-1  <=>  sum(w * not lit) >= total-spent+1
	return solver.GtEq(negated, c.weights, total-spent+1)
}

// round is the outcome of one complete SAT search.
type round struct {
	status    solver.Status
	model     []bool
	conflicts int64
	decisions int64
}

func solveRound(constrs []solver.PBConstr) round {
	s := solver.New(solver.ParsePBConstrs(constrs))
	r := round{status: s.Solve()}
	if r.status == solver.Sat {
		r.model = s.Model()
	}
	r.conflicts = int64(s.Stats.NbConflicts)
	r.decisions = int64(s.Stats.NbDecisions)
	return r
}

// runRound searches constrs on its own goroutine and gives up when ctx is
// done. An abandoned round finishes in the background and its result is
// dropped. ok is false when the round was abandoned.
func runRound(ctx context.Context, constrs []solver.PBConstr) (r round, ok bool) {
	if ctx.Err() != nil {
		return round{}, false
	}
	done := make(chan round, 1)
	go func() { done <- solveRound(constrs) }()
	select {
	case r = <-done:
		return r, true
	case <-ctx.Done():
		select {
		case r = <-done:
			return r, true
		default:
			return round{}, false
		}
	}
}

// optimize repeatedly solves the model with a bound forcing a strictly better
// objective than the incumbent, streaming each improvement to cb. It stops when
// no better assignment exists, the objective cannot decrease further, or ctx is
// done; in the last case the incumbent is reported as Feasible.
func (e *Engine) optimize(ctx context.Context, enc *encoding, objective cpmodel.LinearExpr, cost costBound, cb cpmodel.Callback) cpmodel.Response {
	base := enc.constrs[:len(enc.constrs):len(enc.constrs)]
	constrs := base

	var (
		best        *cpmodel.Solution
		stats       cpmodel.Stats
		proved      bool
		interrupted bool
	)
	for {
		r, ok := runRound(ctx, constrs)
		if !ok {
			interrupted = true
			break
		}
		stats.Conflicts += r.conflicts
		stats.Branches += r.decisions
		if r.status == solver.Unsat {
			proved = true
			break
		}
		if r.status != solver.Sat {
			break
		}

		values := enc.decode(r.model)
		sol := cpmodel.Solution{Objective: objective.Eval(values), Values: values}
		if best != nil && sol.Objective >= best.Objective {
			// The bound forbids this; treat it as the end of the search.
			break
		}
		best = &sol
		stats.Solutions++
		if cb != nil {
			cb(sol)
		}
		if sol.Objective <= cost.constant {
			proved = true
			break
		}
		constrs = append(base, cost.below(sol.Objective))
	}

	if interrupted {
		logging.Debug(e.Logger, "pseudo-boolean search interrupted", "solutions", stats.Solutions)
	}
	resp := cpmodel.Response{Stats: stats}
	switch {
	case best != nil && proved:
		resp.Status = cpmodel.Optimal
	case best != nil:
		resp.Status = cpmodel.Feasible
	case proved:
		resp.Status = cpmodel.Infeasible
	default:
		resp.Status = cpmodel.Unknown
	}
	if best != nil {
		resp.Best = *best
	}
	return resp
}

// satisfy looks for any model when there is nothing to minimise.
func (e *Engine) satisfy(ctx context.Context, enc *encoding, objective cpmodel.LinearExpr, cb cpmodel.Callback) (cpmodel.Response, error) {
	r, ok := runRound(ctx, enc.constrs)
	if !ok {
		return cpmodel.Response{Status: cpmodel.Unknown}, nil
	}
	stats := cpmodel.Stats{Conflicts: r.conflicts, Branches: r.decisions}
	switch r.status {
	case solver.Sat:
		values := enc.decode(r.model)
		sol := cpmodel.Solution{Objective: objective.Eval(values), Values: values}
		if cb != nil {
			cb(sol)
		}
		stats.Solutions = 1
		return cpmodel.Response{Status: cpmodel.Optimal, Best: sol, Stats: stats}, nil
	case solver.Unsat:
		return cpmodel.Response{Status: cpmodel.Infeasible, Stats: stats}, nil
	default:
		return cpmodel.Response{Status: cpmodel.Unknown, Stats: stats}, fmt.Errorf("solver returned indeterminate status %v", r.status)
	}
}
