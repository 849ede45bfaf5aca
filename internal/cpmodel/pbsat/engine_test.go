package pbsat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/planner"
	"github.com/preston-bernstein/mister-service/internal/testutil"
)

func TestSolveMinimizesIntegerObjective(t *testing.T) {
	m := cpmodel.NewModel()
	x := m.NewIntVar(2, 9, "x")
	y := m.NewIntVar(0, 5, "y")
	// x + y >= 7, minimise 2x + y
	m.AddGreaterOrEqual(cpmodel.Sum(x, y), 7)
	m.Minimize(cpmodel.WeightedSum([]cpmodel.Var{x, y}, []int{2, 1}))

	var seen []int
	resp, err := New(0, nil).Solve(context.Background(), m, func(s cpmodel.Solution) {
		seen = append(seen, s.Objective)
	})
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	assert.Equal(t, 2, resp.Best.Value(x))
	assert.Equal(t, 5, resp.Best.Value(y))
	assert.Equal(t, 9, resp.Best.Objective)
	require.NoError(t, m.Check(resp.Best.Values))

	require.NotEmpty(t, seen)
	assert.Equal(t, 9, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i], seen[i-1], "callback objectives must strictly improve")
	}
	assert.Equal(t, len(seen), resp.Stats.Solutions)
}

func TestSolveNegativeCoefficients(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	e := m.NewIntVar(0, 10, "e")
	// |3a - 2b - 1| <= e
	diff := cpmodel.WeightedSum([]cpmodel.Var{a, b}, []int{3, -2}).AddConstant(-1)
	m.AddLessOrEqual(diff.Minus(cpmodel.Sum(e)), 0)
	m.AddGreaterOrEqual(diff.Plus(cpmodel.Sum(e)), 0)
	m.AddEquality(cpmodel.Sum(a), 1)
	m.Minimize(cpmodel.Sum(e))

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	// a=1: b=1 gives 0, b=0 gives 2.
	assert.True(t, resp.Best.BoolValue(b))
	assert.Equal(t, 0, resp.Best.Value(e))
}

func TestSolveInfeasible(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddEquality(cpmodel.Sum(a, b), 2)
	m.AddLessOrEqual(cpmodel.Sum(a, b), 1)
	m.Minimize(cpmodel.Sum(a))

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Equal(t, cpmodel.Infeasible, resp.Status)
	assert.False(t, resp.Status.HasSolution())
}

func TestSolveTriviallyInfeasibleBound(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	m.AddGreaterOrEqual(cpmodel.Sum(a), 2)
	m.Minimize(cpmodel.Sum(a))

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Equal(t, cpmodel.Infeasible, resp.Status)
}

func TestSolveHonoursEnforcement(t *testing.T) {
	m := cpmodel.NewModel()
	x := m.NewIntVar(0, 4, "x")
	y := m.NewIntVar(0, 4, "y")
	eq := m.NewBoolVar("x == y")
	plus := m.NewBoolVar("x == y + 1")
	m.AddEquality(cpmodel.Sum(x).Minus(cpmodel.Sum(y)), 0).OnlyEnforceIf(eq)
	m.AddEquality(cpmodel.Sum(x).Minus(cpmodel.Sum(y)), 1).OnlyEnforceIf(plus)
	m.AddBoolOr(eq, plus)
	m.AddEquality(cpmodel.Sum(x), 3)
	// prefer x == y + 1 by minimising y
	m.Minimize(cpmodel.Sum(y))

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	assert.Equal(t, 3, resp.Best.Value(x))
	assert.Equal(t, 2, resp.Best.Value(y))
	assert.True(t, resp.Best.BoolValue(plus))
	require.NoError(t, m.Check(resp.Best.Values))
}

func TestSolveMultipleEnforcementLiterals(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	x := m.NewIntVar(0, 3, "x")
	m.AddGreaterOrEqual(cpmodel.Sum(x), 3).OnlyEnforceIf(a, b)
	m.AddEquality(cpmodel.Sum(a, b), 2)
	m.Minimize(cpmodel.Sum(x))

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	assert.Equal(t, 3, resp.Best.Value(x))
}

func TestSolveWithoutObjective(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddBoolOr(a, b)
	m.AddEquality(cpmodel.Sum(a), 0)

	calls := 0
	resp, err := New(0, nil).Solve(context.Background(), m, func(cpmodel.Solution) { calls++ })
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	assert.True(t, resp.Best.BoolValue(b))
	assert.Equal(t, 1, calls)
}

func TestSolveRejectsInvalidModel(t *testing.T) {
	m := cpmodel.NewModel()
	x := m.NewIntVar(0, 3, "x")
	m.AddBoolOr(x)

	resp, err := New(0, nil).Solve(context.Background(), m, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cpmodel.ErrInvalidModel))
	assert.Equal(t, cpmodel.ModelInvalid, resp.Status)
}

func TestSolveCancelledContextReportsNoOptimum(t *testing.T) {
	m := cpmodel.NewModel()
	a := m.NewBoolVar("a")
	x := m.NewIntVar(0, 5, "x")
	m.AddGreaterOrEqual(cpmodel.Sum(a, x), 1)
	m.Minimize(cpmodel.Sum(x))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	resp, err := New(0, nil).Solve(ctx, m, func(cpmodel.Solution) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, cpmodel.Unknown, resp.Status)
	assert.Zero(t, resp.Stats.Solutions)
	assert.Zero(t, calls)
}

func TestSolveStopsAtTimeLimit(t *testing.T) {
	plan, err := planner.Build(domain.Scenario{Players: testutil.GeneratedPlayers(20), N: 5, NTeams: 4})
	require.NoError(t, err)

	limit := 200 * time.Millisecond
	start := time.Now()
	resp, err := New(limit, nil).Solve(context.Background(), plan.Model, nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Less(t, elapsed, 10*limit, "search ran past its time limit")
	require.True(t, resp.Status.HasSolution(), "expected an incumbent, got %s", resp.Status)
	require.NoError(t, plan.Model.Check(resp.Best.Values))
	assert.Positive(t, resp.Stats.Solutions)
}

func TestSolveReportsOptimalWhenSearchCompletes(t *testing.T) {
	plan, err := planner.Build(domain.Scenario{Players: testutil.GeneratedPlayers(6), N: 2, NTeams: 3})
	require.NoError(t, err)

	var last int
	resp, err := New(time.Minute, nil).Solve(context.Background(), plan.Model, func(s cpmodel.Solution) {
		last = s.Objective
	})
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	assert.Equal(t, last, resp.Best.Objective)
	require.NoError(t, plan.Model.Check(resp.Best.Values))
}

func TestCostBoundExcludesIncumbent(t *testing.T) {
	// objective = 2 + 3*a + 1*(not b)
	cost := costBound{lits: []int{1, -2}, weights: []int{3, 1}, constant: 2}
	c := cost.below(5)
	assert.Equal(t, []int{-1, 2}, c.Lits)
	assert.Equal(t, []int{3, 1}, c.Weights)
	// spent 3 of 4, so at least 2 of the negated weight must hold
	assert.Equal(t, 2, c.AtLeast)
}
