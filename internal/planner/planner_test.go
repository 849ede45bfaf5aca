package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/cpmodel/pbsat"
	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/testutil"
)

func solve(t *testing.T, plan *Plan) cpmodel.Response {
	t.Helper()
	engine := pbsat.New(time.Minute, nil)
	resp, err := engine.Solve(context.Background(), plan.Model, nil)
	require.NoError(t, err)
	require.Equal(t, cpmodel.Optimal, resp.Status)
	require.NoError(t, plan.Model.Check(resp.Best.Values))
	return resp
}

func TestBuildSortsPlayersAndComputesAverage(t *testing.T) {
	plan, err := Build(testutil.FormationScenario())
	require.NoError(t, err)

	require.Len(t, plan.Players, 10)
	for i := 1; i < len(plan.Players); i++ {
		assert.LessOrEqual(t, plan.Players[i-1].Rating, plan.Players[i].Rating)
	}
	assert.Equal(t, 695/2, plan.AvgRating)
	assert.Equal(t, 5, plan.TeamSize)
	assert.Equal(t, 2, plan.NTeams)

	lo, hi := plan.Model.Bounds(plan.Epsilon)
	assert.Equal(t, 0, lo)
	assert.Equal(t, MaxEpsilon, hi)
	assert.True(t, plan.Model.IsBool(plan.Assignment(0, 1)))
	require.NoError(t, plan.Model.Validate())
}

func TestBuildKeepsInputOrderForTiedRatings(t *testing.T) {
	players := []domain.Player{
		testutil.P("b", 50, domain.Defender),
		testutil.P("a", 50, domain.Midfielder),
		testutil.P("c", 10, domain.Forward),
		testutil.P("d", 50, domain.Forward),
	}
	plan, err := Build(domain.Scenario{Players: players, N: 2, NTeams: 2})
	require.NoError(t, err)

	names := []string{}
	for _, p := range plan.Players {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, names)
}

func TestBuildUsesFormationTeamSize(t *testing.T) {
	s := testutil.FormationScenario()
	s.N = 0
	plan, err := Build(s)
	require.NoError(t, err)
	assert.Equal(t, 5, plan.TeamSize)
}

func TestBuildRejectsNoTeams(t *testing.T) {
	_, err := Build(domain.Scenario{Players: testutil.SamplePlayers(), N: 5})
	var target *domain.InvalidTeamsError
	require.ErrorAs(t, err, &target)
}

func TestBuildAddsPositionalIndicatorsOnlyWithoutFormation(t *testing.T) {
	withFormation, err := Build(testutil.FormationScenario())
	require.NoError(t, err)
	assert.Empty(t, withFormation.Model.Clauses())

	open, err := Build(domain.Scenario{Players: testutil.GeneratedPlayers(12), N: 4, NTeams: 3})
	require.NoError(t, err)
	// three positions, three team pairs, one disjunction each
	require.Len(t, open.Model.Clauses(), 9)
	for _, clause := range open.Model.Clauses() {
		assert.Len(t, clause, 3)
	}
}

func TestSolvedFormationScenarioHoldsInvariants(t *testing.T) {
	s := testutil.FormationScenario()
	plan, err := Build(s)
	require.NoError(t, err)

	resp := solve(t, plan)
	sol := plan.Assemble(resp.Best)
	eps := resp.Best.Value(plan.Epsilon)

	assertPartition(t, s.Players, sol, s.NTeams, plan.TeamSize)
	for _, team := range sol.Teams {
		for _, pos := range domain.Positions() {
			assert.Equal(t, s.Formation.CountFor(pos), team.CountAt(pos), "team %d at %s", team.ID, pos)
		}
		assert.LessOrEqual(t, abs(team.Rating()-plan.AvgRating), eps)
	}
	assertSpread(t, plan, sol)

	assert.Equal(t, bruteForceEpsilon(plan), eps, "epsilon must be minimal")
	assert.Equal(t, resp.Best.Objective, eps)
	assert.Equal(t, domain.ComputeBalance(plan.AvgRating, eps), sol.Balance)
}

func TestSolvedOpenScenarioKeepsPositionsNearEven(t *testing.T) {
	s := domain.Scenario{Players: testutil.GeneratedPlayers(9), N: 3, NTeams: 3}
	plan, err := Build(s)
	require.NoError(t, err)

	resp := solve(t, plan)
	sol := plan.Assemble(resp.Best)

	assertPartition(t, s.Players, sol, s.NTeams, s.N)
	assertSpread(t, plan, sol)
	for _, pos := range domain.Positions() {
		for i := range sol.Teams {
			for j := i + 1; j < len(sol.Teams); j++ {
				diff := sol.Teams[i].CountAt(pos) - sol.Teams[j].CountAt(pos)
				assert.LessOrEqual(t, abs(diff), 1, "teams %d/%d at %s", i, j, pos)
			}
		}
	}
}

func TestAssembleGroupsByTeamInPlanOrder(t *testing.T) {
	plan, err := Build(testutil.OpenScenario())
	require.NoError(t, err)

	values := make([]int, plan.Model.NumVars())
	for i := range plan.Players {
		values[plan.Assignment(i, i%2)] = 1
	}
	values[plan.Epsilon] = 7

	sol := plan.Assemble(cpmodel.Solution{Objective: 7, Values: values})

	require.Len(t, sol.Teams, 2)
	assert.Equal(t, 0, sol.Teams[0].ID)
	assert.Equal(t, 1, sol.Teams[1].ID)
	assert.Equal(t, plan.Players[0], sol.Teams[0].Players[0])
	assert.Equal(t, plan.Players[1], sol.Teams[1].Players[0])
	assert.Equal(t, plan.Players[2], sol.Teams[0].Players[1])
	assert.Equal(t, domain.ComputeBalance(plan.AvgRating, 7), sol.Balance)
}

func assertPartition(t *testing.T, players []domain.Player, sol domain.Solution, nteams, size int) {
	t.Helper()
	require.Len(t, sol.Teams, nteams)
	seen := map[string]int{}
	for _, team := range sol.Teams {
		assert.Len(t, team.Players, size, "team %d", team.ID)
		for _, p := range team.Players {
			seen[p.Name]++
		}
	}
	require.Len(t, seen, len(players))
	for _, p := range players {
		assert.Equal(t, 1, seen[p.Name], "player %s", p.Name)
	}
}

func assertSpread(t *testing.T, plan *Plan, sol domain.Solution) {
	t.Helper()
	k := plan.NTeams
	top := plan.Players[len(plan.Players)-k:]
	bottom := plan.Players[:k]
	for _, team := range sol.Teams {
		assert.Equal(t, 1, countIn(team, top), "top players on team %d", team.ID)
		assert.Equal(t, 1, countIn(team, bottom), "bottom players on team %d", team.ID)
	}
}

func countIn(team domain.Team, group []domain.Player) int {
	names := map[string]bool{}
	for _, p := range group {
		names[p.Name] = true
	}
	count := 0
	for _, p := range team.Players {
		if names[p.Name] {
			count++
		}
	}
	return count
}

// bruteForceEpsilon enumerates every two-team split honouring the formation
// and spread rules and returns the smallest achievable deviation.
func bruteForceEpsilon(plan *Plan) int {
	players := plan.Players
	last := len(players) - 1
	best := MaxEpsilon + 1
	for mask := 0; mask < 1<<len(players); mask++ {
		var team [2]domain.Team
		for i, p := range players {
			team[(mask>>i)&1].Add(p)
		}
		ok := true
		for _, tm := range team {
			if len(tm.Players) != plan.TeamSize {
				ok = false
				break
			}
			for _, pos := range domain.Positions() {
				if tm.CountAt(pos) != plan.Formation.CountFor(pos) {
					ok = false
				}
			}
		}
		sameTeam := func(a, b int) bool { return (mask>>a)&1 == (mask>>b)&1 }
		if !ok || sameTeam(0, 1) || sameTeam(last-1, last) {
			continue
		}
		eps := max(abs(team[0].Rating()-plan.AvgRating), abs(team[1].Rating()-plan.AvgRating))
		best = min(best, eps)
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
