// Package planner turns a validated scenario into a constraint model and maps
// solver assignments back to teams.
package planner

import (
	"fmt"
	"sort"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/domain"
)

// MaxEpsilon bounds the rating deviation variable.
const MaxEpsilon = domain.MaxRating

// Plan is a built model together with the lookups needed to read its solutions.
type Plan struct {
	Model     *cpmodel.Model
	Epsilon   cpmodel.Var
	Players   []domain.Player
	NTeams    int
	TeamSize  int
	AvgRating int
	Formation *domain.Formation

	assign [][]cpmodel.Var
}

// Build constructs the balanced partition model for s. The scenario is
// expected to have passed validation.
func Build(s domain.Scenario) (*Plan, error) {
	if s.NTeams < 1 {
		return nil, &domain.InvalidTeamsError{N: s.N, NTeams: s.NTeams}
	}
	n := s.N
	if s.Formation != nil {
		n = s.Formation.NPlayers()
	}

	players := append([]domain.Player(nil), s.Players...)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Rating < players[j].Rating })

	total := 0
	for _, p := range players {
		total += p.Rating
	}

	m := cpmodel.NewModel()
	plan := &Plan{
		Model:     m,
		Players:   players,
		NTeams:    s.NTeams,
		TeamSize:  n,
		AvgRating: total / s.NTeams,
		Formation: s.Formation,
		assign:    make([][]cpmodel.Var, len(players)),
	}
	for i, p := range players {
		plan.assign[i] = make([]cpmodel.Var, s.NTeams)
		for t := 0; t < s.NTeams; t++ {
			plan.assign[i][t] = m.NewBoolVar(fmt.Sprintf("x[%s,%d]", p.Name, t))
		}
	}
	plan.Epsilon = m.NewIntVar(0, MaxEpsilon, "epsilon")

	plan.addTeamSize()
	plan.addSingleAssignment()
	plan.addRatingBalance()
	if s.Formation != nil {
		plan.addFormation(*s.Formation)
	}
	plan.addSpread("top", len(players)-s.NTeams, len(players))
	plan.addSpread("bottom", 0, s.NTeams)
	if s.Formation == nil {
		plan.addPositionalBalance()
	}

	m.Minimize(cpmodel.Sum(plan.Epsilon))
	return plan, nil
}

// Assignment returns the variable deciding whether player i (in Players
// order) joins team t.
func (p *Plan) Assignment(player, team int) cpmodel.Var {
	return p.assign[player][team]
}

func (p *Plan) teamExpr(team int, keep func(domain.Player) bool) cpmodel.LinearExpr {
	var expr cpmodel.LinearExpr
	for i, pl := range p.Players {
		if keep == nil || keep(pl) {
			expr = expr.AddTerm(p.assign[i][team], 1)
		}
	}
	return expr
}

// C1: every team fields exactly TeamSize players.
func (p *Plan) addTeamSize() {
	for t := 0; t < p.NTeams; t++ {
		p.Model.AddEquality(p.teamExpr(t, nil), p.TeamSize).WithName(fmt.Sprintf("size[%d]", t))
	}
}

// C2: every player belongs to exactly one team.
func (p *Plan) addSingleAssignment() {
	for i, pl := range p.Players {
		p.Model.AddEquality(cpmodel.Sum(p.assign[i]...), 1).WithName(fmt.Sprintf("single[%s]", pl.Name))
	}
}

// C3: avg - epsilon <= team rating <= avg + epsilon.
func (p *Plan) addRatingBalance() {
	eps := cpmodel.Sum(p.Epsilon)
	for t := 0; t < p.NTeams; t++ {
		var rating cpmodel.LinearExpr
		for i, pl := range p.Players {
			rating = rating.AddTerm(p.assign[i][t], pl.Rating)
		}
		p.Model.AddGreaterOrEqual(rating.Plus(eps), p.AvgRating).WithName(fmt.Sprintf("balance_lo[%d]", t))
		p.Model.AddLessOrEqual(rating.Minus(eps), p.AvgRating).WithName(fmt.Sprintf("balance_hi[%d]", t))
	}
}

// C4: per-position counts follow the formation.
func (p *Plan) addFormation(f domain.Formation) {
	for _, pos := range domain.Positions() {
		for t := 0; t < p.NTeams; t++ {
			p.Model.AddEquality(p.positionExpr(t, pos), f.CountFor(pos)).
				WithName(fmt.Sprintf("formation[%s,%d]", pos, t))
		}
	}
}

// C5/C6: players in Players[from:to] are spread one per team.
func (p *Plan) addSpread(label string, from, to int) {
	if from < 0 {
		from = 0
	}
	for t := 0; t < p.NTeams; t++ {
		var expr cpmodel.LinearExpr
		for i := from; i < to; i++ {
			expr = expr.AddTerm(p.assign[i][t], 1)
		}
		p.Model.AddEquality(expr, 1).WithName(fmt.Sprintf("%s[%d]", label, t))
	}
}

// C7: per-position counts of any two teams differ by at most one.
func (p *Plan) addPositionalBalance() {
	for _, pos := range domain.Positions() {
		for i := 0; i < p.NTeams; i++ {
			for j := i + 1; j < p.NTeams; j++ {
				diff := p.positionExpr(i, pos).Minus(p.positionExpr(j, pos))
				lits := make([]cpmodel.Var, 0, 3)
				for _, delta := range []int{0, 1, -1} {
					lit := p.Model.NewBoolVar(fmt.Sprintf("%s: %d - %d == %+d", pos, i, j, delta))
					p.Model.AddEquality(diff, delta).OnlyEnforceIf(lit).
						WithName(fmt.Sprintf("near[%s,%d,%d,%+d]", pos, i, j, delta))
					lits = append(lits, lit)
				}
				p.Model.AddBoolOr(lits...)
			}
		}
	}
}

func (p *Plan) positionExpr(team int, pos domain.Position) cpmodel.LinearExpr {
	return p.teamExpr(team, func(pl domain.Player) bool { return pl.Position == pos })
}
