package planner

import (
	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/domain"
)

// Assemble reads the teams out of an assignment. Teams are ordered by id and
// players keep plan order within each team.
func (p *Plan) Assemble(sol cpmodel.Solution) domain.Solution {
	teams := make([]*domain.Team, p.NTeams)
	for i, pl := range p.Players {
		for t := 0; t < p.NTeams; t++ {
			if !sol.BoolValue(p.assign[i][t]) {
				continue
			}
			if teams[t] == nil {
				teams[t] = domain.NewTeam(t)
			}
			teams[t].Add(pl)
		}
	}

	out := make([]domain.Team, 0, p.NTeams)
	for _, team := range teams {
		if team != nil {
			out = append(out, *team)
		}
	}
	return domain.NewSolution(p.AvgRating, sol.Value(p.Epsilon), out)
}
