package testutil

import (
	"fmt"

	"github.com/preston-bernstein/mister-service/internal/domain"
)

// P builds a player; intended for tests.
func P(name string, rating int, pos domain.Position) domain.Player {
	return domain.Player{Name: name, Rating: rating, Position: pos}
}

// SamplePlayers returns ten players split 4 D, 4 M, 2 F.
func SamplePlayers() []domain.Player {
	return []domain.Player{
		P("Ana", 81, domain.Defender),
		P("Bo", 64, domain.Defender),
		P("Cy", 72, domain.Defender),
		P("Dee", 55, domain.Defender),
		P("Eli", 90, domain.Midfielder),
		P("Fay", 47, domain.Midfielder),
		P("Gus", 68, domain.Midfielder),
		P("Hal", 73, domain.Midfielder),
		P("Ivy", 85, domain.Forward),
		P("Jo", 60, domain.Forward),
	}
}

// FormationScenario is two teams of five in a 2-2-1 formation.
func FormationScenario() domain.Scenario {
	f := domain.MustFormation(2, 2, 1)
	return domain.Scenario{Players: SamplePlayers(), N: 5, NTeams: 2, Formation: &f}
}

// OpenScenario is two teams of five with no formation.
func OpenScenario() domain.Scenario {
	return domain.Scenario{Players: SamplePlayers(), N: 5, NTeams: 2}
}

// GeneratedPlayers returns count players cycling through D, M, F with
// deterministic ratings in [0, 100].
func GeneratedPlayers(count int) []domain.Player {
	positions := domain.Positions()
	out := make([]domain.Player, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, P(fmt.Sprintf("p%02d", i), (i*37+11)%101, positions[i%len(positions)]))
	}
	return out
}
