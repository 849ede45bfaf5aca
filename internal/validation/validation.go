// Package validation gates scenarios before any model is built. Checks run in
// a fixed order so the same input always yields the same error.
package validation

import (
	"github.com/preston-bernstein/mister-service/internal/domain"
)

// Validate checks players, team size, optional formation and team count.
// It returns the first failing check as a typed domain error.
func Validate(players []domain.Player, n int, formation *domain.Formation, nteams int) error {
	if n < 1 || nteams < 1 {
		return &domain.InvalidTeamsError{N: n, NTeams: nteams}
	}
	if formation != nil && n != formation.NPlayers() {
		return &domain.InvalidFormationError{N: n, Formation: *formation}
	}
	if name, ok := firstDuplicate(players); ok {
		return &domain.DuplicatePlayersError{Name: name}
	}
	if formation != nil {
		if err := checkFormationCapacity(players, *formation, nteams); err != nil {
			return err
		}
	} else if len(players) != n*nteams {
		return &domain.NotEnoughTotalPlayersError{Given: len(players), N: n, NTeams: nteams}
	}
	for _, p := range players {
		if p.Rating < domain.MinRating || p.Rating > domain.MaxRating {
			return &domain.InvalidRatingError{Player: p.Name, Rating: p.Rating}
		}
		if !p.Position.Valid() {
			return &domain.InvalidPositionError{Player: p.Name, Position: p.Position}
		}
	}
	return nil
}

// Scenario validates a decoded scenario.
func Scenario(s domain.Scenario) error {
	return Validate(s.Players, s.N, s.Formation, s.NTeams)
}

func firstDuplicate(players []domain.Player) (string, bool) {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.Name]; ok {
			return p.Name, true
		}
		seen[p.Name] = struct{}{}
	}
	return "", false
}

func checkFormationCapacity(players []domain.Player, formation domain.Formation, nteams int) error {
	counts := make(map[domain.Position]int, 3)
	for _, p := range players {
		counts[p.Position]++
	}
	for _, pos := range domain.Positions() {
		given := counts[pos]
		expected := nteams * formation.CountFor(pos)
		switch {
		case given < expected:
			return &domain.NotEnoughPlayersError{Given: given, Formation: formation, Position: pos, NTeams: nteams}
		case given > expected:
			return &domain.TooManyPlayersError{Given: given, Formation: formation, Position: pos, NTeams: nteams}
		}
	}
	return nil
}
