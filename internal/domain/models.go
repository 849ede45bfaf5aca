package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinRating = 0
	MaxRating = 100

	playerDelimiter = ","
)

// Player is a rated outfield player. Name identifies the player within a scenario.
type Player struct {
	Name     string   `json:"name"`
	Rating   int      `json:"rating"`
	Position Position `json:"position"`
}

// ParsePlayer parses the "name,rating,position" encoding.
func ParsePlayer(raw string) (Player, error) {
	parts := strings.Split(raw, playerDelimiter)
	if len(parts) != 3 {
		return Player{}, fmt.Errorf("invalid player %q (expected name,rating,position)", raw)
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return Player{}, fmt.Errorf("invalid player %q: empty name", raw)
	}
	rating, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Player{}, fmt.Errorf("invalid player %q: rating: %w", raw, err)
	}
	pos, err := ParsePosition(parts[2])
	if err != nil {
		return Player{}, fmt.Errorf("invalid player %q: %w", raw, err)
	}
	return Player{Name: name, Rating: rating, Position: pos}, nil
}

// String renders the delimited encoding accepted by ParsePlayer.
func (p Player) String() string {
	return strings.Join([]string{p.Name, strconv.Itoa(p.Rating), p.Position.String()}, playerDelimiter)
}

// UnmarshalJSON accepts the object form as well as the delimited string form.
func (p *Player) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		parsed, err := ParsePlayer(raw)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	type wirePlayer struct {
		Name     *string   `json:"name"`
		Rating   *int      `json:"rating"`
		Position *Position `json:"position"`
	}
	var w wirePlayer
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return err
	}
	if w.Name == nil || w.Rating == nil || w.Position == nil {
		return fmt.Errorf("player requires name, rating and position")
	}
	*p = Player{Name: *w.Name, Rating: *w.Rating, Position: *w.Position}
	return nil
}

// Team is an assembled team. Its rating is derived from its members.
type Team struct {
	ID      int      `json:"id"`
	Players []Player `json:"players"`
}

// NewTeam returns an empty team with the given id.
func NewTeam(id int) *Team {
	return &Team{ID: id, Players: []Player{}}
}

// Add appends a player during assembly.
func (t *Team) Add(p Player) {
	t.Players = append(t.Players, p)
}

// Rating is the sum of member ratings.
func (t Team) Rating() int {
	total := 0
	for _, p := range t.Players {
		total += p.Rating
	}
	return total
}

// CountAt returns how many members play at pos.
func (t Team) CountAt(pos Position) int {
	count := 0
	for _, p := range t.Players {
		if p.Position == pos {
			count++
		}
	}
	return count
}

// Solution is the outcome of a solve: the teams plus a fairness score.
type Solution struct {
	Balance float64 `json:"balance"`
	Teams   []Team  `json:"teams"`
}

// NewSolution wraps teams with the balance derived from the average team rating and epsilon.
func NewSolution(avgRating, epsilon int, teams []Team) Solution {
	return Solution{
		Balance: ComputeBalance(avgRating, epsilon),
		Teams:   teams,
	}
}

// ComputeBalance returns (avg - epsilon) / avg rounded to three decimals.
// 1 means every team sits exactly on the average. A zero average has no
// meaningful ratio, so it scores 1 when epsilon is 0 and 0 otherwise.
func ComputeBalance(avgRating, epsilon int) float64 {
	if avgRating == 0 {
		if epsilon == 0 {
			return 1
		}
		return 0
	}
	balance := float64(avgRating-epsilon) / float64(avgRating)
	return math.Round(balance*1000) / 1000
}
