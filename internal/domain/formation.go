package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const formationDelimiter = "-"

// Formation states how many players of each position a single team fields.
type Formation struct {
	counts map[Position]int
}

// NewFormation builds a formation from defender, midfielder and forward counts.
func NewFormation(defenders, midfielders, forwards int) (Formation, error) {
	if defenders < 0 || midfielders < 0 || forwards < 0 {
		return Formation{}, fmt.Errorf("formation counts must be non-negative, got %d-%d-%d", defenders, midfielders, forwards)
	}
	return Formation{counts: map[Position]int{
		Defender:   defenders,
		Midfielder: midfielders,
		Forward:    forwards,
	}}, nil
}

// MustFormation is NewFormation for literals known to be valid.
func MustFormation(defenders, midfielders, forwards int) Formation {
	f, err := NewFormation(defenders, midfielders, forwards)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseFormation parses the "D-M-F" encoding, e.g. "2-2-1".
func ParseFormation(raw string) (Formation, error) {
	parts := strings.Split(strings.TrimSpace(raw), formationDelimiter)
	if len(parts) != len(Positions()) {
		return Formation{}, fmt.Errorf("invalid formation %q (expected D-M-F)", raw)
	}
	counts := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Formation{}, fmt.Errorf("invalid formation %q: %w", raw, err)
		}
		counts[i] = n
	}
	return NewFormation(counts[0], counts[1], counts[2])
}

// CountFor returns the required number of players at p; unknown positions need none.
func (f Formation) CountFor(p Position) int {
	return f.counts[p]
}

// NPlayers is the team size implied by the formation.
func (f Formation) NPlayers() int {
	total := 0
	for _, p := range Positions() {
		total += f.CountFor(p)
	}
	return total
}

func (f Formation) String() string {
	parts := make([]string, 0, len(Positions()))
	for _, p := range Positions() {
		parts = append(parts, strconv.Itoa(f.CountFor(p)))
	}
	return strings.Join(parts, formationDelimiter)
}

func (f Formation) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Formation) UnmarshalText(text []byte) error {
	parsed, err := ParseFormation(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
