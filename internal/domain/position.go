package domain

import (
	"fmt"
	"strings"
)

// Position is the outfield role a player covers. Goalkeepers are not modelled;
// small-sided rosters rotate the role among outfield players.
type Position int

const (
	Defender Position = iota
	Midfielder
	Forward
)

var positionLetters = [...]string{
	Defender:   "D",
	Midfielder: "M",
	Forward:    "F",
}

var positionNames = [...]string{
	Defender:   "defender",
	Midfielder: "midfielder",
	Forward:    "forward",
}

// Positions returns every position in canonical order (D, M, F).
func Positions() []Position {
	return []Position{Defender, Midfielder, Forward}
}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	return p >= Defender && p <= Forward
}

// String returns the single-letter code.
func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionLetters[p]
}

// FullForm returns the readable name, optionally pluralised.
func (p Position) FullForm(plural bool) string {
	if !p.Valid() {
		return p.String()
	}
	name := positionNames[p]
	if plural {
		name += "s"
	}
	return name
}

// ParsePosition accepts a position letter, case-insensitively.
func ParsePosition(raw string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "D":
		return Defender, nil
	case "M":
		return Midfielder, nil
	case "F":
		return Forward, nil
	default:
		return 0, fmt.Errorf("unknown position %q (expected D, M or F)", raw)
	}
}

func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
