package domain

import (
	"errors"
	"fmt"
)

// domainError marks failures caused by the scenario itself. They are reported
// back to the caller as-is and never retried.
type domainError interface {
	error
	domainError()
}

// IsDomainError reports whether err (or anything it wraps) is a scenario failure.
func IsDomainError(err error) bool {
	var de domainError
	return errors.As(err, &de)
}

// InvalidTeamsError is returned when the team size or team count is not positive.
type InvalidTeamsError struct {
	N      int
	NTeams int
}

func (e *InvalidTeamsError) Error() string {
	return fmt.Sprintf("invalid request for %d teams of %d players: both must be at least 1", e.NTeams, e.N)
}

// DuplicatePlayersError is returned when two players share a name.
type DuplicatePlayersError struct {
	Name string
}

func (e *DuplicatePlayersError) Error() string {
	if e.Name == "" {
		return "all the players need a unique name as id"
	}
	return fmt.Sprintf("all the players need a unique name as id: %q appears more than once", e.Name)
}

// InvalidFormationError is returned when a formation does not add up to the team size.
type InvalidFormationError struct {
	N         int
	Formation Formation
}

func (e *InvalidFormationError) Error() string {
	return fmt.Sprintf("invalid formation %s (%d players) cannot satisfy a %d-a-side football pitch",
		e.Formation, e.Formation.NPlayers(), e.N)
}

// InvalidRatingError is returned when a rating falls outside [MinRating, MaxRating].
type InvalidRatingError struct {
	Player string
	Rating int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("player %q has rating %d, expected a value between %d and %d",
		e.Player, e.Rating, MinRating, MaxRating)
}

// InvalidPositionError is returned when a player's position is not D, M or F.
type InvalidPositionError struct {
	Player   string
	Position Position
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("player %q has unknown position %s, expected one of D, M, F", e.Player, e.Position)
}

// NotEnoughPlayersError is returned when a position is short of what the formation needs.
type NotEnoughPlayersError struct {
	Given     int
	Formation Formation
	Position  Position
	NTeams    int
}

// Expected is the number of players the formation requires at the position.
func (e *NotEnoughPlayersError) Expected() int {
	return e.NTeams * e.Formation.CountFor(e.Position)
}

func (e *NotEnoughPlayersError) Error() string {
	return fmt.Sprintf("given %d %s, expected %d for %d teams with a %s formation",
		e.Given, e.Position.FullForm(true), e.Expected(), e.NTeams, e.Formation)
}

// TooManyPlayersError is returned when a position has more players than the
// formation can field. There is no bench, so surplus players are rejected.
type TooManyPlayersError struct {
	Given     int
	Formation Formation
	Position  Position
	NTeams    int
}

// Expected is the number of players the formation requires at the position.
func (e *TooManyPlayersError) Expected() int {
	return e.NTeams * e.Formation.CountFor(e.Position)
}

func (e *TooManyPlayersError) Error() string {
	return fmt.Sprintf("given %d %s, expected %d for %d teams with a %s formation; reserves are not supported",
		e.Given, e.Position.FullForm(true), e.Expected(), e.NTeams, e.Formation)
}

// NotEnoughTotalPlayersError is returned, without a formation, when the pool
// does not split exactly into nteams teams of n.
type NotEnoughTotalPlayersError struct {
	Given  int
	N      int
	NTeams int
}

func (e *NotEnoughTotalPlayersError) Error() string {
	return fmt.Sprintf("given %d players, expected %d for %d teams of %d players",
		e.Given, e.N*e.NTeams, e.NTeams, e.N)
}

// NoSolutionError is returned when the solver finds no acceptable assignment.
type NoSolutionError struct {
	Status string
}

func (e *NoSolutionError) Error() string {
	if e.Status == "" {
		return "no solution was found"
	}
	return fmt.Sprintf("no solution was found (solver status %s)", e.Status)
}

func (*InvalidTeamsError) domainError()          {}
func (*DuplicatePlayersError) domainError()      {}
func (*InvalidFormationError) domainError()      {}
func (*InvalidRatingError) domainError()         {}
func (*InvalidPositionError) domainError()       {}
func (*NotEnoughPlayersError) domainError()      {}
func (*TooManyPlayersError) domainError()        {}
func (*NotEnoughTotalPlayersError) domainError() {}
func (*NoSolutionError) domainError()            {}
