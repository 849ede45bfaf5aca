package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Scenario is everything needed to make teams for one request.
type Scenario struct {
	Players   []Player
	N         int
	NTeams    int
	Formation *Formation
	Optimal   bool
}

// RequestError reports a malformed or incomplete scenario encoding.
type RequestError struct {
	Msg string
	Err error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// Flag is a boolean that also accepts boolean-like strings. "true" and "1"
// (case-insensitive) are true, any other string is false.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = false
	case len(trimmed) > 0 && trimmed[0] == '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		*f = Flag(strings.EqualFold(raw, "true") || raw == "1")
	case bytes.Equal(trimmed, []byte("true")), bytes.Equal(trimmed, []byte("1")):
		*f = true
	default:
		*f = false
	}
	return nil
}

// ScenarioRequest is the wire encoding of a Scenario.
type ScenarioRequest struct {
	N         *int     `json:"n"`
	NTeams    *int     `json:"nteams"`
	Players   []Player `json:"players"`
	Formation *string  `json:"formation,omitempty"`
	Optimal   Flag     `json:"optimal,omitempty"`
}

// DecodeScenario reads a ScenarioRequest from r and converts it.
func DecodeScenario(r io.Reader) (Scenario, error) {
	var req ScenarioRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Scenario{}, &RequestError{Msg: "invalid scenario encoding", Err: err}
	}
	return req.Scenario()
}

// Scenario validates presence of the mandatory fields and converts the request.
func (r ScenarioRequest) Scenario() (Scenario, error) {
	var missing []string
	if r.N == nil {
		missing = append(missing, "n")
	}
	if r.NTeams == nil {
		missing = append(missing, "nteams")
	}
	if r.Players == nil {
		missing = append(missing, "players")
	}
	if len(missing) > 0 {
		return Scenario{}, &RequestError{Msg: "missing parameters: " + strings.Join(missing, ", ")}
	}

	sc := Scenario{
		Players: append([]Player(nil), r.Players...),
		N:       *r.N,
		NTeams:  *r.NTeams,
		Optimal: bool(r.Optimal),
	}
	if r.Formation != nil && strings.TrimSpace(*r.Formation) != "" {
		f, err := ParseFormation(*r.Formation)
		if err != nil {
			return Scenario{}, &RequestError{Msg: "invalid formation", Err: err}
		}
		sc.Formation = &f
	}
	return sc, nil
}

// Request converts a Scenario back into its wire encoding.
func (s Scenario) Request() ScenarioRequest {
	n, nteams := s.N, s.NTeams
	req := ScenarioRequest{
		N:       &n,
		NTeams:  &nteams,
		Players: append([]Player(nil), s.Players...),
		Optimal: Flag(s.Optimal),
	}
	if s.Formation != nil {
		encoded := s.Formation.String()
		req.Formation = &encoded
	}
	return req
}
