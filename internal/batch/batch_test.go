package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/testutil"
)

func writeScenario(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(ScenarioPath(dir), []byte(body), 0o644))
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, `{
  "n": 5,
  "nteams": 2,
  "formation": "2-2-1",
  "optimal": "True",
  "players": ["Ana,81,D", "Bo,64,D", {"name": "Cy", "rating": 72, "position": "d"}]
}`)

	s, err := LoadScenario(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, s.N)
	assert.Equal(t, 2, s.NTeams)
	assert.True(t, s.Optimal)
	require.NotNil(t, s.Formation)
	assert.Equal(t, "2-2-1", s.Formation.String())
	assert.Equal(t, []domain.Player{
		testutil.P("Ana", 81, domain.Defender),
		testutil.P("Bo", 64, domain.Defender),
		testutil.P("Cy", 72, domain.Defender),
	}, s.Players)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario("")
	assert.Error(t, err)

	_, err = LoadScenario(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	writeScenario(t, dir, `{"nteams": 2, "players": []}`)
	_, err = LoadScenario(dir)
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, err.Error(), "n")
	assert.Contains(t, err.Error(), ScenarioPath(dir))
}

func TestWriteSolutionAtomically(t *testing.T) {
	dir := t.TempDir()
	sol := domain.Solution{Balance: 0.995, Teams: []domain.Team{
		{ID: 0, Players: []domain.Player{testutil.P("Ana", 81, domain.Defender)}},
		{ID: 1, Players: []domain.Player{testutil.P("Bo", 64, domain.Forward)}},
	}}

	path, err := WriteSolution(dir, sol)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SolutionFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded domain.Solution
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sol, decoded)
	assert.Contains(t, string(data), "\n  \"teams\"")

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteSolutionSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSolution(dir, domain.Solution{Balance: 1})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	_, err = WriteSolution(dir, domain.Solution{Balance: 1})
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "unchanged solution should not be rewritten")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"teams": []`)
}

func TestWriteSolutionErrors(t *testing.T) {
	_, err := WriteSolution("", domain.Solution{})
	assert.Error(t, err)

	_, err = WriteSolution(filepath.Join(t.TempDir(), "missing"), domain.Solution{})
	assert.Error(t, err)
}
