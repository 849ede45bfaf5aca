package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/testutil"
)

func formation(d, m, f int) *domain.Formation {
	fm := domain.MustFormation(d, m, f)
	return &fm
}

func TestValidateAcceptsSolvableScenarios(t *testing.T) {
	require.NoError(t, Scenario(testutil.FormationScenario()))
	require.NoError(t, Scenario(testutil.OpenScenario()))
}

func TestValidateRejectsNonPositiveTeams(t *testing.T) {
	var target *domain.InvalidTeamsError
	require.ErrorAs(t, Validate(testutil.SamplePlayers(), 0, nil, 2), &target)
	require.ErrorAs(t, Validate(testutil.SamplePlayers(), 5, nil, 0), &target)
	assert.Equal(t, 0, target.NTeams)
}

func TestValidateTotalPlayersWithoutFormation(t *testing.T) {
	players := append(testutil.SamplePlayers(), testutil.P("Kit", 50, domain.Forward))

	err := Validate(players, 5, nil, 2)

	var target *domain.NotEnoughTotalPlayersError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 11, target.Given)
	assert.Equal(t, 5, target.N)
	assert.Equal(t, 2, target.NTeams)
}

func TestValidateDuplicateNames(t *testing.T) {
	players := testutil.SamplePlayers()
	players[3].Name = "Alex"
	players[7].Name = "Alex"

	for name, f := range map[string]*domain.Formation{"formation": formation(2, 2, 1), "open": nil} {
		t.Run(name, func(t *testing.T) {
			var target *domain.DuplicatePlayersError
			require.ErrorAs(t, Validate(players, 5, f, 2), &target)
			assert.Equal(t, "Alex", target.Name)
		})
	}

	// Duplicates win over later checks such as ratings and totals.
	players[0].Rating = 150
	var target *domain.DuplicatePlayersError
	require.ErrorAs(t, Validate(players[:9], 5, nil, 2), &target)
}

func TestValidateFormationMustMatchTeamSize(t *testing.T) {
	err := Validate(testutil.SamplePlayers(), 6, formation(2, 2, 1), 2)

	var target *domain.InvalidFormationError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 6, target.N)
	assert.Equal(t, "2-2-1", target.Formation.String())
}

func TestValidateRatingBounds(t *testing.T) {
	for _, rating := range []int{150, -1, 101} {
		players := testutil.SamplePlayers()
		players[4].Rating = rating

		var target *domain.InvalidRatingError
		require.ErrorAs(t, Validate(players, 5, formation(2, 2, 1), 2), &target)
		assert.Equal(t, players[4].Name, target.Player)
		assert.Equal(t, rating, target.Rating)
	}

	players := testutil.SamplePlayers()
	players[0].Rating = domain.MinRating
	players[1].Rating = domain.MaxRating
	assert.NoError(t, Validate(players, 5, nil, 2))
}

func TestValidateRejectsUnknownPosition(t *testing.T) {
	players := testutil.SamplePlayers()
	players[9].Position = domain.Position(7)

	var target *domain.InvalidPositionError
	require.ErrorAs(t, Validate(players, 5, nil, 2), &target)
	assert.Equal(t, players[9].Name, target.Player)
	assert.True(t, domain.IsDomainError(target))
}

func TestValidateMissingPositionReportsZero(t *testing.T) {
	players := testutil.SamplePlayers()
	for i := range players {
		if players[i].Position == domain.Forward {
			players[i].Position = domain.Midfielder
		}
	}

	err := Validate(players, 5, formation(2, 2, 1), 2)

	// Midfielders are checked before forwards, so the surplus is reported first.
	var tooMany *domain.TooManyPlayersError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, domain.Midfielder, tooMany.Position)

	err = Validate(players[:8], 5, formation(2, 3, 0), 2)
	var short *domain.NotEnoughPlayersError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, domain.Midfielder, short.Position)
	assert.Equal(t, 4, short.Given)
	assert.Equal(t, 6, short.Expected())
}

func TestValidateNoForwardsGivenZero(t *testing.T) {
	players := []domain.Player{
		testutil.P("a", 50, domain.Defender),
		testutil.P("b", 50, domain.Defender),
		testutil.P("c", 50, domain.Defender),
		testutil.P("d", 50, domain.Defender),
		testutil.P("e", 50, domain.Midfielder),
		testutil.P("f", 50, domain.Midfielder),
		testutil.P("g", 50, domain.Midfielder),
		testutil.P("h", 50, domain.Midfielder),
	}

	err := Validate(players, 5, formation(2, 2, 1), 2)

	var target *domain.NotEnoughPlayersError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, domain.Forward, target.Position)
	assert.Equal(t, 0, target.Given)
	assert.Equal(t, 2, target.Expected())
	assert.Contains(t, err.Error(), "given 0 forwards")
}

func TestValidateRejectsLeftoverPlayersWithFormation(t *testing.T) {
	players := append(testutil.SamplePlayers(), testutil.P("Kit", 50, domain.Defender))

	var target *domain.TooManyPlayersError
	require.ErrorAs(t, Validate(players, 5, formation(2, 2, 1), 2), &target)
	assert.Equal(t, domain.Defender, target.Position)
	assert.Equal(t, 5, target.Given)
}

func TestValidateIsIdempotent(t *testing.T) {
	players := testutil.SamplePlayers()
	players[2].Rating = 200
	first := Validate(players, 5, nil, 2)
	second := Validate(players, 5, nil, 2)
	assert.Equal(t, first.Error(), second.Error())
	assert.True(t, domain.IsDomainError(first))
}
