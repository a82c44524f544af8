package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumRounds(t *testing.T) {
	testCases := []struct {
		teams    int
		expected int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{6, 3},
		{7, 3},
		{8, 3},
		{9, 4},
		{16, 4},
		{17, 5},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NumRounds(tc.teams), "teams=%d", tc.teams)
	}
}

func TestBuildFirstRoundRejectsFewerThanTwoTeams(t *testing.T) {
	_, err := BuildFirstRound(nil)
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = BuildFirstRound([]int{42})
	assert.ErrorIs(t, err, ErrInsufficientTeams)
}

func TestBuildFirstRoundEvenCount(t *testing.T) {
	pairings, err := BuildFirstRound([]int{10, 20, 30, 40})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	assert.Equal(t, 10, pairings[0].Team1ID)
	require.NotNil(t, pairings[0].Team2ID)
	assert.Equal(t, 20, *pairings[0].Team2ID)
	assert.Equal(t, 1, pairings[0].OrderInRound)

	assert.Equal(t, 30, pairings[1].Team1ID)
	require.NotNil(t, pairings[1].Team2ID)
	assert.Equal(t, 40, *pairings[1].Team2ID)
	assert.Equal(t, 2, pairings[1].OrderInRound)

	for _, p := range pairings {
		assert.False(t, p.IsBye())
	}
}

func TestBuildFirstRoundOddCountGivesFirstSeedBye(t *testing.T) {
	pairings, err := BuildFirstRound([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Len(t, pairings, 3)

	byes := 0
	for _, p := range pairings {
		if p.IsBye() {
			byes++
		}
	}
	assert.Equal(t, 1, byes)

	// The bye goes to the first seed and comes first in round order.
	assert.True(t, pairings[0].IsBye())
	assert.Equal(t, 1, pairings[0].Team1ID)
	assert.Equal(t, 1, pairings[0].OrderInRound)

	assert.Equal(t, 2, pairings[1].Team1ID)
	assert.Equal(t, 3, *pairings[1].Team2ID)
	assert.Equal(t, 4, pairings[2].Team1ID)
	assert.Equal(t, 5, *pairings[2].Team2ID)
}

func TestBuildFirstRoundMatchCount(t *testing.T) {
	for n := 2; n <= 33; n++ {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}
		pairings, err := BuildFirstRound(ids)
		require.NoError(t, err)
		assert.Len(t, pairings, (n+1)/2, "teams=%d", n)
	}
}

func TestPairWinnersSingleWinner(t *testing.T) {
	pairings := PairWinners([]int{7})
	require.Len(t, pairings, 1)
	assert.True(t, pairings[0].IsBye())
	assert.Equal(t, 7, pairings[0].Team1ID)
}

// Repeatedly pairing winners must reach a single final match in exactly
// NumRounds(n) rounds, for any starting field size.
func TestRepeatedPairingConvergesToFinal(t *testing.T) {
	for n := 2; n <= 64; n++ {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}

		pairings, err := BuildFirstRound(ids)
		require.NoError(t, err)

		rounds := 1
		for {
			// Every real match is won by Team1; byes advance automatically.
			winners := make([]int, 0, len(pairings))
			for _, p := range pairings {
				winners = append(winners, p.Team1ID)
			}
			if len(winners) == 1 {
				break
			}
			pairings = PairWinners(winners)
			rounds++
		}

		assert.Equal(t, NumRounds(n), rounds, "teams=%d", n)
	}
}
