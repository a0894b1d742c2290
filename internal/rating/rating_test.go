package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloChange(t *testing.T) {
	testCases := []struct {
		name           string
		winner, loser  int
		expectedWinner int
		expectedLoser  int
	}{
		{name: "even match", winner: 1500, loser: 1500, expectedWinner: 16, expectedLoser: -16},
		{name: "favourite wins", winner: 1900, loser: 1500, expectedWinner: 3, expectedLoser: -3},
		{name: "upset", winner: 1500, loser: 1900, expectedWinner: 29, expectedLoser: -29},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, l := EloChange(tc.winner, tc.loser)
			assert.Equal(t, tc.expectedWinner, w)
			assert.Equal(t, tc.expectedLoser, l)
		})
	}
}

func TestRankFor(t *testing.T) {
	testCases := []struct {
		elo      int
		expected string
	}{
		{elo: 0, expected: "K"},
		{elo: 999, expected: "K"},
		{elo: 1000, expected: "K"},
		{elo: 1150, expected: "K+"},
		{elo: 1599, expected: "H+"},
		{elo: 1600, expected: "G"},
		{elo: 2500, expected: "E+"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RankFor(tc.elo), "elo=%d", tc.elo)
	}
}

func TestEloFor(t *testing.T) {
	assert.Equal(t, 1600, EloFor("G"))
	assert.Equal(t, 1500, EloFor("H+"))
	assert.Equal(t, DefaultElo, EloFor(""))
	assert.Equal(t, "G", RankFor(EloFor("G")))
}
