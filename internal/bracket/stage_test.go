package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageLabel(t *testing.T) {
	testCases := []struct {
		stage    Stage
		order    int
		expected string
	}{
		{stage: WinnersRound(1), order: 3, expected: "WINNERS ROUND 1 - MATCH 3"},
		{stage: LosersRound(BranchA, 2), order: 1, expected: "LOSERS A ROUND 2 - MATCH 1"},
		{stage: LosersRound(BranchB, 1), order: 2, expected: "LOSERS B ROUND 1 - MATCH 2"},
		{stage: Semifinal(), order: 1, expected: "SEMI FINAL 1"},
		{stage: Final(), order: 1, expected: "FINAL"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.stage.Label(tc.order))
			assert.True(t, tc.stage.Kind.Valid())
		})
	}

	assert.False(t, StageKind("groups").Valid())
}

func TestBranchFeeders(t *testing.T) {
	assert.Equal(t, 1, BranchA.FeederRound())
	assert.Equal(t, 2, BranchB.FeederRound())
	assert.Equal(t, StageLosersA, BranchA.Kind())
	assert.Equal(t, StageLosersB, BranchB.Kind())
}
