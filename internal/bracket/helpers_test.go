package bracket

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func makePlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: uuid.New(), Name: fmt.Sprintf("P%d", i+1), Rank: "H"}
	}
	return players
}

func find(t *testing.T, matches []Match, stage Stage, order int) Match {
	t.Helper()
	for _, m := range matches {
		if m.Stage == stage && m.Order == order {
			return m
		}
	}
	require.FailNow(t, "match not found", "%s", stage.Label(order))
	return Match{}
}

func names(m Match) [2]string {
	var out [2]string
	if m.Player1 != nil {
		out[0] = m.Player1.Name
	}
	if m.Player2 != nil {
		out[1] = m.Player2.Name
	}
	return out
}

// decideAll plays every ready match of the collection, seat 1 always winning,
// until nothing is left to play.
func decideAll(t *testing.T, matches []Match) []Match {
	t.Helper()
	for {
		progressed := false
		for _, m := range matches {
			if m.Ready() && !m.Completed() {
				var err error
				matches, err = AdvanceWinner(matches, m.ID, m.Player1.ID, nil)
				require.NoError(t, err)
				progressed = true
				break
			}
		}
		if !progressed {
			return matches
		}
	}
}
