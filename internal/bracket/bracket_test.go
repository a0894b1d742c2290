package bracket

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playTournament decides every playable match through Bracket.Advance and
// checks the invariants after each step.
func playTournament(t *testing.T, b Bracket) (Bracket, int) {
	t.Helper()

	decided := map[uuid.UUID]Match{}
	games := 0
	for {
		var next *Match
		for _, m := range b.Matches() {
			if m.Ready() && !m.Completed() {
				next = &m
				break
			}
		}
		if next == nil {
			return b, games
		}

		var err error
		b, err = b.Advance(next.ID, next.Player1.ID, &MatchScore{Player1: 7, Player2: 4})
		require.NoError(t, err)
		require.NoError(t, b.Validate())
		games++

		// Once completed, a match never changes again
		for id, before := range decided {
			after, ok := b.Match(id)
			require.True(t, ok)
			assert.True(t, sameMatch(before, after), before.Label())
		}
		for _, m := range b.Matches() {
			if m.Completed() {
				decided[m.ID] = m
			}
		}
	}
}

func TestBracket_DoubleFormat(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{GameInfo: GameInfo{RaceTo: "Race to 7"}})
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	assert.Equal(t, FormatDouble, b.Format)
	assert.Len(t, b.Winners, 7)
	assert.Len(t, b.Losers, 4)
	assert.Len(t, b.Finals, 3)
	for _, m := range b.Matches() {
		assert.Equal(t, "Race to 7", m.GameInfo.RaceTo)
	}
	assert.False(t, b.SemifinalsReady())

	b, games := playTournament(t, b)
	assert.Equal(t, 14, games)
	assert.True(t, b.SemifinalsReady())

	for _, m := range b.Matches() {
		assert.Equal(t, MatchCompleted, m.Status, m.Label())
	}

	champion := b.Champion()
	require.NotNil(t, champion)
	assert.Equal(t, "P1", champion.Name)
}

func TestBracket_SemifinalsSeatedAutomatically(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{})
	require.NoError(t, err)

	for {
		var next *Match
		for _, m := range append(slices.Clone(b.Winners), b.Losers...) {
			if m.Ready() && !m.Completed() {
				next = &m
				break
			}
		}
		if next == nil {
			break
		}
		b, err = b.Advance(next.ID, next.Player2.ID, nil)
		require.NoError(t, err)
	}

	semis := ofKind(b.Finals, StageSemifinal)
	require.Len(t, semis, 2)
	for _, m := range semis {
		assert.True(t, m.Ready(), m.Label())
	}
	assert.Nil(t, b.Champion())
}

func TestBracket_OddFields(t *testing.T) {
	for _, n := range []int{5, 6, 7, 9, 11, 13} {
		b, err := Generate(makePlayers(n), Options{})
		require.NoError(t, err, "n=%d", n)

		b, _ = playTournament(t, b)
		assert.NotNil(t, b.Champion(), "n=%d", n)
	}
}

func TestBracket_SingleFormat(t *testing.T) {
	b, err := Generate(makePlayers(4), Options{Format: FormatSingle})
	require.NoError(t, err)
	assert.Empty(t, b.Losers)
	assert.Empty(t, b.Finals)
	assert.False(t, b.SemifinalsReady())

	b, games := playTournament(t, b)
	assert.Equal(t, 3, games)
	require.NotNil(t, b.Champion())
	assert.Equal(t, "P1", b.Champion().Name)
}

func TestBracket_GenerateErrors(t *testing.T) {
	_, err := Generate(makePlayers(4), Options{Format: FormatDouble})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = Generate(makePlayers(8), Options{Format: "swiss"})
	assert.ErrorIs(t, err, ErrInvalidBracket)
}

func TestBracket_AdvanceRejectsWithoutChanges(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{})
	require.NoError(t, err)

	semi := b.Finals[0]
	_, err = b.Advance(semi.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrInvalidAdvancement)

	_, err = b.Advance(uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrUnknownMatchID)

	_, err = b.RecordScore(uuid.New(), MatchScore{})
	assert.ErrorIs(t, err, ErrUnknownMatchID)
}

func TestBracket_Changed(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{})
	require.NoError(t, err)

	m := b.Winners[0]
	next, err := b.Advance(m.ID, m.Player2.ID, nil)
	require.NoError(t, err)

	// The decided match, the winners round 2 seat and the branch A seat
	changed := next.Changed(b)
	require.Len(t, changed, 3)
	assert.Equal(t, m.ID, changed[0].ID)
	assert.Equal(t, StageWinners, changed[1].Stage.Kind)
	assert.Equal(t, StageLosersA, changed[2].Stage.Kind)

	assert.Empty(t, b.Changed(b))
}

func TestBracket_FromMatches(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{})
	require.NoError(t, err)

	regrouped := FromMatches(FormatDouble, b.Matches())
	assert.Equal(t, b.Winners, regrouped.Winners)
	assert.Equal(t, b.Losers, regrouped.Losers)
	assert.Equal(t, b.Finals, regrouped.Finals)
}

func TestMatchJSON(t *testing.T) {
	b, err := Generate(makePlayers(8), Options{})
	require.NoError(t, err)

	m := b.Winners[0]
	b, err = b.Advance(m.ID, m.Player1.ID, &MatchScore{Player1: 5, Player2: 1})
	require.NoError(t, err)
	m, _ = b.Match(m.ID)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "WINNERS ROUND 1 - MATCH 1", record["label"])
	assert.Equal(t, "completed", record["status"])
	assert.Equal(t, "won", record["player1_result"])
	assert.Equal(t, "lost", record["player2_result"])

	var decoded Match
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)
}

func TestMatchSlotResults(t *testing.T) {
	b, err := Generate(makePlayers(5), Options{})
	require.NoError(t, err)

	open := b.Winners[0]
	assert.False(t, open.IsWinner(1))
	assert.False(t, open.IsLoser(2))

	var bye Match
	for _, m := range b.Winners {
		if m.IsBye {
			bye = m
		}
	}
	require.True(t, bye.IsBye)
	assert.True(t, bye.IsWinner(1))
	assert.False(t, bye.IsLoser(2))

	b, err = b.Advance(open.ID, open.Player2.ID, nil)
	require.NoError(t, err)
	decided, _ := b.Match(open.ID)
	assert.True(t, decided.IsLoser(1))
	assert.True(t, decided.IsWinner(2))
	assert.False(t, decided.IsWinner(3))

	data, err := json.Marshal(open)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "player1_result")
}

func TestValidate(t *testing.T) {
	players := makePlayers(2)
	matches, err := GenerateWinners(players)
	require.NoError(t, err)

	broken := clone(matches)
	broken[0].Status = MatchCompleted
	assert.ErrorIs(t, Validate(broken), ErrInvalidBracket)

	broken = clone(matches)
	outsider := makePlayers(1)[0]
	broken[0].Winner = &outsider
	broken[0].Status = MatchCompleted
	assert.ErrorIs(t, Validate(broken), ErrInvalidBracket)

	assert.NoError(t, Validate(matches))
}
