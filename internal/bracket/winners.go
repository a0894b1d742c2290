package bracket

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// GenerateWinners builds the upper ladder. Players are paired in seed order
// (0v1, 2v3, ...) and an odd leftover gets a bye; byes are settled right away
// so the returned rounds already hold every player who advanced without a game.
func GenerateWinners(players []Player) ([]Match, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: a bracket needs at least 2 players, got %d", ErrNotEnoughPlayers, len(players))
	}

	seen := make(map[uuid.UUID]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.Name)
		}
		seen[p.ID] = true
	}

	// matches keep pointers into this copy, never into the caller's slice
	players = slices.Clone(players)
	matches := buildLadder(WinnersRound, len(players))

	// Round 1 comes first in ladder order
	for i := 0; i < len(players); i += 2 {
		m := &matches[i/2]
		m.Player1 = &players[i]
		if i+1 < len(players) {
			m.Player2 = &players[i+1]
		}
	}

	if err := settleByes(matches); err != nil {
		return nil, err
	}

	return matches, nil
}

// WinnersRounds is the number of rounds the upper ladder has for n players.
func WinnersRounds(n int) int {
	return len(roundSizes(n))
}
