package bracket

import (
	"fmt"
	"slices"
)

// GenerateLosersBranch builds the empty ladder of one branch sized for the
// given number of dropped players. Seats are filled later by
// PopulateFromWinners.
func GenerateLosersBranch(b Branch, entrants int) []Match {
	return buildLadder(func(round int) Stage { return LosersRound(b, round) }, entrants)
}

// BranchSize counts how many players will drop into the branch: one per
// two-player match of its feeder round. Byes produce no loser.
func BranchSize(winners []Match, b Branch) int {
	n := 0
	for _, m := range winners {
		if m.Stage.Kind == StageWinners && m.Stage.Round == b.FeederRound() && !m.IsBye {
			n++
		}
	}
	return n
}

// GenerateLosers builds both branches for a generated winners ladder. The
// winners ladder must have at least three rounds, otherwise the Round 2 losers
// would be the winners finalists themselves.
func GenerateLosers(winners []Match) ([]Match, error) {
	rounds := 0
	for _, m := range winners {
		if m.Stage.Kind == StageWinners {
			rounds = max(rounds, m.Stage.Round)
		}
	}
	if rounds < 3 {
		return nil, fmt.Errorf("%w: losers branches need a winners ladder of 3 rounds, got %d", ErrNotEnoughPlayers, rounds)
	}

	var losers []Match
	for _, b := range Branches {
		losers = append(losers, GenerateLosersBranch(b, BranchSize(winners, b))...)
	}
	return losers, nil
}

// PopulateFromWinners drops the loser of every completed feeder match into the
// next open first-round seat of its branch, in winners ladder order. Players
// already in the branch are skipped, so calling it again after more results
// only fills seats that were still empty.
func PopulateFromWinners(winners, losers []Match) ([]Match, error) {
	ordered := clone(winners)
	sortMatches(ordered)

	out := clone(losers)
	for _, b := range Branches {
		for _, wm := range ordered {
			if wm.Stage.Kind != StageWinners || wm.Stage.Round != b.FeederRound() || wm.IsBye || !wm.Completed() {
				continue
			}

			loser := wm.Loser()
			if loser == nil {
				return nil, fmt.Errorf("%w: %s is completed without a loser", ErrInvalidBracket, wm.Label())
			}
			if branchHas(out, b, loser) {
				continue
			}

			idx := openSeat(out, b)
			if idx < 0 {
				return nil, fmt.Errorf("%w: losers %s has no open seat for %s", ErrDuplicateAdvancement, b, loser.Name)
			}
			if err := seat(&out[idx], loser); err != nil {
				return nil, err
			}
			if out[idx].IsBye {
				out[idx].complete(out[idx].Player1, nil)
				if err := propagate(out, idx); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

func branchHas(matches []Match, b Branch, p *Player) bool {
	return slices.ContainsFunc(matches, func(m Match) bool {
		return m.Stage.Kind == b.Kind() && m.HasPlayer(p.ID)
	})
}

// openSeat finds the first round-1 match of the branch with a free slot,
// walking seats left to right.
func openSeat(matches []Match, b Branch) int {
	best := -1
	for i, m := range matches {
		if m.Stage.Kind != b.Kind() || m.Stage.Round != 1 || m.Completed() {
			continue
		}
		free := m.Player1 == nil || (m.Player2 == nil && !m.IsBye)
		if !free {
			continue
		}
		if best < 0 || m.Order < matches[best].Order {
			best = i
		}
	}
	return best
}

// BranchChampion is the winner of the branch final, nil until decided.
func BranchChampion(losers []Match, b Branch) *Player {
	if m := finalOf(losers, b.Kind()); m != nil && m.Completed() {
		return m.Winner
	}
	return nil
}
