package bracket

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// roundSizes returns the match count per round of a ladder with the given
// number of entrants. Each round halves the previous one, rounding up.
func roundSizes(entrants int) []int {
	if entrants <= 0 {
		return nil
	}

	sizes := []int{(entrants + 1) / 2}
	for last := sizes[0]; last > 1; last = sizes[len(sizes)-1] {
		sizes = append(sizes, (last+1)/2)
	}
	return sizes
}

// buildLadder materialises an empty single-elimination ladder. Match 2i and
// 2i+1 of a round feed match i of the next one; a match left with one entrant
// slot (odd leftover in round 1, single feeder later on) is a bye.
func buildLadder(stage func(round int) Stage, entrants int) []Match {
	sizes := roundSizes(entrants)
	if len(sizes) == 0 {
		return nil
	}

	ids := make([][]uuid.UUID, len(sizes))
	for r, size := range sizes {
		ids[r] = make([]uuid.UUID, size)
		for i := 0; i < size; i++ {
			ids[r][i] = uuid.New()
		}
	}

	matches := make([]Match, 0, totalMatches(sizes))
	for r, size := range sizes {
		// slots feeding this round: players in round 1, matches afterwards
		feeders := entrants
		if r > 0 {
			feeders = sizes[r-1]
		}

		for i := 0; i < size; i++ {
			m := Match{
				ID:     ids[r][i],
				Stage:  stage(r + 1),
				Order:  i + 1,
				Status: MatchPending,
				IsBye:  2*i+1 >= feeders,
			}
			if r+1 < len(sizes) {
				next := ids[r+1][i/2]
				m.NextMatchID = &next
			}
			matches = append(matches, m)
		}
	}

	return matches
}

func totalMatches(sizes []int) int {
	total := 0
	for _, s := range sizes {
		total += s
	}
	return total
}

func clone(matches []Match) []Match {
	return slices.Clone(matches)
}

func indexOf(matches []Match, id uuid.UUID) int {
	return slices.IndexFunc(matches, func(m Match) bool { return m.ID == id })
}

// seat writes p into the first free slot of m. A bye only has its first slot.
func seat(m *Match, p *Player) error {
	switch {
	case m.Completed():
		return fmt.Errorf("%w: %s is already completed", ErrDuplicateAdvancement, m.Label())
	case m.HasPlayer(p.ID):
		return fmt.Errorf("%w: %s already seats %s", ErrDuplicateAdvancement, m.Label(), p.Name)
	case m.Player1 == nil:
		m.Player1 = p
	case m.Player2 == nil && !m.IsBye:
		m.Player2 = p
	default:
		return fmt.Errorf("%w: %s has no empty slot", ErrDuplicateAdvancement, m.Label())
	}
	return nil
}

// propagate pushes the winner of matches[idx] downstream, settling any bye it
// lands in along the way. It works on the slice in place, callers pass a clone.
func propagate(matches []Match, idx int) error {
	for {
		m := &matches[idx]
		if m.NextMatchID == nil {
			return nil
		}

		nextIdx := indexOf(matches, *m.NextMatchID)
		if nextIdx < 0 {
			return fmt.Errorf("%w: %s feeds %s", ErrUnknownMatchID, m.Label(), m.NextMatchID)
		}

		next := &matches[nextIdx]
		if err := seat(next, m.Winner); err != nil {
			return err
		}
		if !next.IsBye {
			return nil
		}

		next.complete(next.Player1, nil)
		idx = nextIdx
	}
}

// settleByes completes every bye whose entrant is already known.
func settleByes(matches []Match) error {
	for i := range matches {
		m := &matches[i]
		if !m.IsBye || m.Completed() || m.Player1 == nil {
			continue
		}
		m.complete(m.Player1, nil)
		if err := propagate(matches, i); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceWinner records winnerID as the winner of matchID and moves the winner
// into the first empty slot of the downstream match. It works for every stage
// and returns a new collection; the given one is left untouched. The score is
// optional and comes from the operator. Without one, a running score already
// on the match must still favour the winner.
func AdvanceWinner(matches []Match, matchID, winnerID uuid.UUID, score *MatchScore) ([]Match, error) {
	idx := indexOf(matches, matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatchID, matchID)
	}

	out := clone(matches)
	m := &out[idx]

	switch {
	case m.IsBye:
		return nil, fmt.Errorf("%w: %s is a bye and advances on its own", ErrInvalidAdvancement, m.Label())
	case m.Completed():
		return nil, fmt.Errorf("%w: %s is already decided", ErrInvalidAdvancement, m.Label())
	case !m.Ready():
		return nil, fmt.Errorf("%w: %s is waiting for a player", ErrInvalidAdvancement, m.Label())
	}

	var winner *Player
	switch winnerID {
	case m.Player1.ID:
		winner = m.Player1
	case m.Player2.ID:
		winner = m.Player2
	default:
		return nil, fmt.Errorf("%w: winner is not part of %s", ErrInvalidAdvancement, m.Label())
	}

	final := score
	if final == nil {
		final = m.Score
	}
	if final != nil {
		if err := checkScore(m, winner, *final); err != nil {
			return nil, err
		}
	}

	m.complete(winner, score)
	if err := propagate(out, idx); err != nil {
		return nil, err
	}

	return out, nil
}

func checkScore(m *Match, winner *Player, score MatchScore) error {
	if score.Player1 < 0 || score.Player2 < 0 {
		return fmt.Errorf("%w: negative score for %s", ErrInvalidAdvancement, m.Label())
	}

	won, lost := score.Player1, score.Player2
	if winner.ID == m.Player2.ID {
		won, lost = lost, won
	}
	if won <= lost {
		return fmt.Errorf("%w: score %d-%d does not favour the winner of %s", ErrInvalidAdvancement, score.Player1, score.Player2, m.Label())
	}
	return nil
}

// RecordScore stores a running score and moves the match to in_progress.
func RecordScore(matches []Match, matchID uuid.UUID, score MatchScore) ([]Match, error) {
	idx := indexOf(matches, matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatchID, matchID)
	}

	out := clone(matches)
	m := &out[idx]

	switch {
	case m.Completed():
		return nil, fmt.Errorf("%w: %s is already decided", ErrInvalidAdvancement, m.Label())
	case !m.Ready():
		return nil, fmt.Errorf("%w: %s is waiting for a player", ErrInvalidAdvancement, m.Label())
	case score.Player1 < 0 || score.Player2 < 0:
		return nil, fmt.Errorf("%w: negative score for %s", ErrInvalidAdvancement, m.Label())
	}

	m.Score = &score
	m.Status = MatchInProgress
	return out, nil
}

// AssignGameInfo replaces the table/handicap metadata of an undecided match.
func AssignGameInfo(matches []Match, matchID uuid.UUID, info GameInfo) ([]Match, error) {
	idx := indexOf(matches, matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatchID, matchID)
	}

	out := clone(matches)
	if out[idx].Completed() {
		return nil, fmt.Errorf("%w: %s is already decided", ErrInvalidAdvancement, out[idx].Label())
	}
	out[idx].GameInfo = info
	return out, nil
}

// finalOf returns the last match of a ladder, the one without a downstream
// match, or nil when the ladder is empty.
func finalOf(matches []Match, kind StageKind) *Match {
	for i := range matches {
		if matches[i].Stage.Kind == kind && matches[i].NextMatchID == nil {
			return &matches[i]
		}
	}
	return nil
}

func ofKind(matches []Match, kind StageKind) []Match {
	var out []Match
	for _, m := range matches {
		if m.Stage.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// sortMatches orders by stage, round, then order.
func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if d := a.Stage.rank() - b.Stage.rank(); d != 0 {
			return d
		}
		if d := a.Stage.Round - b.Stage.Round; d != 0 {
			return d
		}
		return a.Order - b.Order
	})
}
