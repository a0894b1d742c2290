package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateFinals builds the two semifinals feeding the final.
func GenerateFinals() []Match {
	finalID := uuid.New()
	semis := make([]Match, 0, 3)
	for i := 0; i < 2; i++ {
		next := finalID
		semis = append(semis, Match{
			ID:          uuid.New(),
			Stage:       Semifinal(),
			Order:       i + 1,
			Status:      MatchPending,
			NextMatchID: &next,
		})
	}
	return append(semis, Match{
		ID:     finalID,
		Stage:  Final(),
		Order:  1,
		Status: MatchPending,
	})
}

// Finalists are the four players who reach the semifinals.
type Finalists struct {
	WinnersChampion *Player
	WinnersRunnerUp *Player
	BranchAChampion *Player
	BranchBChampion *Player
}

// SemifinalPairing decides who meets whom in SEMI FINAL 1 and 2.
type SemifinalPairing func(f Finalists) [2][2]*Player

// CrossPairing keeps winners ladder survivors apart: the winners champion meets
// the Branch A champion and the runner-up meets the Branch B champion.
func CrossPairing(f Finalists) [2][2]*Player {
	return [2][2]*Player{
		{f.WinnersChampion, f.BranchAChampion},
		{f.WinnersRunnerUp, f.BranchBChampion},
	}
}

// CanStart reports whether the winners final and both branch finals are decided.
func CanStart(winners, losers []Match) bool {
	_, err := finalists(winners, losers)
	return err == nil
}

func finalists(winners, losers []Match) (Finalists, error) {
	wf := finalOf(winners, StageWinners)
	if wf == nil || !wf.Completed() {
		return Finalists{}, fmt.Errorf("%w: winners final is not decided", ErrPrematureComposition)
	}

	f := Finalists{
		WinnersChampion: wf.Winner,
		WinnersRunnerUp: wf.Loser(),
		BranchAChampion: BranchChampion(losers, BranchA),
		BranchBChampion: BranchChampion(losers, BranchB),
	}
	if f.WinnersRunnerUp == nil {
		return Finalists{}, fmt.Errorf("%w: winners final has no runner-up", ErrInvalidBracket)
	}
	for _, b := range Branches {
		if BranchChampion(losers, b) == nil {
			return Finalists{}, fmt.Errorf("%w: losers %s final is not decided", ErrPrematureComposition, b)
		}
	}
	return f, nil
}

// PopulateFromBrackets seats the semifinals once CanStart holds. Seats that
// already hold the expected pair are left alone, anything else in them is a
// duplicate advancement. A nil pairing means CrossPairing.
func PopulateFromBrackets(winners, losers, finals []Match, pairing SemifinalPairing) ([]Match, error) {
	f, err := finalists(winners, losers)
	if err != nil {
		return nil, err
	}
	if pairing == nil {
		pairing = CrossPairing
	}

	out := clone(finals)
	sortMatches(out)

	semis := 0
	for _, m := range out {
		if m.Stage.Kind == StageSemifinal {
			semis++
		}
	}
	if semis != 2 {
		return nil, fmt.Errorf("%w: expected 2 semifinals, got %d", ErrInvalidBracket, semis)
	}

	pairs := pairing(f)
	if err := checkPairs(f, pairs); err != nil {
		return nil, err
	}
	for i, pair := range pairs {
		m := &out[i]
		if m.HasPlayer(pair[0].ID) && m.HasPlayer(pair[1].ID) {
			continue
		}
		for _, p := range pair {
			if m.HasPlayer(p.ID) {
				continue
			}
			if err := seat(m, p); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// checkPairs requires the pairing to seat each of the four finalists exactly once.
func checkPairs(f Finalists, pairs [2][2]*Player) error {
	expected := map[uuid.UUID]bool{}
	for _, p := range []*Player{f.WinnersChampion, f.WinnersRunnerUp, f.BranchAChampion, f.BranchBChampion} {
		expected[p.ID] = true
	}

	seated := map[uuid.UUID]bool{}
	for i, pair := range pairs {
		label := Semifinal().Label(i + 1)
		for _, p := range pair {
			switch {
			case p == nil:
				return fmt.Errorf("%w: pairing left a seat empty in %s", ErrInvalidBracket, label)
			case !expected[p.ID]:
				return fmt.Errorf("%w: pairing seated a non-finalist in %s", ErrInvalidBracket, label)
			case seated[p.ID]:
				return fmt.Errorf("%w: pairing seated %s twice", ErrInvalidBracket, p.Name)
			}
			seated[p.ID] = true
		}
	}
	return nil
}

// Champion returns the winner of the final, nil while undecided.
func Champion(finals []Match) *Player {
	if m := finalOf(finals, StageFinal); m != nil && m.Completed() {
		return m.Winner
	}
	return nil
}
