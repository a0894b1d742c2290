package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

type Format string

const (
	// Winners ladder only, its final decides the champion.
	FormatSingle Format = "single"
	// Winners ladder, two losers branches, semifinals and final.
	FormatDouble Format = "double"
)

type Options struct {
	Format   Format
	GameInfo GameInfo
	// nil means CrossPairing
	Pairing SemifinalPairing
}

// Bracket groups the collections of one tournament. Every method returns a new
// Bracket and leaves the receiver as it was.
type Bracket struct {
	Format  Format  `json:"format"`
	Winners []Match `json:"winners"`
	Losers  []Match `json:"losers"`
	Finals  []Match `json:"finals"`

	pairing SemifinalPairing
}

// Generate materialises every match of the tournament for the seeded players.
func Generate(players []Player, opts Options) (Bracket, error) {
	if opts.Format == "" {
		opts.Format = FormatDouble
	}

	b := Bracket{Format: opts.Format, pairing: opts.Pairing}

	winners, err := GenerateWinners(players)
	if err != nil {
		return Bracket{}, err
	}
	b.Winners = winners

	switch opts.Format {
	case FormatSingle:
	case FormatDouble:
		if b.Losers, err = GenerateLosers(winners); err != nil {
			return Bracket{}, err
		}
		b.Finals = GenerateFinals()
	default:
		return Bracket{}, fmt.Errorf("%w: unknown format %q", ErrInvalidBracket, opts.Format)
	}

	for _, set := range [][]Match{b.Winners, b.Losers, b.Finals} {
		for i := range set {
			set[i].GameInfo = opts.GameInfo
		}
	}

	return b, nil
}

// FromMatches regroups a flat collection, as loaded from storage, by stage.
func FromMatches(format Format, matches []Match) Bracket {
	b := Bracket{Format: format}
	for _, m := range matches {
		switch m.Stage.Kind {
		case StageWinners:
			b.Winners = append(b.Winners, m)
		case StageLosersA, StageLosersB:
			b.Losers = append(b.Losers, m)
		case StageSemifinal, StageFinal:
			b.Finals = append(b.Finals, m)
		}
	}
	sortMatches(b.Winners)
	sortMatches(b.Losers)
	sortMatches(b.Finals)
	return b
}

// Matches flattens the bracket in play order.
func (b Bracket) Matches() []Match {
	all := make([]Match, 0, len(b.Winners)+len(b.Losers)+len(b.Finals))
	all = append(all, b.Winners...)
	all = append(all, b.Losers...)
	all = append(all, b.Finals...)
	sortMatches(all)
	return all
}

func (b Bracket) Match(id uuid.UUID) (Match, bool) {
	for _, set := range [][]Match{b.Winners, b.Losers, b.Finals} {
		if i := indexOf(set, id); i >= 0 {
			return set[i], true
		}
	}
	return Match{}, false
}

// Advance decides a match and pushes every consequence downstream: the loser
// into a losers branch, branch champions and winners finalists into the
// semifinals once all of them are known.
func (b Bracket) Advance(matchID, winnerID uuid.UUID, score *MatchScore) (Bracket, error) {
	next, err := b.apply(matchID, func(set []Match) ([]Match, error) {
		return AdvanceWinner(set, matchID, winnerID, score)
	})
	if err != nil {
		return Bracket{}, err
	}
	return next.sync()
}

func (b Bracket) RecordScore(matchID uuid.UUID, score MatchScore) (Bracket, error) {
	return b.apply(matchID, func(set []Match) ([]Match, error) {
		return RecordScore(set, matchID, score)
	})
}

func (b Bracket) AssignGameInfo(matchID uuid.UUID, info GameInfo) (Bracket, error) {
	return b.apply(matchID, func(set []Match) ([]Match, error) {
		return AssignGameInfo(set, matchID, info)
	})
}

func (b Bracket) apply(matchID uuid.UUID, op func([]Match) ([]Match, error)) (Bracket, error) {
	switch {
	case indexOf(b.Winners, matchID) >= 0:
		set, err := op(b.Winners)
		if err != nil {
			return Bracket{}, err
		}
		b.Winners = set
	case indexOf(b.Losers, matchID) >= 0:
		set, err := op(b.Losers)
		if err != nil {
			return Bracket{}, err
		}
		b.Losers = set
	case indexOf(b.Finals, matchID) >= 0:
		set, err := op(b.Finals)
		if err != nil {
			return Bracket{}, err
		}
		b.Finals = set
	default:
		return Bracket{}, fmt.Errorf("%w: %s", ErrUnknownMatchID, matchID)
	}
	return b, nil
}

func (b Bracket) sync() (Bracket, error) {
	if b.Format != FormatDouble {
		return b, nil
	}

	losers, err := PopulateFromWinners(b.Winners, b.Losers)
	if err != nil {
		return Bracket{}, err
	}
	b.Losers = losers

	if !CanStart(b.Winners, b.Losers) {
		return b, nil
	}
	finals, err := PopulateFromBrackets(b.Winners, b.Losers, b.Finals, b.pairing)
	if err != nil {
		return Bracket{}, err
	}
	b.Finals = finals
	return b, nil
}

// SemifinalsReady reports whether the semifinals can be composed.
func (b Bracket) SemifinalsReady() bool {
	return b.Format == FormatDouble && CanStart(b.Winners, b.Losers)
}

// Champion is the tournament winner, nil until the deciding match is played.
func (b Bracket) Champion() *Player {
	if b.Format == FormatSingle {
		if m := finalOf(b.Winners, StageWinners); m != nil && m.Completed() {
			return m.Winner
		}
		return nil
	}
	return Champion(b.Finals)
}

// Changed lists the matches of b that differ from the same match in prev.
func (b Bracket) Changed(prev Bracket) []Match {
	var changed []Match
	for _, m := range b.Matches() {
		old, ok := prev.Match(m.ID)
		if !ok || !sameMatch(old, m) {
			changed = append(changed, m)
		}
	}
	return changed
}

func sameMatch(a, b Match) bool {
	return a.Status == b.Status &&
		samePlayer(a.Player1, b.Player1) &&
		samePlayer(a.Player2, b.Player2) &&
		samePlayer(a.Winner, b.Winner) &&
		a.GameInfo == b.GameInfo &&
		((a.Score == nil && b.Score == nil) || (a.Score != nil && b.Score != nil && *a.Score == *b.Score))
}

func samePlayer(a, b *Player) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}
