package bracket

import "fmt"

type StageKind string

const (
	StageWinners   StageKind = "winners"
	StageLosersA   StageKind = "losers_a"
	StageLosersB   StageKind = "losers_b"
	StageSemifinal StageKind = "semifinal"
	StageFinal     StageKind = "final"
)

func (k StageKind) Valid() bool {
	switch k {
	case StageWinners, StageLosersA, StageLosersB, StageSemifinal, StageFinal:
		return true
	}
	return false
}

// Stage tells which ladder and round a match belongs to.
type Stage struct {
	Kind  StageKind `json:"kind"`
	Round int       `json:"round"`
}

func WinnersRound(n int) Stage { return Stage{Kind: StageWinners, Round: n} }

func LosersRound(b Branch, n int) Stage { return Stage{Kind: b.Kind(), Round: n} }

func Semifinal() Stage { return Stage{Kind: StageSemifinal, Round: 1} }

func Final() Stage { return Stage{Kind: StageFinal, Round: 1} }

// Label renders the display tag for the match at the given order in this stage.
func (s Stage) Label(order int) string {
	switch s.Kind {
	case StageWinners:
		return fmt.Sprintf("WINNERS ROUND %d - MATCH %d", s.Round, order)
	case StageLosersA:
		return fmt.Sprintf("LOSERS A ROUND %d - MATCH %d", s.Round, order)
	case StageLosersB:
		return fmt.Sprintf("LOSERS B ROUND %d - MATCH %d", s.Round, order)
	case StageSemifinal:
		return fmt.Sprintf("SEMI FINAL %d", order)
	case StageFinal:
		return "FINAL"
	}
	return fmt.Sprintf("%s ROUND %d - MATCH %d", s.Kind, s.Round, order)
}

// rank orders stages the way they are played and displayed.
func (s Stage) rank() int {
	switch s.Kind {
	case StageWinners:
		return 0
	case StageLosersA:
		return 1
	case StageLosersB:
		return 2
	case StageSemifinal:
		return 3
	case StageFinal:
		return 4
	}
	return 5
}

// Branch is one of the two independent losers ladders.
type Branch string

const (
	BranchA Branch = "A"
	BranchB Branch = "B"
)

var Branches = []Branch{BranchA, BranchB}

func (b Branch) Kind() StageKind {
	if b == BranchB {
		return StageLosersB
	}
	return StageLosersA
}

// FeederRound is the winners round whose losers drop into this branch.
func (b Branch) FeederRound() int {
	if b == BranchB {
		return 2
	}
	return 1
}
