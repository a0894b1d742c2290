package bracket

import (
	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// MatchScore holds games (racks) won by each side.
type MatchScore struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// GameInfo is presentation metadata. It never affects advancement.
type GameInfo struct {
	Handicap string `json:"handicap,omitempty"`
	Table    string `json:"table,omitempty"`
	RaceTo   string `json:"race_to,omitempty"`
}

type Match struct {
	ID    uuid.UUID
	Stage Stage
	// 1-based position inside the stage round
	Order int

	// nil means the slot waits for a feeder match
	Player1 *Player
	Player2 *Player

	Score    *MatchScore
	GameInfo GameInfo

	NextMatchID *uuid.UUID

	Status MatchStatus
	Winner *Player

	// A bye has a single entrant slot (Player1) and completes on its own.
	IsBye bool
}

func (m *Match) Label() string {
	return m.Stage.Label(m.Order)
}

func (m *Match) Completed() bool {
	return m.Status == MatchCompleted
}

// Ready reports whether both slots are filled, the only state in which an
// operator may decide the match.
func (m *Match) Ready() bool {
	return !m.IsBye && m.Player1 != nil && m.Player2 != nil
}

func (m *Match) HasPlayer(id uuid.UUID) bool {
	return (m.Player1 != nil && m.Player1.ID == id) || (m.Player2 != nil && m.Player2.ID == id)
}

// Loser returns the player who did not win a completed two-player match.
func (m *Match) Loser() *Player {
	if !m.Completed() || m.Winner == nil || m.IsBye {
		return nil
	}
	if m.Player1 != nil && m.Player1.ID == m.Winner.ID {
		return m.Player2
	}
	return m.Player1
}

// IsWinner reports whether the player in slot 1 or 2 won the decided match.
func (m *Match) IsWinner(slot int) bool {
	p := m.slot(slot)
	return m.Completed() && p != nil && m.Winner != nil && p.ID == m.Winner.ID
}

// IsLoser is the counterpart of IsWinner. A bye has no loser.
func (m *Match) IsLoser(slot int) bool {
	p := m.slot(slot)
	return m.Completed() && p != nil && m.Winner != nil && p.ID != m.Winner.ID
}

func (m *Match) slot(slot int) *Player {
	switch slot {
	case 1:
		return m.Player1
	case 2:
		return m.Player2
	}
	return nil
}

func (m *Match) complete(winner *Player, score *MatchScore) {
	m.Winner = winner
	m.Status = MatchCompleted
	if score != nil {
		s := *score
		m.Score = &s
	}
}
