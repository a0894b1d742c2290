package bracket

import (
	"encoding/json"

	"github.com/google/uuid"
)

// matchRecord is the flat wire shape of a match. Label and the slot results
// are derived on the way out and ignored on the way in.
type matchRecord struct {
	ID          uuid.UUID   `json:"id"`
	Label       string      `json:"label"`
	Stage       Stage       `json:"stage"`
	Order       int         `json:"order"`
	Player1     *Player     `json:"player1"`
	Player2     *Player     `json:"player2"`
	Result1     string      `json:"player1_result,omitempty"`
	Result2     string      `json:"player2_result,omitempty"`
	Score       *MatchScore `json:"score"`
	GameInfo    GameInfo    `json:"game_info"`
	NextMatchID *uuid.UUID  `json:"next_match_id"`
	Status      MatchStatus `json:"status"`
	Winner      *Player     `json:"winner"`
	IsBye       bool        `json:"is_bye"`
}

func (m Match) MarshalJSON() ([]byte, error) {
	return json.Marshal(matchRecord{
		ID:          m.ID,
		Label:       m.Label(),
		Stage:       m.Stage,
		Order:       m.Order,
		Player1:     m.Player1,
		Player2:     m.Player2,
		Result1:     m.slotResult(1),
		Result2:     m.slotResult(2),
		Score:       m.Score,
		GameInfo:    m.GameInfo,
		NextMatchID: m.NextMatchID,
		Status:      m.Status,
		Winner:      m.Winner,
		IsBye:       m.IsBye,
	})
}

func (m *Match) slotResult(slot int) string {
	switch {
	case m.IsWinner(slot):
		return "won"
	case m.IsLoser(slot):
		return "lost"
	}
	return ""
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var r matchRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	*m = Match{
		ID:          r.ID,
		Stage:       r.Stage,
		Order:       r.Order,
		Player1:     r.Player1,
		Player2:     r.Player2,
		Score:       r.Score,
		GameInfo:    r.GameInfo,
		NextMatchID: r.NextMatchID,
		Status:      r.Status,
		Winner:      r.Winner,
		IsBye:       r.IsBye,
	}
	return nil
}
