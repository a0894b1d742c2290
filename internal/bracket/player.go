package bracket

import "github.com/google/uuid"

// Player is a competitor as seen by the bracket. Matches share *Player values
// between stages, so nothing in this package writes through them.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Rank      string    `json:"rank"`
}

// Entry is a player's registration in a tournament.
type Entry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Rank         string    `db:"rank_label" json:"rank"`
	Elo          int       `db:"elo" json:"elo"`
}

func (e Entry) Player() Player {
	return Player{
		ID:        e.ID,
		Name:      e.Name,
		AvatarURL: e.AvatarURL,
		Rank:      e.Rank,
	}
}

// Players converts entries, already ordered by seed, into the generator input.
func Players(entries []Entry) []Player {
	players := make([]Player, 0, len(entries))
	for _, e := range entries {
		players = append(players, e.Player())
	}
	return players
}
