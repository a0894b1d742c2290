package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"owner_id"`
	Name      string           `db:"name" json:"name"`
	Slug      string           `db:"slug" json:"slug"`
	Status    TournamentStatus `db:"status" json:"status"`
	Format    Format           `db:"format" json:"format"`
	RaceTo    string           `db:"race_to" json:"race_to"`
	Handicap  string           `db:"handicap" json:"handicap"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// GameInfo is the default metadata stamped on every generated match.
func (t *Tournament) GameInfo() GameInfo {
	return GameInfo{RaceTo: t.RaceTo, Handicap: t.Handicap}
}
