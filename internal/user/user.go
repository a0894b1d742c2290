package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

// GuestID is the seeded operator account used by guest sessions.
var GuestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User is a tournament operator. Players are not users. Provider is unset
// for the guest operator.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Username   string    `db:"username" json:"username"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Provider   *string   `db:"provider" json:"provider,omitempty"`
	ProviderID *string   `db:"provider_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
