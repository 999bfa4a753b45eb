package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FavoriteLimit caps how many venues a user may bookmark.
const FavoriteLimit = 15

type Favorite struct {
	bun.BaseModel `bun:"table:favorites"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID  uuid.UUID `bun:"user_id,notnull,unique:favorites_user_venue,type:uuid" json:"user_id"`
	VenueID uuid.UUID `bun:"venue_id,notnull,unique:favorites_user_venue,type:uuid" json:"venue_id"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
