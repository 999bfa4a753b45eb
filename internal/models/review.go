package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Review is one user's rating of a venue. One review per (venue, user);
// creation requires a prior completed booking of that venue.
type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	VenueID uuid.UUID `bun:"venue_id,notnull,unique:reviews_venue_user,type:uuid" json:"venue_id"`
	UserID  uuid.UUID `bun:"user_id,notnull,unique:reviews_venue_user,type:uuid" json:"user_id"`

	Rating  int    `bun:"rating,notnull" json:"rating"`
	Comment string `bun:"comment,notnull" json:"comment"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
