package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	OwnerID     uuid.UUID       `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Name        string          `bun:"name,notnull" json:"name"`
	Description string          `bun:"description" json:"description,omitempty"`
	Address     string          `bun:"address" json:"address,omitempty"`
	PricePerDay decimal.Decimal `bun:"price_per_day,notnull,type:numeric(10,2)" json:"price_per_day"`

	ExtraAmenities string `bun:"extra_amenities" json:"extra_amenities,omitempty"`
	MaxCapacity    *int   `bun:"max_capacity" json:"max_capacity,omitempty"`

	// Code is the venue's location code. Both coordinates are optional
	// but must be provided together.
	Code      string   `bun:"code,nullzero" json:"code,omitempty"`
	Latitude  *float64 `bun:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `bun:"longitude" json:"longitude,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (v *Venue) HasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}
