package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ActivityStatus string

const (
	ActivityDraft     ActivityStatus = "draft"
	ActivityPublished ActivityStatus = "published"
	ActivityClosed    ActivityStatus = "closed"
	ActivityCancelled ActivityStatus = "cancelled"
	ActivityFinished  ActivityStatus = "finished"
)

// Activity is an event the renter organizes inside a completed
// booking's date span. Exactly one activity may exist per booking.
// Only the date range is required to nest inside the booking; the
// time-of-day window is not validated against the booking's.
type Activity struct {
	bun.BaseModel `bun:"table:activities"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	BookingID   uuid.UUID `bun:"booking_id,notnull,unique,type:uuid" json:"booking_id"`
	OrganizerID uuid.UUID `bun:"organizer_id,notnull,type:uuid" json:"organizer_id"`

	Name        string `bun:"name,notnull" json:"name"`
	Description string `bun:"description" json:"description,omitempty"`

	StartDate time.Time  `bun:"start_date,notnull" json:"start_date"`
	EndDate   *time.Time `bun:"end_date" json:"end_date,omitempty"`
	StartTime string     `bun:"start_time,notnull" json:"start_time"`
	EndTime   string     `bun:"end_time,nullzero" json:"end_time,omitempty"`

	// Nil means unlimited.
	MaxParticipants *int `bun:"max_participants" json:"max_participants,omitempty"`

	Status ActivityStatus `bun:"status,notnull" json:"status"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// EffectiveEndDate is EndDate, or StartDate for single-day activities.
func (a *Activity) EffectiveEndDate() time.Time {
	if a.EndDate != nil {
		return *a.EndDate
	}
	return a.StartDate
}

// Dates returns the activity's inclusive date range.
func (a *Activity) Dates() DateRange {
	return DateRange{Start: a.StartDate, End: a.EffectiveEndDate()}
}

// EndsAt resolves the activity's closing instant: the effective end
// date combined with the end time, the start time, or 23:59:59 when
// neither clock is set.
func (a *Activity) EndsAt(loc *time.Location) time.Time {
	d := DateOnly(a.EffectiveEndDate())
	clock := a.EndTime
	if clock == "" {
		clock = a.StartTime
	}
	if clock == "" {
		return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	}
	min, err := ParseClock(clock)
	if err != nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), min/60, min%60, 0, 0, loc)
}

// HasEnded reports whether the activity's window is entirely in the past.
func (a *Activity) HasEnded(now time.Time) bool {
	return a.EndsAt(now.Location()).Before(now)
}

// IsFull reports whether joined has reached the participant cap.
// Unlimited activities are never full.
func (a *Activity) IsFull(joined int) bool {
	if a.MaxParticipants == nil {
		return false
	}
	return joined >= *a.MaxParticipants
}
