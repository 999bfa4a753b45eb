package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ParticipantStatus string

const (
	ParticipantJoined    ParticipantStatus = "joined"
	ParticipantCancelled ParticipantStatus = "cancelled"
)

// ActivityParticipant is one registration row. Members carry a UserID;
// guests carry IsManual=true plus the manual contact fields. At most
// one row may exist per (activity, user) when UserID is set.
type ActivityParticipant struct {
	bun.BaseModel `bun:"table:activity_participants"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	ActivityID uuid.UUID  `bun:"activity_id,notnull,type:uuid" json:"activity_id"`
	UserID     *uuid.UUID `bun:"user_id,type:uuid" json:"user_id,omitempty"`

	IsManual       bool   `bun:"is_manual" json:"is_manual"`
	ManualFullName string `bun:"manual_full_name" json:"manual_full_name,omitempty"`
	ManualEmail    string `bun:"manual_email" json:"manual_email,omitempty"`
	ManualPhone    string `bun:"manual_phone" json:"manual_phone,omitempty"`
	ManualNote     string `bun:"manual_note" json:"manual_note,omitempty"`

	Status   ParticipantStatus `bun:"status,notnull" json:"status"`
	JoinedAt time.Time         `bun:"joined_at,notnull" json:"joined_at"`

	Attended   bool       `bun:"attended" json:"attended"`
	AttendedAt *time.Time `bun:"attended_at" json:"attended_at,omitempty"`
}

// IsGuest reports whether the row has no platform identity behind it.
func (p *ActivityParticipant) IsGuest() bool {
	return p.UserID == nil || p.IsManual
}

// DisplayName is the manual name for guests; callers resolve member
// names from the users table.
func (p *ActivityParticipant) DisplayName() string {
	if p.ManualFullName != "" {
		return p.ManualFullName
	}
	return "Guest"
}
