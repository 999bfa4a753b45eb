package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingPending              BookingStatus = "pending"
	BookingApproved             BookingStatus = "approved"
	BookingAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingCompleted            BookingStatus = "completed"
	BookingRejected             BookingStatus = "rejected"
	BookingCancelled            BookingStatus = "cancelled"
)

// Booking reserves a venue for an inclusive date span plus a
// whole-span time-of-day window, and carries the manual payment
// confirmation workflow: pending -> approved -> awaiting_confirmation
// -> completed, with rejected/cancelled as side exits.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID  uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	VenueID uuid.UUID `bun:"venue_id,notnull,type:uuid" json:"venue_id"`

	StartDate time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate   time.Time `bun:"end_date,notnull" json:"end_date"`
	StartTime string    `bun:"start_time,notnull" json:"start_time"`
	EndTime   string    `bun:"end_time,notnull" json:"end_time"`

	TotalPrice decimal.Decimal `bun:"total_price,notnull,type:numeric(10,2)" json:"total_price"`
	Status     BookingStatus   `bun:"status,notnull" json:"status"`
	Notes      string          `bun:"notes" json:"notes,omitempty"`

	// PaymentSlip is an opaque reference to the uploaded proof of
	// payment; AmountPaid is the amount the renter claims to have
	// transferred and must equal TotalPrice exactly.
	PaymentSlip string           `bun:"payment_slip,nullzero" json:"payment_slip,omitempty"`
	AmountPaid  *decimal.Decimal `bun:"amount_paid,type:numeric(10,2)" json:"amount_paid,omitempty"`

	CreatedAt      time.Time  `bun:"created_at,notnull" json:"created_at"`
	ApprovedAt     *time.Time `bun:"approved_at" json:"approved_at,omitempty"`
	SlipUploadedAt *time.Time `bun:"slip_uploaded_at" json:"slip_uploaded_at,omitempty"`
	CompletedAt    *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
}

// Window returns the booking's date range plus coarse time range for
// overlap checks.
func (b *Booking) Window() Window {
	return Window{
		Dates: DateRange{Start: b.StartDate, End: b.EndDate},
		Times: TimeRange{Start: b.StartTime, End: b.EndTime},
	}
}

// Days is the inclusive number of booked days.
func (b *Booking) Days() int64 {
	return DateRange{Start: b.StartDate, End: b.EndDate}.Days()
}

// Blocks reports whether the booking still occupies its venue window.
// Rejected and cancelled bookings do not.
func (b *Booking) Blocks() bool {
	return b.Status != BookingRejected && b.Status != BookingCancelled
}
