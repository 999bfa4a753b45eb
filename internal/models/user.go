package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Email     string     `bun:"email,notnull,unique" json:"email"`
	FirstName string     `bun:"first_name" json:"first_name"`
	LastName  string     `bun:"last_name" json:"last_name"`
	PhoneNum  string     `bun:"phone_num" json:"phone_num"`
	DOB       *time.Time `bun:"dob" json:"dob,omitempty"`
	IsStaff   bool       `bun:"is_staff" json:"is_staff"`

	// Payout details shown to renters once a booking is approved.
	// BankQR is an opaque reference to an uploaded QR image.
	BankName          string `bun:"bank_name,nullzero" json:"bank_name,omitempty"`
	BankAccountNumber string `bun:"bank_account_number,nullzero" json:"bank_account_number,omitempty"`
	BankQR            string `bun:"bank_qr,nullzero" json:"bank_qr,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// HasPayoutInfo reports whether the user can receive payments: either a
// bank QR or a bank name plus account number must be on file.
func (u *User) HasPayoutInfo() bool {
	return u.BankQR != "" || (u.BankName != "" && u.BankAccountNumber != "")
}

// FullName falls back to the email when no name is set.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
