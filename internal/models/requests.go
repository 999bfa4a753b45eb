package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared request validator. Field names in validation
// errors use the json tag so callers see wire names, not Go names.
var Validate = validator.New()

func init() {
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type BookingRequest struct {
	VenueID   string `json:"venue_id" validate:"required,uuid4"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Notes     string `json:"notes"`
}

type SlipUploadRequest struct {
	// Amount is a decimal string; it must equal the booking's total
	// price exactly.
	Amount  string `json:"amount" validate:"required"`
	SlipRef string `json:"slip_ref" validate:"required"`
}

type ActivityRequest struct {
	BookingID       string `json:"booking_id" validate:"required,uuid4"`
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string `json:"end_time" validate:"omitempty,datetime=15:04"`
	MaxParticipants *int   `json:"max_participants" validate:"omitempty,gt=0"`
	Status          string `json:"status" validate:"omitempty,oneof=draft published closed cancelled finished"`
}

type GuestRegistrationRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Note     string `json:"note"`
}

type VenueRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description"`
	Address        string   `json:"address" validate:"max=300"`
	PricePerDay    string   `json:"price_per_day" validate:"required"`
	ExtraAmenities string   `json:"extra_amenities"`
	MaxCapacity    *int     `json:"max_capacity" validate:"omitempty,gt=0"`
	Code           string   `json:"code" validate:"max=32"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type PayoutInfoRequest struct {
	BankName          string `json:"bank_name" validate:"omitempty,max=100"`
	BankAccountNumber string `json:"bank_account_number" validate:"omitempty,max=15"`
	BankQR            string `json:"bank_qr"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}
