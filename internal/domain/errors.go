// Package domain defines the typed failures the core services return.
// Every guard rejection is one of these; callers match with errors.As
// or errors.Is and none of them is retried automatically.
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or out-of-range input on a single
// field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PermissionError reports that the acting user is not allowed to
// perform the operation.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// StateError reports a transition attempted from a status that does
// not permit it.
type StateError struct {
	Status string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Action, e.Status)
}

// ConflictError reports an overlap or uniqueness violation, including
// a second writer losing a race.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// CapacityError reports a participant registration against a full
// activity.
type CapacityError struct {
	Max     int
	Current int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("activity is full (%d of %d joined)", e.Current, e.Max)
}

// LimitError reports the per-user favorite cap being reached.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("favorite limit of %d venues reached", e.Limit)
}

// AmountMismatchError reports a payment amount that does not equal the
// booking's total price. Equality is exact decimal equality.
type AmountMismatchError struct {
	Required decimal.Decimal
	Supplied decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	diff := e.Supplied.Sub(e.Required)
	return fmt.Sprintf("amount mismatch: required %s, supplied %s (difference %s)",
		e.Required.String(), e.Supplied.String(), diff.String())
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

var (
	// ErrMissingPayoutInfo blocks approval until the owner has bank
	// details or a QR on file.
	ErrMissingPayoutInfo = errors.New("owner has no payout information on file")
	// ErrMissingSlip blocks payment confirmation without an uploaded slip.
	ErrMissingSlip = errors.New("no payment slip on file")
	// ErrGuestJoinWhileAuthenticated steers logged-in users to member
	// registration.
	ErrGuestJoinWhileAuthenticated = errors.New("authenticated users must register with their account")
)
