package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"venuehub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- BOOKINGS ----------------

func (d *DB) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	return err
}

// UpdateBooking writes only the named columns so a transition never
// clobbers fields it does not own.
func (d *DB) UpdateBooking(booking models.Booking, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&booking).
		Column(columns...).
		Where("id = ?", booking.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteBooking(id uuid.UUID) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ActiveBookingsForVenue returns the venue's bookings that still block
// its calendar, excluding the given booking IDs.
func (d *DB) ActiveBookingsForVenue(venueID uuid.UUID, exclude ...uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	q := d.Bun.NewSelect().
		Model(&bookings).
		Where("venue_id = ?", venueID).
		Where("status NOT IN (?)", bun.In([]models.BookingStatus{
			models.BookingRejected,
			models.BookingCancelled,
		}))
	if len(exclude) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(exclude))
	}
	err := q.Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) BookingsForRenter(userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// BookingsForOwner returns every booking made against any venue the
// given user owns.
func (d *DB) BookingsForOwner(ownerID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Join("JOIN venues v ON v.id = booking.venue_id").
		Where("v.owner_id = ?", ownerID).
		Order("booking.created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// BookingHasActivity reports whether an activity already hangs off the
// booking.
func (d *DB) BookingHasActivity(bookingID uuid.UUID) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Activity)(nil)).
		Where("booking_id = ?", bookingID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------- RELATION QUERIES ----------------

func (d *DB) GetVenueByID(id uuid.UUID) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (d *DB) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}
