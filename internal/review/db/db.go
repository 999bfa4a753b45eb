package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"venuehub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetReview returns the (venue, user) review row or nil.
func (d *DB) GetReview(venueID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := d.Bun.NewSelect().
		Model(&review).
		Where("venue_id = ?", venueID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (d *DB) GetReviewByID(id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := d.Bun.NewSelect().
		Model(&review).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (d *DB) CreateReview(review models.Review) error {
	_, err := d.Bun.NewInsert().Model(&review).Exec(context.Background())
	return err
}

func (d *DB) UpdateReview(review models.Review, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&review).
		Column(columns...).
		Where("id = ?", review.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteReview(id uuid.UUID) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ReviewsForVenue(venueID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := d.Bun.NewSelect().
		Model(&reviews).
		Where("venue_id = ?", venueID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// HasCompletedBooking reports whether the user ever completed a booking
// of the venue. The review gate depends on it.
func (d *DB) HasCompletedBooking(userID, venueID uuid.UUID) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("user_id = ?", userID).
		Where("venue_id = ?", venueID).
		Where("status = ?", models.BookingCompleted).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

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
