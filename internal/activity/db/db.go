package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"venuehub/internal/domain"
	"venuehub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ACTIVITIES ----------------

func (d *DB) GetActivityByID(id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := d.Bun.NewSelect().
		Model(&activity).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (d *DB) GetActivityByBookingID(bookingID uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := d.Bun.NewSelect().
		Model(&activity).
		Where("booking_id = ?", bookingID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (d *DB) CreateActivity(activity models.Activity) error {
	_, err := d.Bun.NewInsert().Model(&activity).Exec(context.Background())
	return err
}

func (d *DB) UpdateActivity(activity models.Activity, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&activity).
		Column(columns...).
		Where("id = ?", activity.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteActivity(id uuid.UUID) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Activity)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ActivitiesForOrganizer(organizerID uuid.UUID) ([]models.Activity, error) {
	var activities []models.Activity
	err := d.Bun.NewSelect().
		Model(&activities).
		Where("organizer_id = ?", organizerID).
		Order("start_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (d *DB) PublishedActivities() ([]models.Activity, error) {
	var activities []models.Activity
	err := d.Bun.NewSelect().
		Model(&activities).
		Where("status = ?", models.ActivityPublished).
		Order("start_date ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ---------------- PARTICIPANTS ----------------

func (d *DB) GetParticipantByID(id uuid.UUID) (*models.ActivityParticipant, error) {
	var participant models.ActivityParticipant
	err := d.Bun.NewSelect().
		Model(&participant).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// GetParticipantByUser returns the member row for (activity, user),
// whatever its status, or nil when none exists.
func (d *DB) GetParticipantByUser(activityID, userID uuid.UUID) (*models.ActivityParticipant, error) {
	var participant models.ActivityParticipant
	err := d.Bun.NewSelect().
		Model(&participant).
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (d *DB) Participants(activityID uuid.UUID) ([]models.ActivityParticipant, error) {
	var participants []models.ActivityParticipant
	err := d.Bun.NewSelect().
		Model(&participants).
		Where("activity_id = ?", activityID).
		Order("joined_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (d *DB) CountJoined(activityID uuid.UUID) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.ActivityParticipant)(nil)).
		Where("activity_id = ?", activityID).
		Where("status = ?", models.ParticipantJoined).
		Count(context.Background())
}

func (d *DB) UpdateParticipant(participant models.ActivityParticipant, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&participant).
		Column(columns...).
		Where("id = ?", participant.ID).
		Exec(context.Background())
	return err
}

// CreateParticipantGated inserts a registration with the capacity check
// inside the same transaction, so two concurrent joins cannot both
// slip under the cap. max nil means unlimited.
func (d *DB) CreateParticipantGated(participant models.ActivityParticipant, max *int) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkCapacity(ctx, tx, participant.ActivityID, max); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&participant).Exec(ctx)
		return err
	})
}

// RejoinParticipantGated flips a cancelled row back to joined under the
// same in-transaction capacity check as a fresh insert.
func (d *DB) RejoinParticipantGated(participant models.ActivityParticipant, max *int) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkCapacity(ctx, tx, participant.ActivityID, max); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model(&participant).
			Column("status", "is_manual", "manual_full_name", "manual_email", "manual_phone", "manual_note", "joined_at").
			Where("id = ?", participant.ID).
			Exec(ctx)
		return err
	})
}

func checkCapacity(ctx context.Context, tx bun.Tx, activityID uuid.UUID, max *int) error {
	if max == nil {
		return nil
	}
	joined, err := tx.NewSelect().
		Model((*models.ActivityParticipant)(nil)).
		Where("activity_id = ?", activityID).
		Where("status = ?", models.ParticipantJoined).
		Count(ctx)
	if err != nil {
		return err
	}
	if joined >= *max {
		return &domain.CapacityError{Max: *max, Current: joined}
	}
	return nil
}

// ---------------- RELATION QUERIES ----------------

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
