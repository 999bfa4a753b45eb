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

// ---------------- VENUES ----------------

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

func (d *DB) CreateVenue(venue models.Venue) error {
	_, err := d.Bun.NewInsert().Model(&venue).Exec(context.Background())
	return err
}

func (d *DB) UpdateVenue(venue models.Venue, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&venue).
		Column(columns...).
		Where("id = ?", venue.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteVenue(id uuid.UUID) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Venue)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) Venues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (d *DB) VenuesForOwner(ownerID uuid.UUID) ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// ---------------- USERS ----------------

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

func (d *DB) UpdateUser(user models.User, columns ...string) error {
	_, err := d.Bun.NewUpdate().
		Model(&user).
		Column(columns...).
		Where("id = ?", user.ID).
		Exec(context.Background())
	return err
}

// ---------------- FAVORITES ----------------

// GetFavorite returns the (user, venue) bookmark row or nil.
func (d *DB) GetFavorite(userID, venueID uuid.UUID) (*models.Favorite, error) {
	var favorite models.Favorite
	err := d.Bun.NewSelect().
		Model(&favorite).
		Where("user_id = ?", userID).
		Where("venue_id = ?", venueID).
		Limit(1).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

// CreateFavoriteGated inserts a bookmark with the per-user cap checked
// inside the same transaction, so two concurrent adds cannot both slip
// under the limit.
func (d *DB) CreateFavoriteGated(favorite models.Favorite, limit int) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*models.Favorite)(nil)).
			Where("user_id = ?", favorite.UserID).
			Count(ctx)
		if err != nil {
			return err
		}
		if count >= limit {
			return &domain.LimitError{Limit: limit}
		}
		_, err = tx.NewInsert().Model(&favorite).Exec(ctx)
		return err
	})
}

func (d *DB) DeleteFavorite(id uuid.UUID) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Favorite)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// FavoriteVenues returns the venues a user has bookmarked, newest
// bookmark first.
func (d *DB) FavoriteVenues(userID uuid.UUID) ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Join("JOIN favorites f ON f.venue_id = venue.id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}
