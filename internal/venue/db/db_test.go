package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"venuehub/internal/domain"
	"venuehub/internal/models"
	"venuehub/internal/venue/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Venue)(nil),
		(*models.Favorite)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func insertVenue(t *testing.T, bunDB *bun.DB, ownerID uuid.UUID, name string) models.Venue {
	v := models.Venue{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		PricePerDay: decimal.NewFromInt(1000),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&v).Exec(context.Background())
	assert.NoError(t, err)
	return v
}

func TestCreateFavoriteGated_EnforcesLimit(t *testing.T) {
	venueDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	userID := uuid.New()

	// fill up to the cap
	for i := 0; i < models.FavoriteLimit; i++ {
		v := insertVenue(t, bunDB, uuid.New(), fmt.Sprintf("Venue %d", i))
		err := venueDB.CreateFavoriteGated(models.Favorite{
			ID:        uuid.New(),
			UserID:    userID,
			VenueID:   v.ID,
			CreatedAt: time.Now(),
		}, models.FavoriteLimit)
		assert.NoError(t, err)
	}

	// the 16th is rejected
	extra := insertVenue(t, bunDB, uuid.New(), "One Too Many")
	err := venueDB.CreateFavoriteGated(models.Favorite{
		ID:      uuid.New(),
		UserID:  userID,
		VenueID: extra.ID,
	}, models.FavoriteLimit)

	var limitErr *domain.LimitError
	assert.ErrorAs(t, err, &limitErr)
	assert.Equal(t, models.FavoriteLimit, limitErr.Limit)

	// removal still works at the cap
	first, err := venueDB.GetFavorite(userID, mustFirstFavoriteVenue(t, venueDB, userID))
	assert.NoError(t, err)
	assert.NotNil(t, first)
	assert.NoError(t, venueDB.DeleteFavorite(first.ID))

	// and frees a slot
	err = venueDB.CreateFavoriteGated(models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		VenueID:   extra.ID,
		CreatedAt: time.Now(),
	}, models.FavoriteLimit)
	assert.NoError(t, err)
}

func mustFirstFavoriteVenue(t *testing.T, venueDB *db.DB, userID uuid.UUID) uuid.UUID {
	venues, err := venueDB.FavoriteVenues(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, venues)
	return venues[0].ID
}

func TestGetFavorite_NilWhenMissing(t *testing.T) {
	venueDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	got, err := venueDB.GetFavorite(uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFavoriteVenues(t *testing.T) {
	venueDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	userID := uuid.New()
	mine := insertVenue(t, bunDB, uuid.New(), "Bookmarked")
	insertVenue(t, bunDB, uuid.New(), "Not Bookmarked")

	err := venueDB.CreateFavoriteGated(models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		VenueID:   mine.ID,
		CreatedAt: time.Now(),
	}, models.FavoriteLimit)
	assert.NoError(t, err)

	venues, err := venueDB.FavoriteVenues(userID)
	assert.NoError(t, err)
	assert.Len(t, venues, 1)
	assert.Equal(t, mine.ID, venues[0].ID)
}

func TestVenuesForOwner(t *testing.T) {
	venueDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ownerID := uuid.New()
	insertVenue(t, bunDB, ownerID, "Mine")
	insertVenue(t, bunDB, uuid.New(), "Someone Else's")

	venues, err := venueDB.VenuesForOwner(ownerID)
	assert.NoError(t, err)
	assert.Len(t, venues, 1)
	assert.Equal(t, "Mine", venues[0].Name)
}
