package venue

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"venuehub/internal/domain"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/utils"
)

type DBLayer interface {
	GetVenueByID(id uuid.UUID) (*models.Venue, error)
	CreateVenue(venue models.Venue) error
	UpdateVenue(venue models.Venue, columns ...string) error
	DeleteVenue(id uuid.UUID) error
	Venues() ([]models.Venue, error)
	VenuesForOwner(ownerID uuid.UUID) ([]models.Venue, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
	UpdateUser(user models.User, columns ...string) error
	GetFavorite(userID, venueID uuid.UUID) (*models.Favorite, error)
	CreateFavoriteGated(favorite models.Favorite, limit int) error
	DeleteFavorite(id uuid.UUID) error
	FavoriteVenues(userID uuid.UUID) ([]models.Venue, error)
}

// VenueService owns the venue catalog, owner payout details and the
// capped favorites bookmark list.
type VenueService struct {
	DB  DBLayer
	Log *logger.Logger

	Now func() time.Time
}

func NewVenueService(db DBLayer, log *logger.Logger) *VenueService {
	return &VenueService{DB: db, Log: log, Now: time.Now}
}

// ---------------- VENUES ----------------

// Create validates and stores a new venue. Coordinates are optional
// but must come as a pair.
func (s *VenueService) Create(ownerID uuid.UUID, req models.VenueRequest) (*models.Venue, error) {
	price, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	venue := models.Venue{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		Address:        req.Address,
		PricePerDay:    price,
		ExtraAmenities: req.ExtraAmenities,
		MaxCapacity:    req.MaxCapacity,
		Code:           req.Code,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DB.CreateVenue(venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.Log.Info("VENUE", fmt.Sprintf("Created venue %s (%q) for owner %s", venue.ID, venue.Name, ownerID))
	return &venue, nil
}

func (s *VenueService) Update(ownerID, venueID uuid.UUID, req models.VenueRequest) (*models.Venue, error) {
	price, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	venue, err := s.ownedVenue(ownerID, venueID)
	if err != nil {
		return nil, err
	}

	venue.Name = req.Name
	venue.Description = req.Description
	venue.Address = req.Address
	venue.PricePerDay = price
	venue.ExtraAmenities = req.ExtraAmenities
	venue.MaxCapacity = req.MaxCapacity
	venue.Code = req.Code
	venue.Latitude = req.Latitude
	venue.Longitude = req.Longitude
	venue.UpdatedAt = s.Now()

	err = s.DB.UpdateVenue(*venue,
		"name", "description", "address", "price_per_day", "extra_amenities",
		"max_capacity", "code", "latitude", "longitude", "updated_at")
	if err != nil {
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}

	s.Log.Info("VENUE", fmt.Sprintf("Updated venue %s", venueID))
	return venue, nil
}

func (s *VenueService) Delete(ownerID, venueID uuid.UUID) error {
	if _, err := s.ownedVenue(ownerID, venueID); err != nil {
		return err
	}
	if err := s.DB.DeleteVenue(venueID); err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	s.Log.Info("VENUE", fmt.Sprintf("Deleted venue %s", venueID))
	return nil
}

func (s *VenueService) Get(venueID uuid.UUID) (*models.Venue, error) {
	venue, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "venue", ID: venueID.String()}
		}
		return nil, fmt.Errorf("failed to load venue %s: %w", venueID, err)
	}
	return venue, nil
}

func (s *VenueService) List() ([]models.Venue, error) {
	return s.DB.Venues()
}

func (s *VenueService) ListForOwner(ownerID uuid.UUID) ([]models.Venue, error) {
	return s.DB.VenuesForOwner(ownerID)
}

// ---------------- PAYOUT INFO ----------------

// UpdatePayoutInfo stores the owner's bank details. Either a QR or a
// bank name plus account number must be present; without one of those
// the owner cannot approve bookings.
func (s *VenueService) UpdatePayoutInfo(userID uuid.UUID, req models.PayoutInfoRequest) (*models.User, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}
	if req.BankQR == "" && (req.BankName == "" || req.BankAccountNumber == "") {
		return nil, &domain.ValidationError{
			Field:   "bank_account_number",
			Message: "provide a bank QR or both bank name and account number",
		}
	}

	user, err := s.DB.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "user", ID: userID.String()}
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	user.BankName = req.BankName
	user.BankAccountNumber = req.BankAccountNumber
	user.BankQR = req.BankQR
	if err := s.DB.UpdateUser(*user, "bank_name", "bank_account_number", "bank_qr"); err != nil {
		return nil, fmt.Errorf("failed to update payout info: %w", err)
	}

	s.Log.Info("VENUE", fmt.Sprintf("Updated payout info for user %s", userID))
	return user, nil
}

// ---------------- FAVORITES ----------------

// ToggleFavorite bookmarks or un-bookmarks a venue. Removal is always
// allowed; adding is blocked at the per-user cap.
func (s *VenueService) ToggleFavorite(userID, venueID uuid.UUID) (favorited bool, err error) {
	if _, err := s.Get(venueID); err != nil {
		return false, err
	}

	existing, err := s.DB.GetFavorite(userID, venueID)
	if err != nil {
		return false, fmt.Errorf("failed to look up favorite: %w", err)
	}
	if existing != nil {
		if err := s.DB.DeleteFavorite(existing.ID); err != nil {
			return false, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return false, nil
	}

	favorite := models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		VenueID:   venueID,
		CreatedAt: s.Now(),
	}
	if err := s.DB.CreateFavoriteGated(favorite, models.FavoriteLimit); err != nil {
		return false, err
	}
	return true, nil
}

func (s *VenueService) Favorites(userID uuid.UUID) ([]models.Venue, error) {
	return s.DB.FavoriteVenues(userID)
}

// ---------------- HELPERS ----------------

func (s *VenueService) validate(req models.VenueRequest) (decimal.Decimal, error) {
	if err := models.Validate.Struct(req); err != nil {
		return decimal.Zero, utils.ValidationFailure(err)
	}

	price, err := decimal.NewFromString(req.PricePerDay)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: "price_per_day", Message: "must be a decimal number"}
	}
	if price.IsNegative() {
		return decimal.Zero, &domain.ValidationError{Field: "price_per_day", Message: "must not be negative"}
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return decimal.Zero, &domain.ValidationError{Field: "longitude", Message: "latitude and longitude must be provided together"}
	}
	return price, nil
}

func (s *VenueService) ownedVenue(ownerID, venueID uuid.UUID) (*models.Venue, error) {
	venue, err := s.Get(venueID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID != ownerID {
		return nil, &domain.PermissionError{Message: "only the venue's owner can do that"}
	}
	return venue, nil
}
