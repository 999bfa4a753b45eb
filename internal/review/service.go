package review

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venuehub/internal/domain"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/utils"
)

type DBLayer interface {
	GetReview(venueID, userID uuid.UUID) (*models.Review, error)
	GetReviewByID(id uuid.UUID) (*models.Review, error)
	CreateReview(review models.Review) error
	UpdateReview(review models.Review, columns ...string) error
	DeleteReview(id uuid.UUID) error
	ReviewsForVenue(venueID uuid.UUID) ([]models.Review, error)
	HasCompletedBooking(userID, venueID uuid.UUID) (bool, error)
	GetVenueByID(id uuid.UUID) (*models.Venue, error)
}

// ReviewService gates who may rate a venue: not its owner, and only
// after a completed booking. One review per (venue, user); a repeat
// submit becomes an update instead of a duplicate error.
type ReviewService struct {
	DB  DBLayer
	Log *logger.Logger

	Now func() time.Time
}

func NewReviewService(db DBLayer, log *logger.Logger) *ReviewService {
	return &ReviewService{DB: db, Log: log, Now: time.Now}
}

// Submit creates the caller's review of a venue, or updates it when
// one already exists.
func (s *ReviewService) Submit(userID, venueID uuid.UUID, req models.ReviewRequest) (*models.Review, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	venue, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "venue", ID: venueID.String()}
		}
		return nil, fmt.Errorf("failed to load venue %s: %w", venueID, err)
	}
	if venue.OwnerID == userID {
		return nil, &domain.PermissionError{Message: "owners cannot review their own venue"}
	}

	completed, err := s.DB.HasCompletedBooking(userID, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking history: %w", err)
	}
	if !completed {
		return nil, &domain.PermissionError{Message: "a completed booking of this venue is required to review it"}
	}

	now := s.Now()

	existing, err := s.DB.GetReview(venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up review: %w", err)
	}
	if existing != nil {
		existing.Rating = req.Rating
		existing.Comment = req.Comment
		existing.UpdatedAt = now
		if err := s.DB.UpdateReview(*existing, "rating", "comment", "updated_at"); err != nil {
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
		s.Log.Info("REVIEW", fmt.Sprintf("Updated review %s for venue %s", existing.ID, venueID))
		return existing, nil
	}

	review := models.Review{
		ID:        uuid.New(),
		VenueID:   venueID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.CreateReview(review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.Log.Info("REVIEW", fmt.Sprintf("Created review %s for venue %s", review.ID, venueID))
	return &review, nil
}

func (s *ReviewService) ListForVenue(venueID uuid.UUID) ([]models.Review, error) {
	return s.DB.ReviewsForVenue(venueID)
}

// Delete removes the caller's own review. Staff may remove any review.
func (s *ReviewService) Delete(actorID uuid.UUID, isStaff bool, reviewID uuid.UUID) error {
	review, err := s.DB.GetReviewByID(reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "review", ID: reviewID.String()}
		}
		return fmt.Errorf("failed to load review %s: %w", reviewID, err)
	}
	if !isStaff && review.UserID != actorID {
		return &domain.PermissionError{Message: "only the review's author can delete it"}
	}

	if err := s.DB.DeleteReview(reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.Log.Info("REVIEW", fmt.Sprintf("Deleted review %s", reviewID))
	return nil
}
