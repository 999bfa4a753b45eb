package review_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"venuehub/internal/domain"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/review"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetReview(venueID, userID uuid.UUID) (*models.Review, error) {
	args := m.Called(venueID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockDBLayer) GetReviewByID(id uuid.UUID) (*models.Review, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockDBLayer) CreateReview(r models.Review) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateReview(r models.Review, columns ...string) error {
	args := m.Called(r, columns)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteReview(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) ReviewsForVenue(venueID uuid.UUID) ([]models.Review, error) {
	args := m.Called(venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockDBLayer) HasCompletedBooking(userID, venueID uuid.UUID) (bool, error) {
	args := m.Called(userID, venueID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) GetVenueByID(id uuid.UUID) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func newService(db *MockDBLayer) *review.ReviewService {
	return review.NewReviewService(db, logger.NewLogger())
}

// Tests

func TestSubmit_CreatesReview(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	userID := uuid.New()
	v := &models.Venue{ID: uuid.New(), OwnerID: uuid.New()}

	mockDB.On("GetVenueByID", v.ID).Return(v, nil)
	mockDB.On("HasCompletedBooking", userID, v.ID).Return(true, nil)
	mockDB.On("GetReview", v.ID, userID).Return(nil, nil)
	mockDB.On("CreateReview", mock.MatchedBy(func(r models.Review) bool {
		return r.VenueID == v.ID && r.UserID == userID && r.Rating == 4
	})).Return(nil)

	created, err := svc.Submit(userID, v.ID, models.ReviewRequest{Rating: 4, Comment: "Great space"})
	assert.NoError(t, err)
	assert.Equal(t, 4, created.Rating)
	mockDB.AssertExpectations(t)
}

func TestSubmit_RepeatBecomesUpdate(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	userID := uuid.New()
	v := &models.Venue{ID: uuid.New(), OwnerID: uuid.New()}
	existing := &models.Review{ID: uuid.New(), VenueID: v.ID, UserID: userID, Rating: 2, Comment: "Meh"}

	mockDB.On("GetVenueByID", v.ID).Return(v, nil)
	mockDB.On("HasCompletedBooking", userID, v.ID).Return(true, nil)
	mockDB.On("GetReview", v.ID, userID).Return(existing, nil)
	mockDB.On("UpdateReview", mock.MatchedBy(func(r models.Review) bool {
		return r.ID == existing.ID && r.Rating == 5
	}), []string{"rating", "comment", "updated_at"}).Return(nil)

	updated, err := svc.Submit(userID, v.ID, models.ReviewRequest{Rating: 5, Comment: "Changed my mind"})
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, 5, updated.Rating)
	mockDB.AssertNotCalled(t, "CreateReview", mock.Anything)
}

func TestSubmit_OwnerCannotReviewOwnVenue(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	ownerID := uuid.New()
	v := &models.Venue{ID: uuid.New(), OwnerID: ownerID}
	mockDB.On("GetVenueByID", v.ID).Return(v, nil)

	_, err := svc.Submit(ownerID, v.ID, models.ReviewRequest{Rating: 5, Comment: "Lovely"})

	var permErr *domain.PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestSubmit_RequiresCompletedBooking(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	userID := uuid.New()
	v := &models.Venue{ID: uuid.New(), OwnerID: uuid.New()}
	mockDB.On("GetVenueByID", v.ID).Return(v, nil)
	mockDB.On("HasCompletedBooking", userID, v.ID).Return(false, nil)

	_, err := svc.Submit(userID, v.ID, models.ReviewRequest{Rating: 5, Comment: "Lovely"})

	var permErr *domain.PermissionError
	assert.ErrorAs(t, err, &permErr)
	mockDB.AssertNotCalled(t, "CreateReview", mock.Anything)
}

func TestSubmit_RatingOutOfRange(t *testing.T) {
	svc := newService(new(MockDBLayer))

	_, err := svc.Submit(uuid.New(), uuid.New(), models.ReviewRequest{Rating: 6, Comment: "Too good"})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "rating", validationErr.Field)
}

func TestDelete_AuthorOnly(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	authorID := uuid.New()
	existing := &models.Review{ID: uuid.New(), UserID: authorID}
	mockDB.On("GetReviewByID", existing.ID).Return(existing, nil)

	err := svc.Delete(uuid.New(), false, existing.ID)
	var permErr *domain.PermissionError
	assert.ErrorAs(t, err, &permErr)

	// staff may remove any review
	mockDB.On("DeleteReview", existing.ID).Return(nil)
	assert.NoError(t, svc.Delete(uuid.New(), true, existing.ID))
}
