package activity_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"venuehub/internal/activity"
	"venuehub/internal/domain"
	"venuehub/internal/logger"
	"venuehub/internal/models"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetActivityByID(id uuid.UUID) (*models.Activity, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockDBLayer) GetActivityByBookingID(bookingID uuid.UUID) (*models.Activity, error) {
	args := m.Called(bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockDBLayer) CreateActivity(a models.Activity) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateActivity(a models.Activity, columns ...string) error {
	args := m.Called(a, columns)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteActivity(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) ActivitiesForOrganizer(organizerID uuid.UUID) ([]models.Activity, error) {
	args := m.Called(organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockDBLayer) PublishedActivities() ([]models.Activity, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockDBLayer) GetParticipantByID(id uuid.UUID) (*models.ActivityParticipant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityParticipant), args.Error(1)
}

func (m *MockDBLayer) GetParticipantByUser(activityID, userID uuid.UUID) (*models.ActivityParticipant, error) {
	args := m.Called(activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityParticipant), args.Error(1)
}

func (m *MockDBLayer) Participants(activityID uuid.UUID) ([]models.ActivityParticipant, error) {
	args := m.Called(activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityParticipant), args.Error(1)
}

func (m *MockDBLayer) CountJoined(activityID uuid.UUID) (int, error) {
	args := m.Called(activityID)
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) CreateParticipantGated(p models.ActivityParticipant, max *int) error {
	args := m.Called(p, max)
	return args.Error(0)
}

func (m *MockDBLayer) RejoinParticipantGated(p models.ActivityParticipant, max *int) error {
	args := m.Called(p, max)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateParticipant(p models.ActivityParticipant, columns ...string) error {
	args := m.Called(p, columns)
	return args.Error(0)
}

func (m *MockDBLayer) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockKafkaPublisher struct {
	mock.Mock
}

func (m *MockKafkaPublisher) PublishActivityEvent(eventType, activityID string, payload interface{}) error {
	args := m.Called(eventType, activityID, payload)
	return args.Error(0)
}

// Fixtures

var testNow = time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

func newService(db *MockDBLayer, kafka *MockKafkaPublisher) *activity.ActivityService {
	svc := activity.NewActivityService(db, kafka, logger.NewLogger(), time.UTC)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func completedBooking(renterID uuid.UUID) *models.Booking {
	return &models.Booking{
		ID:        uuid.New(),
		UserID:    renterID,
		VenueID:   uuid.New(),
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "21:00",
		Status:    models.BookingCompleted,
	}
}

func activityRequest(bookingID uuid.UUID) models.ActivityRequest {
	return models.ActivityRequest{
		BookingID: bookingID.String(),
		Name:      "Product launch",
		StartDate: "2024-02-02",
		EndDate:   "2024-02-03",
		StartTime: "10:00",
		EndTime:   "18:00",
	}
}

func publishedActivity(organizerID uuid.UUID, max *int) *models.Activity {
	return &models.Activity{
		ID:              uuid.New(),
		BookingID:       uuid.New(),
		OrganizerID:     organizerID,
		Name:            "Product launch",
		StartDate:       time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		EndTime:         "18:00",
		MaxParticipants: max,
		Status:          models.ActivityPublished,
	}
}

// Tests

func TestCreateActivity(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newService(mockDB, mockKafka)

	organizerID := uuid.New()
	booking := completedBooking(organizerID)

	mockDB.On("GetBookingByID", booking.ID).Return(booking, nil)
	mockDB.On("GetActivityByBookingID", booking.ID).Return(nil, sql.ErrNoRows)
	mockDB.On("CreateActivity", mock.MatchedBy(func(a models.Activity) bool {
		return a.BookingID == booking.ID && a.OrganizerID == organizerID && a.Status == models.ActivityDraft
	})).Return(nil)
	mockKafka.On("PublishActivityEvent", "activity_created", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.Create(organizerID, activityRequest(booking.ID))
	assert.NoError(t, err)
	assert.Equal(t, booking.ID, created.BookingID)
	mockDB.AssertExpectations(t)
}

func TestCreateActivity_BookingNotCompleted(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	organizerID := uuid.New()
	booking := completedBooking(organizerID)
	booking.Status = models.BookingApproved

	mockDB.On("GetBookingByID", booking.ID).Return(booking, nil)

	_, err := svc.Create(organizerID, activityRequest(booking.ID))

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "booking_id", validationErr.Field)
	mockDB.AssertNotCalled(t, "CreateActivity", mock.Anything)
}

func TestCreateActivity_BookingAlreadyHasOne(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	organizerID := uuid.New()
	booking := completedBooking(organizerID)

	mockDB.On("GetBookingByID", booking.ID).Return(booking, nil)
	mockDB.On("GetActivityByBookingID", booking.ID).Return(&models.Activity{ID: uuid.New()}, nil)

	_, err := svc.Create(organizerID, activityRequest(booking.ID))

	var conflictErr *domain.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateActivity_DatesOutsideBooking(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	organizerID := uuid.New()
	booking := completedBooking(organizerID)
	mockDB.On("GetBookingByID", booking.ID).Return(booking, nil)
	mockDB.On("GetActivityByBookingID", booking.ID).Return(nil, sql.ErrNoRows)

	req := activityRequest(booking.ID)
	req.EndDate = "2024-02-06"
	_, err := svc.Create(organizerID, req)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "end_date", validationErr.Field)
	// the error names the allowed range
	assert.Contains(t, validationErr.Error(), "2024-02-01")
	assert.Contains(t, validationErr.Error(), "2024-02-05")
}

func TestCreateActivity_WrongOrganizer(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	booking := completedBooking(uuid.New())
	mockDB.On("GetBookingByID", booking.ID).Return(booking, nil)

	_, err := svc.Create(uuid.New(), activityRequest(booking.ID))

	var permErr *domain.PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestRegisterMember_CreatesRow(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newService(mockDB, mockKafka)

	userID := uuid.New()
	act := publishedActivity(uuid.New(), nil)

	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("GetParticipantByUser", act.ID, userID).Return(nil, nil)
	mockDB.On("CreateParticipantGated", mock.MatchedBy(func(p models.ActivityParticipant) bool {
		return p.ActivityID == act.ID && p.UserID != nil && *p.UserID == userID && p.Status == models.ParticipantJoined
	}), (*int)(nil)).Return(nil)
	mockKafka.On("PublishActivityEvent", "participant_joined", act.ID.String(), mock.Anything).Return(nil)

	participant, err := svc.RegisterMember(userID, act.ID)
	assert.NoError(t, err)
	assert.False(t, participant.IsGuest())
	mockDB.AssertExpectations(t)
	mockKafka.AssertExpectations(t)
}

func TestRegisterMember_AlreadyJoinedIsIdempotent(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	userID := uuid.New()
	act := publishedActivity(uuid.New(), nil)
	existing := &models.ActivityParticipant{
		ID:         uuid.New(),
		ActivityID: act.ID,
		UserID:     &userID,
		Status:     models.ParticipantJoined,
	}

	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("GetParticipantByUser", act.ID, userID).Return(existing, nil)

	participant, err := svc.RegisterMember(userID, act.ID)
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, participant.ID)
	mockDB.AssertNotCalled(t, "CreateParticipantGated", mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "RejoinParticipantGated", mock.Anything, mock.Anything)
}

func TestRegisterMember_RejoinClearsManualFields(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newService(mockDB, mockKafka)

	userID := uuid.New()
	max := 10
	act := publishedActivity(uuid.New(), &max)
	cancelled := &models.ActivityParticipant{
		ID:             uuid.New(),
		ActivityID:     act.ID,
		UserID:         &userID,
		IsManual:       true,
		ManualFullName: "Old Name",
		Status:         models.ParticipantCancelled,
	}

	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("GetParticipantByUser", act.ID, userID).Return(cancelled, nil)
	mockDB.On("RejoinParticipantGated", mock.MatchedBy(func(p models.ActivityParticipant) bool {
		return p.ID == cancelled.ID && p.Status == models.ParticipantJoined &&
			!p.IsManual && p.ManualFullName == ""
	}), &max).Return(nil)
	mockKafka.On("PublishActivityEvent", "participant_joined", act.ID.String(), mock.Anything).Return(nil)

	participant, err := svc.RegisterMember(userID, act.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ParticipantJoined, participant.Status)
	mockDB.AssertExpectations(t)
	// a rejoin announces itself just like a fresh join
	mockKafka.AssertExpectations(t)
}

func TestRegisterMember_CapacityFull(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	userID := uuid.New()
	max := 10
	act := publishedActivity(uuid.New(), &max)

	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("GetParticipantByUser", act.ID, userID).Return(nil, nil)
	mockDB.On("CreateParticipantGated", mock.Anything, &max).
		Return(&domain.CapacityError{Max: 10, Current: 10})

	_, err := svc.RegisterMember(userID, act.ID)

	var capErr *domain.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, 10, capErr.Max)
}

func TestRegisterGuest(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newService(mockDB, mockKafka)

	act := publishedActivity(uuid.New(), nil)
	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("CreateParticipantGated", mock.MatchedBy(func(p models.ActivityParticipant) bool {
		return p.IsManual && p.UserID == nil && p.ManualFullName == "Walk In"
	}), (*int)(nil)).Return(nil)
	mockKafka.On("PublishActivityEvent", "participant_joined", act.ID.String(), mock.Anything).Return(nil)

	participant, err := svc.RegisterGuest(nil, act.ID, models.GuestRegistrationRequest{FullName: "Walk In"})
	assert.NoError(t, err)
	assert.True(t, participant.IsGuest())
	assert.Equal(t, "Walk In", participant.DisplayName())
	mockKafka.AssertExpectations(t)
}

func TestRegisterGuest_AuthenticatedCallerRedirected(t *testing.T) {
	svc := newService(new(MockDBLayer), new(MockKafkaPublisher))

	userID := uuid.New()
	_, err := svc.RegisterGuest(&userID, uuid.New(), models.GuestRegistrationRequest{FullName: "Walk In"})
	assert.ErrorIs(t, err, domain.ErrGuestJoinWhileAuthenticated)
}

func TestRegisterGuest_MissingName(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	_, err := svc.RegisterGuest(nil, uuid.New(), models.GuestRegistrationRequest{})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "full_name", validationErr.Field)
}

func TestRegisterMember_EndedActivity(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	act := publishedActivity(uuid.New(), nil)
	act.StartDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	act.EndTime = "12:00"

	mockDB.On("GetActivityByID", act.ID).Return(act, nil)

	_, err := svc.RegisterMember(uuid.New(), act.ID)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGet_DerivedProperties(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockKafkaPublisher))

	max := 2
	act := publishedActivity(uuid.New(), &max)
	mockDB.On("GetActivityByID", act.ID).Return(act, nil)
	mockDB.On("CountJoined", act.ID).Return(2, nil)

	detail, err := svc.Get(act.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, detail.CurrentParticipants)
	assert.True(t, detail.IsFull)
	assert.False(t, detail.HasEnded)
}
