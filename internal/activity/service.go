package activity

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
	GetActivityByID(id uuid.UUID) (*models.Activity, error)
	GetActivityByBookingID(bookingID uuid.UUID) (*models.Activity, error)
	CreateActivity(activity models.Activity) error
	UpdateActivity(activity models.Activity, columns ...string) error
	DeleteActivity(id uuid.UUID) error
	ActivitiesForOrganizer(organizerID uuid.UUID) ([]models.Activity, error)
	PublishedActivities() ([]models.Activity, error)
	GetParticipantByID(id uuid.UUID) (*models.ActivityParticipant, error)
	GetParticipantByUser(activityID, userID uuid.UUID) (*models.ActivityParticipant, error)
	Participants(activityID uuid.UUID) ([]models.ActivityParticipant, error)
	CountJoined(activityID uuid.UUID) (int, error)
	CreateParticipantGated(participant models.ActivityParticipant, max *int) error
	RejoinParticipantGated(participant models.ActivityParticipant, max *int) error
	UpdateParticipant(participant models.ActivityParticipant, columns ...string) error
	GetBookingByID(id uuid.UUID) (*models.Booking, error)
}

type KafkaPublisher interface {
	PublishActivityEvent(eventType, activityID string, payload interface{}) error
}

// ActivityService owns activity scheduling and the participant
// registry. An activity exists only inside a completed booking's date
// span and a booking can own at most one.
type ActivityService struct {
	DB    DBLayer
	Kafka KafkaPublisher
	Log   *logger.Logger

	Now      func() time.Time
	Location *time.Location
}

func NewActivityService(db DBLayer, kafka KafkaPublisher, log *logger.Logger, loc *time.Location) *ActivityService {
	return &ActivityService{
		DB:       db,
		Kafka:    kafka,
		Log:      log,
		Now:      time.Now,
		Location: loc,
	}
}

// ActivityDetail is an activity plus its derived registration state.
type ActivityDetail struct {
	models.Activity
	CurrentParticipants int  `json:"current_participants"`
	IsFull              bool `json:"is_full"`
	HasEnded            bool `json:"has_ended"`
}

// ---------------- SCHEDULING ----------------

// Create schedules an activity inside a completed booking. The booking
// must belong to the organizer, have no activity yet, and fully contain
// the activity's date range.
func (s *ActivityService) Create(organizerID uuid.UUID, req models.ActivityRequest) (*models.Activity, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "booking_id", Message: "must be a valid booking id"}
	}

	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "booking", ID: bookingID.String()}
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if booking.UserID != organizerID {
		return nil, &domain.PermissionError{Message: "only the booking's renter can organize an activity"}
	}
	if booking.Status != models.BookingCompleted {
		return nil, &domain.ValidationError{Field: "booking_id", Message: "booking must be completed before scheduling an activity"}
	}

	existing, err := s.DB.GetActivityByBookingID(bookingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for existing activity: %w", err)
	}
	if existing != nil {
		return nil, &domain.ConflictError{Message: "booking already has an activity"}
	}

	activity := models.Activity{
		ID:          uuid.New(),
		BookingID:   bookingID,
		OrganizerID: organizerID,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      models.ActivityDraft,
	}
	if req.Status != "" {
		activity.Status = models.ActivityStatus(req.Status)
	}
	if req.MaxParticipants != nil {
		max := *req.MaxParticipants
		activity.MaxParticipants = &max
	}

	if err := s.applyDates(&activity, req, booking); err != nil {
		return nil, err
	}

	now := s.now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	if err := s.DB.CreateActivity(activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.Log.LogActivity("CREATE", activity.ID.String(), fmt.Sprintf("booking %s, %q", bookingID, activity.Name))
	s.publish("activity_created", activity)
	return &activity, nil
}

// Update reschedules or edits an activity, re-validating the date
// nesting against its own booking.
func (s *ActivityService) Update(organizerID, activityID uuid.UUID, req models.ActivityRequest) (*models.Activity, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	activity, err := s.ownedActivity(organizerID, activityID)
	if err != nil {
		return nil, err
	}

	booking, err := s.DB.GetBookingByID(activity.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", activity.BookingID, err)
	}

	activity.Name = req.Name
	activity.Description = req.Description
	activity.StartTime = req.StartTime
	activity.EndTime = req.EndTime
	activity.MaxParticipants = nil
	if req.MaxParticipants != nil {
		max := *req.MaxParticipants
		activity.MaxParticipants = &max
	}
	if req.Status != "" {
		activity.Status = models.ActivityStatus(req.Status)
	}

	if err := s.applyDates(activity, req, booking); err != nil {
		return nil, err
	}

	activity.UpdatedAt = s.now()
	err = s.DB.UpdateActivity(*activity,
		"name", "description", "start_date", "end_date", "start_time", "end_time",
		"max_participants", "status", "updated_at")
	if err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.Log.LogActivity("UPDATE", activity.ID.String(), fmt.Sprintf("%q", activity.Name))
	s.publish("activity_updated", *activity)
	return activity, nil
}

func (s *ActivityService) Delete(organizerID, activityID uuid.UUID) error {
	activity, err := s.ownedActivity(organizerID, activityID)
	if err != nil {
		return err
	}

	if err := s.DB.DeleteActivity(activityID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	s.Log.LogActivity("DELETE", activityID.String(), fmt.Sprintf("%q", activity.Name))
	s.publish("activity_deleted", *activity)
	return nil
}

// Get returns the activity with its derived registration state.
func (s *ActivityService) Get(activityID uuid.UUID) (*ActivityDetail, error) {
	activity, err := s.DB.GetActivityByID(activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "activity", ID: activityID.String()}
		}
		return nil, fmt.Errorf("failed to load activity %s: %w", activityID, err)
	}

	joined, err := s.DB.CountJoined(activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	return &ActivityDetail{
		Activity:            *activity,
		CurrentParticipants: joined,
		IsFull:              activity.IsFull(joined),
		HasEnded:            activity.HasEnded(s.now()),
	}, nil
}

func (s *ActivityService) ListPublished() ([]models.Activity, error) {
	return s.DB.PublishedActivities()
}

func (s *ActivityService) ListForOrganizer(organizerID uuid.UUID) ([]models.Activity, error) {
	return s.DB.ActivitiesForOrganizer(organizerID)
}

// ---------------- REGISTRATION ----------------

// RegisterMember joins an authenticated user to an activity. The join
// is an idempotent upsert: an already-joined row is returned as-is and
// a cancelled row is flipped back to joined with manual fields cleared.
func (s *ActivityService) RegisterMember(userID, activityID uuid.UUID) (*models.ActivityParticipant, error) {
	activity, err := s.joinableActivity(activityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.DB.GetParticipantByUser(activityID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}

	if existing != nil {
		if existing.Status == models.ParticipantJoined {
			return existing, nil
		}
		existing.Status = models.ParticipantJoined
		existing.IsManual = false
		existing.ManualFullName = ""
		existing.ManualEmail = ""
		existing.ManualPhone = ""
		existing.ManualNote = ""
		existing.JoinedAt = s.now()
		if err := s.DB.RejoinParticipantGated(*existing, activity.MaxParticipants); err != nil {
			return nil, err
		}
		s.Log.LogActivity("REJOIN", activityID.String(), fmt.Sprintf("user %s", userID))
		s.publish("participant_joined", *activity)
		return existing, nil
	}

	uid := userID
	participant := models.ActivityParticipant{
		ID:         uuid.New(),
		ActivityID: activityID,
		UserID:     &uid,
		Status:     models.ParticipantJoined,
		JoinedAt:   s.now(),
	}
	if err := s.DB.CreateParticipantGated(participant, activity.MaxParticipants); err != nil {
		return nil, err
	}

	s.Log.LogActivity("JOIN", activityID.String(), fmt.Sprintf("user %s", userID))
	s.publish("participant_joined", *activity)
	return &participant, nil
}

// RegisterGuest records a walk-in with manually entered contact
// details. Authenticated callers are steered to member registration so
// their row stays tied to their account.
func (s *ActivityService) RegisterGuest(authenticatedUser *uuid.UUID, activityID uuid.UUID, req models.GuestRegistrationRequest) (*models.ActivityParticipant, error) {
	if authenticatedUser != nil {
		return nil, domain.ErrGuestJoinWhileAuthenticated
	}
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	activity, err := s.joinableActivity(activityID)
	if err != nil {
		return nil, err
	}

	participant := models.ActivityParticipant{
		ID:             uuid.New(),
		ActivityID:     activityID,
		IsManual:       true,
		ManualFullName: req.FullName,
		ManualEmail:    req.Email,
		ManualPhone:    req.Phone,
		ManualNote:     req.Note,
		Status:         models.ParticipantJoined,
		JoinedAt:       s.now(),
	}
	if err := s.DB.CreateParticipantGated(participant, activity.MaxParticipants); err != nil {
		return nil, err
	}

	s.Log.LogActivity("GUEST_JOIN", activityID.String(), fmt.Sprintf("guest %q", req.FullName))
	s.publish("participant_joined", *activity)
	return &participant, nil
}

// CancelRegistration marks a member's own registration cancelled.
func (s *ActivityService) CancelRegistration(userID, activityID uuid.UUID) (*models.ActivityParticipant, error) {
	existing, err := s.DB.GetParticipantByUser(activityID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if existing == nil || existing.Status != models.ParticipantJoined {
		return nil, &domain.NotFoundError{Entity: "registration", ID: activityID.String()}
	}

	existing.Status = models.ParticipantCancelled
	if err := s.DB.UpdateParticipant(*existing, "status"); err != nil {
		return nil, fmt.Errorf("failed to cancel registration: %w", err)
	}

	s.Log.LogActivity("LEAVE", activityID.String(), fmt.Sprintf("user %s", userID))
	return existing, nil
}

// Participants lists an activity's registrations for its organizer.
func (s *ActivityService) ParticipantsFor(organizerID, activityID uuid.UUID) ([]models.ActivityParticipant, error) {
	if _, err := s.ownedActivity(organizerID, activityID); err != nil {
		return nil, err
	}
	return s.DB.Participants(activityID)
}

// CheckIn marks a joined participant as attended. Organizer-only.
func (s *ActivityService) CheckIn(organizerID, activityID, participantID uuid.UUID) (*models.ActivityParticipant, error) {
	if _, err := s.ownedActivity(organizerID, activityID); err != nil {
		return nil, err
	}

	participant, err := s.DB.GetParticipantByID(participantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "participant", ID: participantID.String()}
		}
		return nil, fmt.Errorf("failed to load participant %s: %w", participantID, err)
	}
	if participant.ActivityID != activityID {
		return nil, &domain.NotFoundError{Entity: "participant", ID: participantID.String()}
	}
	if participant.Status != models.ParticipantJoined {
		return nil, &domain.ValidationError{Field: "participant_id", Message: "only joined participants can be checked in"}
	}

	now := s.now()
	participant.Attended = true
	participant.AttendedAt = &now
	if err := s.DB.UpdateParticipant(*participant, "attended", "attended_at"); err != nil {
		return nil, fmt.Errorf("failed to check in participant: %w", err)
	}

	s.Log.LogActivity("CHECK_IN", activityID.String(), fmt.Sprintf("participant %s", participantID))
	return participant, nil
}

// ---------------- HELPERS ----------------

func (s *ActivityService) now() time.Time {
	return s.Now().In(s.Location)
}

// applyDates parses and validates the requested dates against the
// parent booking: end defaults to start, end must not precede start,
// same-day windows need end_time after start_time, and the whole range
// must nest inside the booking's. Violations name the allowed range.
func (s *ActivityService) applyDates(activity *models.Activity, req models.ActivityRequest, booking *models.Booking) error {
	startDate, _ := time.ParseInLocation(models.DateLayout, req.StartDate, s.Location)
	activity.StartDate = startDate
	activity.EndDate = nil
	if req.EndDate != "" {
		endDate, _ := time.ParseInLocation(models.DateLayout, req.EndDate, s.Location)
		if endDate.Before(startDate) {
			return &domain.ValidationError{Field: "end_date", Message: "must not be before start_date"}
		}
		activity.EndDate = &endDate
	}

	if models.DateOnly(activity.EffectiveEndDate()).Equal(models.DateOnly(startDate)) && req.EndTime != "" {
		startMin, _ := models.ParseClock(req.StartTime)
		endMin, _ := models.ParseClock(req.EndTime)
		if endMin <= startMin {
			return &domain.ValidationError{Field: "end_time", Message: "must be after start_time on a single-day activity"}
		}
	}

	allowed := models.DateRange{Start: booking.StartDate, End: booking.EndDate}
	rangeMsg := fmt.Sprintf("must be within the booking's dates %s to %s",
		booking.StartDate.Format(models.DateLayout), booking.EndDate.Format(models.DateLayout))
	if models.DateOnly(startDate).Before(models.DateOnly(allowed.Start)) {
		return &domain.ValidationError{Field: "start_date", Message: rangeMsg}
	}
	if models.DateOnly(activity.EffectiveEndDate()).After(models.DateOnly(allowed.End)) {
		return &domain.ValidationError{Field: "end_date", Message: rangeMsg}
	}
	return nil
}

func (s *ActivityService) ownedActivity(organizerID, activityID uuid.UUID) (*models.Activity, error) {
	activity, err := s.DB.GetActivityByID(activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "activity", ID: activityID.String()}
		}
		return nil, fmt.Errorf("failed to load activity %s: %w", activityID, err)
	}
	if activity.OrganizerID != organizerID {
		return nil, &domain.PermissionError{Message: "only the activity's organizer can do that"}
	}
	return activity, nil
}

// joinableActivity loads an activity and rejects registration against
// one that is not published or has already ended.
func (s *ActivityService) joinableActivity(activityID uuid.UUID) (*models.Activity, error) {
	activity, err := s.DB.GetActivityByID(activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "activity", ID: activityID.String()}
		}
		return nil, fmt.Errorf("failed to load activity %s: %w", activityID, err)
	}
	if activity.Status != models.ActivityPublished {
		return nil, &domain.ValidationError{Field: "activity_id", Message: "registration is only open for published activities"}
	}
	if activity.HasEnded(s.now()) {
		return nil, &domain.ValidationError{Field: "activity_id", Message: "activity has already ended"}
	}
	return activity, nil
}

func (s *ActivityService) publish(eventType string, activity models.Activity) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishActivityEvent(eventType, activity.ID.String(), activity); err != nil {
		s.Log.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", eventType, activity.ID, err))
	}
}
