package booking

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
	GetBookingByID(id uuid.UUID) (*models.Booking, error)
	CreateBooking(booking models.Booking) error
	UpdateBooking(booking models.Booking, columns ...string) error
	DeleteBooking(id uuid.UUID) error
	ActiveBookingsForVenue(venueID uuid.UUID, exclude ...uuid.UUID) ([]models.Booking, error)
	BookingsForRenter(userID uuid.UUID) ([]models.Booking, error)
	BookingsForOwner(ownerID uuid.UUID) ([]models.Booking, error)
	BookingHasActivity(bookingID uuid.UUID) (bool, error)
	GetVenueByID(id uuid.UUID) (*models.Venue, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
}

type RedisLock interface {
	LockVenue(venueID, token string) (bool, error)
	UnlockVenue(venueID, token string) error
}

type KafkaPublisher interface {
	PublishBookingEvent(eventType, bookingID string, payload interface{}) error
}

// BookingService owns the booking lifecycle. Every transition is a
// guarded read-modify-write; guards fail with a typed domain error and
// nothing is retried here.
type BookingService struct {
	DB    DBLayer
	Redis RedisLock
	Kafka KafkaPublisher
	Log   *logger.Logger

	// Now and Location make the temporal guards deterministic in tests.
	// Location is the venue-local zone used to interpret dates.
	Now      func() time.Time
	Location *time.Location
}

func NewBookingService(db DBLayer, redis RedisLock, kafka KafkaPublisher, log *logger.Logger, loc *time.Location) *BookingService {
	return &BookingService{
		DB:       db,
		Redis:    redis,
		Kafka:    kafka,
		Log:      log,
		Now:      time.Now,
		Location: loc,
	}
}

func (s *BookingService) now() time.Time {
	return s.Now().In(s.Location)
}

// ---------------- LIFECYCLE ----------------

// Create validates the requested interval, checks availability under
// the per-venue lock and inserts a pending booking with its computed
// total price.
func (s *BookingService) Create(renterID uuid.UUID, req models.BookingRequest) (*models.Booking, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "venue_id", Message: "must be a valid venue id"}
	}

	startDate, _ := time.ParseInLocation(models.DateLayout, req.StartDate, s.Location)
	endDate, _ := time.ParseInLocation(models.DateLayout, req.EndDate, s.Location)

	if endDate.Before(startDate) {
		return nil, &domain.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}
	startMin, _ := models.ParseClock(req.StartTime)
	endMin, _ := models.ParseClock(req.EndTime)
	// The clock window only has to be ordered on a single-day booking;
	// a multi-day booking may legitimately end earlier in the day than
	// it starts.
	if startDate.Equal(endDate) && endMin <= startMin {
		return nil, &domain.ValidationError{Field: "end_time", Message: "must be after start_time on a same-day booking"}
	}

	now := s.now()
	today := models.DateOnly(now)
	if startDate.Before(today) {
		return nil, &domain.ValidationError{Field: "start_date", Message: "must not be in the past"}
	}
	nowMin, _ := models.ParseClock(models.ClockOf(now))
	if endDate.Equal(today) && endMin <= nowMin {
		return nil, &domain.ValidationError{Field: "end_time", Message: "must be later than the current time"}
	}
	if startDate.Equal(today) && startMin <= nowMin {
		return nil, &domain.ValidationError{Field: "start_time", Message: "must be later than the current time"}
	}

	venue, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		return nil, notFoundOr("venue", venueID, err)
	}
	if venue.OwnerID == renterID {
		return nil, &domain.PermissionError{Message: "owners cannot book their own venue"}
	}

	booking := models.Booking{
		ID:        uuid.New(),
		UserID:    renterID,
		VenueID:   venueID,
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
		Status:    models.BookingPending,
		CreatedAt: now,
	}
	booking.TotalPrice = venue.PricePerDay.Mul(decimal.NewFromInt(booking.Days()))

	// The lock closes the gap between the overlap check and the insert:
	// a concurrent request for the same venue fails to lock and is
	// surfaced as a conflict for the caller to retry.
	token := uuid.NewString()
	ok, err := s.Redis.LockVenue(venueID.String(), token)
	if err != nil {
		return nil, fmt.Errorf("venue lock error: %w", err)
	}
	if !ok {
		return nil, &domain.ConflictError{Message: "venue is being booked by another request, try again"}
	}
	defer func() {
		if err := s.Redis.UnlockVenue(venueID.String(), token); err != nil {
			s.Log.Error("BOOKING", fmt.Sprintf("Failed to unlock venue %s: %v", venueID, err))
		}
	}()

	existing, err := s.DB.ActiveBookingsForVenue(venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue bookings: %w", err)
	}
	if HasConflict(existing, booking.Window()) {
		return nil, &domain.ConflictError{Message: "venue is already booked for the requested dates and times"}
	}

	if err := s.DB.CreateBooking(booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.Log.LogBooking("CREATE", booking.ID.String(), fmt.Sprintf("venue %s, %s to %s, total %s",
		venueID, req.StartDate, req.EndDate, booking.TotalPrice.String()))
	s.publish("booking_created", booking)

	return &booking, nil
}

// Approve moves a pending booking to approved. Only the venue owner
// may approve, and only once payout details are on file so the renter
// has somewhere to send the money.
func (s *BookingService) Approve(ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, venue, err := s.bookingWithVenue(bookingID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID != ownerID {
		return nil, &domain.PermissionError{Message: "only the venue owner can approve a booking"}
	}
	if booking.Status != models.BookingPending {
		return nil, &domain.StateError{Status: string(booking.Status), Action: "approve"}
	}

	owner, err := s.DB.GetUserByID(venue.OwnerID)
	if err != nil {
		return nil, notFoundOr("user", venue.OwnerID, err)
	}
	if !owner.HasPayoutInfo() {
		return nil, domain.ErrMissingPayoutInfo
	}

	now := s.now()
	booking.Status = models.BookingApproved
	booking.ApprovedAt = &now
	if err := s.DB.UpdateBooking(*booking, "status", "approved_at"); err != nil {
		return nil, fmt.Errorf("failed to approve booking: %w", err)
	}

	s.Log.LogBooking("APPROVE", booking.ID.String(), "approved by owner")
	s.publish("booking_approved", *booking)
	return booking, nil
}

// UploadSlip attaches the renter's proof of payment to an approved
// booking. The claimed amount must equal the total price exactly;
// anything else fails without touching the booking.
func (s *BookingService) UploadSlip(renterID, bookingID uuid.UUID, req models.SlipUploadRequest) (*models.Booking, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, &domain.ValidationError{Field: "amount", Message: "must be a decimal number"}
	}
	if amount.IsNegative() {
		return nil, &domain.ValidationError{Field: "amount", Message: "must not be negative"}
	}

	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, notFoundOr("booking", bookingID, err)
	}
	if booking.UserID != renterID {
		return nil, &domain.PermissionError{Message: "only the booking's renter can upload a payment slip"}
	}
	if booking.Status != models.BookingApproved {
		return nil, &domain.StateError{Status: string(booking.Status), Action: "upload a payment slip for"}
	}
	if !amount.Equal(booking.TotalPrice) {
		return nil, &domain.AmountMismatchError{Required: booking.TotalPrice, Supplied: amount}
	}

	now := s.now()
	booking.PaymentSlip = req.SlipRef
	booking.AmountPaid = &amount
	booking.SlipUploadedAt = &now
	booking.Status = models.BookingAwaitingConfirmation
	err = s.DB.UpdateBooking(*booking, "payment_slip", "amount_paid", "slip_uploaded_at", "status")
	if err != nil {
		return nil, fmt.Errorf("failed to store payment slip: %w", err)
	}

	s.Log.LogBooking("UPLOAD_SLIP", booking.ID.String(), fmt.Sprintf("amount %s", amount.String()))
	s.publish("booking_slip_uploaded", *booking)
	return booking, nil
}

// ConfirmPayment completes the booking after the owner verifies the
// slip against their account.
func (s *BookingService) ConfirmPayment(ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, venue, err := s.bookingWithVenue(bookingID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID != ownerID {
		return nil, &domain.PermissionError{Message: "only the venue owner can confirm a payment"}
	}
	if booking.Status != models.BookingAwaitingConfirmation {
		return nil, &domain.StateError{Status: string(booking.Status), Action: "confirm payment for"}
	}
	if booking.PaymentSlip == "" || booking.AmountPaid == nil {
		return nil, domain.ErrMissingSlip
	}
	if !booking.AmountPaid.Equal(booking.TotalPrice) {
		return nil, &domain.AmountMismatchError{Required: booking.TotalPrice, Supplied: *booking.AmountPaid}
	}

	now := s.now()
	booking.Status = models.BookingCompleted
	booking.CompletedAt = &now
	if err := s.DB.UpdateBooking(*booking, "status", "completed_at"); err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}

	s.Log.LogBooking("COMPLETE", booking.ID.String(), "payment confirmed by owner")
	s.publish("booking_completed", *booking)
	return booking, nil
}

// Reject lets the owner turn down a booking before or after the slip
// arrives.
func (s *BookingService) Reject(ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, venue, err := s.bookingWithVenue(bookingID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID != ownerID {
		return nil, &domain.PermissionError{Message: "only the venue owner can reject a booking"}
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingAwaitingConfirmation {
		return nil, &domain.StateError{Status: string(booking.Status), Action: "reject"}
	}

	booking.Status = models.BookingRejected
	if err := s.DB.UpdateBooking(*booking, "status"); err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}

	s.Log.LogBooking("REJECT", booking.ID.String(), "rejected by owner")
	s.publish("booking_rejected", *booking)
	return booking, nil
}

// Cancel lets the renter back out of any booking that has not already
// finished or been cancelled.
func (s *BookingService) Cancel(renterID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, notFoundOr("booking", bookingID, err)
	}
	if booking.UserID != renterID {
		return nil, &domain.PermissionError{Message: "only the booking's renter can cancel it"}
	}
	if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled {
		return nil, &domain.StateError{Status: string(booking.Status), Action: "cancel"}
	}

	booking.Status = models.BookingCancelled
	if err := s.DB.UpdateBooking(*booking, "status"); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.Log.LogBooking("CANCEL", booking.ID.String(), "cancelled by renter")
	s.publish("booking_cancelled", *booking)
	return booking, nil
}

// Delete removes a booking record entirely. Renter-only, and refused
// while an activity still hangs off the booking.
func (s *BookingService) Delete(renterID, bookingID uuid.UUID) error {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return notFoundOr("booking", bookingID, err)
	}
	if booking.UserID != renterID {
		return &domain.PermissionError{Message: "only the booking's renter can delete it"}
	}

	hasActivity, err := s.DB.BookingHasActivity(bookingID)
	if err != nil {
		return fmt.Errorf("failed to check for activity: %w", err)
	}
	if hasActivity {
		return &domain.ConflictError{Message: "booking has an activity and cannot be deleted"}
	}

	if err := s.DB.DeleteBooking(bookingID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.Log.LogBooking("DELETE", bookingID.String(), "deleted by renter")
	s.publish("booking_deleted", *booking)
	return nil
}

// ---------------- QUERIES ----------------

// Get returns a booking to its renter, the venue owner or staff.
func (s *BookingService) Get(actorID uuid.UUID, isStaff bool, bookingID uuid.UUID) (*models.Booking, error) {
	booking, venue, err := s.bookingWithVenue(bookingID)
	if err != nil {
		return nil, err
	}
	if !isStaff && booking.UserID != actorID && venue.OwnerID != actorID {
		return nil, &domain.PermissionError{Message: "not allowed to view this booking"}
	}
	return booking, nil
}

func (s *BookingService) ListForRenter(userID uuid.UUID) ([]models.Booking, error) {
	return s.DB.BookingsForRenter(userID)
}

func (s *BookingService) ListForOwner(ownerID uuid.UUID) ([]models.Booking, error) {
	return s.DB.BookingsForOwner(ownerID)
}

// ---------------- HELPERS ----------------

func (s *BookingService) bookingWithVenue(bookingID uuid.UUID) (*models.Booking, *models.Venue, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, nil, notFoundOr("booking", bookingID, err)
	}
	venue, err := s.DB.GetVenueByID(booking.VenueID)
	if err != nil {
		return nil, nil, notFoundOr("venue", booking.VenueID, err)
	}
	return booking, venue, nil
}

func (s *BookingService) publish(eventType string, booking models.Booking) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishBookingEvent(eventType, booking.ID.String(), booking); err != nil {
		s.Log.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", eventType, booking.ID, err))
	}
}

func notFoundOr(entity string, id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id.String()}
	}
	return fmt.Errorf("failed to load %s %s: %w", entity, id, err)
}
