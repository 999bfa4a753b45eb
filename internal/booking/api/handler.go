package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/auth"
	"venuehub/internal/booking"
	"venuehub/internal/models"
	"venuehub/internal/utils"
)

type Handler struct {
	BookingService *booking.BookingService
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	created, err := h.BookingService.Create(userID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Booking created", created))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid booking id"))
		return
	}

	b, err := h.BookingService.Get(userID, auth.IsStaff(r.Context()), bookingID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", b))
}

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.BookingService.ListForRenter(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", bookings))
}

// VenueBookings lists bookings across every venue the caller owns.
func (h *Handler) VenueBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.BookingService.ListForOwner(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", bookings))
}

func (h *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Booking approved", h.BookingService.Approve)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Payment confirmed", h.BookingService.ConfirmPayment)
}

func (h *Handler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Booking rejected", h.BookingService.Reject)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Booking cancelled", h.BookingService.Cancel)
}

func (h *Handler) UploadSlip(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid booking id"))
		return
	}

	var req models.SlipUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	b, err := h.BookingService.UploadSlip(userID, bookingID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment slip uploaded", b))
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid booking id"))
		return
	}

	if err := h.BookingService.Delete(userID, bookingID); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking deleted", nil))
}

// transition factors out the owner/renter actions that take no body.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, message string,
	action func(actorID, bookingID uuid.UUID) (*models.Booking, error)) {

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid booking id"))
		return
	}

	b, err := action(userID, bookingID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(message, b))
}
