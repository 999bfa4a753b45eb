package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/auth"
	"venuehub/internal/models"
	"venuehub/internal/review"
	"venuehub/internal/utils"
)

type Handler struct {
	ReviewService *review.ReviewService
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	venueID, err := uuid.Parse(chi.URLParam(r, "venueId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid venue id"))
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	saved, err := h.ReviewService.Submit(userID, venueID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Review saved", saved))
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid venue id"))
		return
	}

	reviews, err := h.ReviewService.ListForVenue(venueID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", reviews))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid review id"))
		return
	}

	if err := h.ReviewService.Delete(userID, auth.IsStaff(r.Context()), reviewID); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Review deleted", nil))
}
