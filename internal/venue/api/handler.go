package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/auth"
	"venuehub/internal/models"
	"venuehub/internal/utils"
	"venuehub/internal/venue"
)

type Handler struct {
	VenueService *venue.VenueService
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.VenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	created, err := h.VenueService.Create(userID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Venue created", created))
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
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

	var req models.VenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	updated, err := h.VenueService.Update(userID, venueID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venue updated", updated))
}

func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
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

	if err := h.VenueService.Delete(userID, venueID); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venue deleted", nil))
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid venue id"))
		return
	}

	v, err := h.VenueService.Get(venueID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", v))
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.VenueService.List()
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", venues))
}

func (h *Handler) MyVenues(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	venues, err := h.VenueService.ListForOwner(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", venues))
}

func (h *Handler) UpdatePayoutInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.PayoutInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	user, err := h.VenueService.UpdatePayoutInfo(userID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payout info updated", user))
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
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

	favorited, err := h.VenueService.ToggleFavorite(userID, venueID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", map[string]bool{"favorited": favorited}))
}

func (h *Handler) MyFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	venues, err := h.VenueService.Favorites(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", venues))
}
