package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/activity"
	"venuehub/internal/auth"
	"venuehub/internal/models"
	"venuehub/internal/utils"
)

type Handler struct {
	ActivityService *activity.ActivityService
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	created, err := h.ActivityService.Create(userID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Activity created", created))
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	var req models.ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	updated, err := h.ActivityService.Update(userID, activityID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Activity updated", updated))
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	if err := h.ActivityService.Delete(userID, activityID); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Activity deleted", nil))
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	detail, err := h.ActivityService.Get(activityID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", detail))
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	activities, err := h.ActivityService.ListPublished()
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", activities))
}

func (h *Handler) MyActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activities, err := h.ActivityService.ListForOrganizer(userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", activities))
}

func (h *Handler) JoinActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	participant, err := h.ActivityService.RegisterMember(userID, activityID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Joined activity", participant))
}

// RegisterGuest sits outside the auth middleware. A bearer token, if
// one is present anyway, redirects the caller to member registration.
func (h *Handler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	var req models.GuestRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	participant, err := h.ActivityService.RegisterGuest(auth.OptionalUserID(r), activityID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Guest registered", participant))
}

func (h *Handler) LeaveActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	participant, err := h.ActivityService.CancelRegistration(userID, activityID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Registration cancelled", participant))
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}

	participants, err := h.ActivityService.ParticipantsFor(userID, activityID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", participants))
}

func (h *Handler) CheckInParticipant(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "activityId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid activity id"))
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantId"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid_id", "Invalid participant id"))
		return
	}

	participant, err := h.ActivityService.CheckIn(userID, activityID, participantID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Participant checked in", participant))
}
