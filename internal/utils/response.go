package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"venuehub/internal/domain"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(code, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     error,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// RespondError maps a domain failure onto an HTTP status plus a stable
// machine-readable code. Unknown errors become a 500 without leaking
// internals.
func RespondError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		permissionErr *domain.PermissionError
		stateErr      *domain.StateError
		conflictErr   *domain.ConflictError
		capacityErr   *domain.CapacityError
		limitErr      *domain.LimitError
		amountErr     *domain.AmountMismatchError
		notFoundErr   *domain.NotFoundError
	)

	switch {
	case errors.As(err, &notFoundErr):
		WriteJSON(w, http.StatusNotFound, ErrorResponse("not_found", notFoundErr.Error()))
	case errors.As(err, &permissionErr):
		WriteJSON(w, http.StatusForbidden, ErrorResponse("permission_denied", permissionErr.Error()))
	case errors.As(err, &stateErr):
		WriteJSON(w, http.StatusConflict, ErrorResponse("invalid_state", stateErr.Error()))
	case errors.As(err, &conflictErr):
		WriteJSON(w, http.StatusConflict, ErrorResponse("conflict", conflictErr.Error()))
	case errors.As(err, &capacityErr):
		WriteJSON(w, http.StatusConflict, ErrorResponse("capacity_full", capacityErr.Error()))
	case errors.As(err, &limitErr):
		WriteJSON(w, http.StatusConflict, ErrorResponse("limit_reached", limitErr.Error()))
	case errors.As(err, &amountErr):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse("amount_mismatch", amountErr.Error()))
	case errors.Is(err, domain.ErrMissingPayoutInfo):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse("missing_payout_info", err.Error()))
	case errors.Is(err, domain.ErrMissingSlip):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse("missing_slip", err.Error()))
	case errors.Is(err, domain.ErrGuestJoinWhileAuthenticated):
		WriteJSON(w, http.StatusConflict, ErrorResponse("use_member_registration", err.Error()))
	case errors.As(err, &validationErr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse("validation_failed", validationErr.Error()))
	default:
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse("internal_error", "internal server error"))
	}
}
