package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-credit-service/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeDomainError maps domain errors to HTTP statuses and stable error
// codes clients can branch on.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQR):
		writeError(w, http.StatusBadRequest, "invalid_qr", "qr token is malformed or has a bad signature")
	case errors.Is(err, domain.ErrQRExpired):
		writeError(w, http.StatusGone, "qr_expired", err.Error())
	case errors.Is(err, domain.ErrQRAlreadyUsed):
		writeError(w, http.StatusConflict, "qr_already_used", "qr token was already redeemed")
	case errors.Is(err, domain.ErrInsufficientCredits):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_credits", err.Error())
	case errors.Is(err, domain.ErrInvalidUserPlan):
		writeError(w, http.StatusUnprocessableEntity, "invalid_user_plan", "credit plan is missing, inactive or expired")
	case errors.Is(err, domain.ErrUnauthorizedClinic):
		writeError(w, http.StatusForbidden, "unauthorized_clinic", "clinic is not authorized to redeem")
	case errors.Is(err, domain.ErrNotCancellable):
		writeError(w, http.StatusConflict, "not_cancellable", "transaction is not in a cancellable state")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "entity already exists")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "entity not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", "request is invalid")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// errorOutcome labels redemption failures for metrics.
func errorOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQR):
		return "invalid_qr"
	case errors.Is(err, domain.ErrQRExpired):
		return "expired"
	case errors.Is(err, domain.ErrQRAlreadyUsed):
		return "replayed"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, domain.ErrUnauthorizedClinic):
		return "unauthorized_clinic"
	case errors.Is(err, domain.ErrInvalidUserPlan):
		return "invalid_user_plan"
	default:
		return "error"
	}
}
