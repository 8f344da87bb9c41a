package utils

import (
	"encoding/json"
	"net/http"

	"flare_server/models"
)

// RespondJSON writes v as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondServiceError maps a structured service rejection onto an HTTP status
// and writes it as the body.
func RespondServiceError(w http.ResponseWriter, serr *models.ServiceError) {
	status := http.StatusBadRequest
	switch serr.Code {
	case models.ErrCodeInvalidSession:
		status = http.StatusUnauthorized
	case models.ErrCodeAgeGateRequired, models.ErrCodeAnonymousForbidden,
		models.ErrCodeUnauthorized, models.ErrCodeUserBlocked,
		models.ErrCodePresenceNotAllowed, models.ErrCodeMatchingNotAllowed:
		status = http.StatusForbidden
	case models.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case models.ErrCodeChatExpired:
		status = http.StatusGone
	}
	RespondJSON(w, status, serr)
}
