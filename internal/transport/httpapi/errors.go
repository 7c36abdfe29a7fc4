package httpapi

import (
	"errors"
	"net/http"

	"blindmaze/internal/app"
	"blindmaze/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
)

// Error types returned in APIError.Type.
const (
	ErrTypeInvalidArgument   = "invalid_argument"
	ErrTypeUnauthenticated   = "unauthenticated"
	ErrTypeInvalidTicket     = "invalid_ticket"
	ErrTypeNoAttemptsLeft    = "no_attempts_left"
	ErrTypeInsufficientFunds = "insufficient_funds"
	ErrTypeAttemptNotOpen    = "attempt_not_open"
	ErrTypeConflict          = "conflict"
	ErrTypeInternal          = "internal"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var errBadRequest = errors.New("bad request")

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidChoice), errors.Is(err, domain.ErrAttemptLength):
		return http.StatusBadRequest, ErrTypeInvalidArgument
	case errors.Is(err, app.ErrUnknownPlayer):
		return http.StatusUnauthorized, ErrTypeUnauthenticated
	case errors.Is(err, app.ErrInvalidTicket), errors.Is(err, app.ErrTicketPlayerMismatch):
		return http.StatusForbidden, ErrTypeInvalidTicket
	case errors.Is(err, domain.ErrNoAttemptsLeft):
		return http.StatusConflict, ErrTypeNoAttemptsLeft
	case errors.Is(err, app.ErrInsufficientFunds):
		return http.StatusPaymentRequired, ErrTypeInsufficientFunds
	case errors.Is(err, app.ErrAttemptNotOpen):
		return http.StatusNotFound, ErrTypeAttemptNotOpen
	case errors.Is(err, domain.ErrAttemptInProgress), errors.Is(err, domain.ErrNotPlaying), errors.Is(err, domain.ErrChoicesSubmitted):
		return http.StatusConflict, ErrTypeConflict
	}
	return http.StatusInternalServerError, ErrTypeInternal
}

// writeError maps err onto a status and a structured body. Internal errors are
// logged and their detail withheld.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
		message = "internal error"
	}
	s.writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
