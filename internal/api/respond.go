package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/models"
)

// maxBodyBytes caps request bodies, guest imports included
const maxBodyBytes = 1 << 20

var errInternal = errors.New("internal server error")

type errorResponse struct {
	Error string `json:"error"`
}

// badRequest marks an error caused by malformed input
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, models.ErrInvalidGuest),
		errors.Is(err, models.ErrInvalidRSVP),
		errors.Is(err, models.ErrSeatsExceeded):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrGuestNotFound), errors.Is(err, models.ErrRSVPNotFound):
		return http.StatusNotFound
	case errors.Is(err, followup.ErrNotConnected):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status code. Server errors are logged and their
// details kept out of the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		msg = errInternal.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest{err: errors.New("invalid JSON body: " + err.Error())}
	}
	return nil
}
