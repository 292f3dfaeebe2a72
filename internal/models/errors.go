package models

import "errors"

var (
	ErrGuestNotFound = errors.New("guest not found")
	ErrRSVPNotFound  = errors.New("rsvp not found")
	ErrInvalidGuest  = errors.New("invalid guest")
	ErrInvalidRSVP   = errors.New("invalid rsvp")
	ErrSeatsExceeded = errors.New("actual seats exceed assigned seats")
)
