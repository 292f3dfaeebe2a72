package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSeatCount is used when a guest or submission does not say how many
// seats were reserved.
const DefaultSeatCount = 2

// Guest represents a wedding guest on the organizer's list
type Guest struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	SeatCount      int       `json:"seatCount"`
	InvitationSent bool      `json:"invitationSent"`
	InvitedAt      time.Time `json:"invitedAt,omitzero"`
}

// Validate checks the fields every stored guest must carry
func (g Guest) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGuest)
	}
	if strings.TrimSpace(g.Phone) == "" {
		return fmt.Errorf("%w: phone is required for %q", ErrInvalidGuest, g.Name)
	}
	if g.SeatCount < 0 {
		return fmt.Errorf("%w: negative seat count for %q", ErrInvalidGuest, g.Name)
	}
	return nil
}
