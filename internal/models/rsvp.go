package models

import (
	"fmt"
	"strings"
	"time"
)

// Attendance is the answer a guest gave on their RSVP
type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// ParseAttendance accepts "yes"/"no" in any case
func ParseAttendance(s string) (Attendance, error) {
	switch Attendance(strings.ToLower(strings.TrimSpace(s))) {
	case AttendanceYes:
		return AttendanceYes, nil
	case AttendanceNo:
		return AttendanceNo, nil
	}
	return "", fmt.Errorf("%w: attendance must be yes or no, got %q", ErrInvalidRSVP, s)
}

// RSVP is a stored response to an invitation. It is linked to a Guest only
// through the free-text GuestName.
type RSVP struct {
	ID               string     `json:"id" dynamodbav:"id"`
	GuestName        string     `json:"guest_name" dynamodbav:"guest_name"`
	Attendance       Attendance `json:"attendance" dynamodbav:"attendance"`
	GuestCount       int        `json:"guest_count" dynamodbav:"guest_count"`
	ActualGuestCount *int       `json:"actual_guest_count,omitempty" dynamodbav:"actual_guest_count,omitempty"`
	Message          string     `json:"message,omitempty" dynamodbav:"message,omitempty"`
	CreatedAt        time.Time  `json:"created_at" dynamodbav:"created_at"`
	IPAddress        string     `json:"ip_address,omitempty" dynamodbav:"ip_address,omitempty"`
	UserAgent        string     `json:"user_agent,omitempty" dynamodbav:"user_agent,omitempty"`
}

// Validate checks the required fields of an RSVP before it is stored
func (r RSVP) Validate() error {
	if strings.TrimSpace(r.GuestName) == "" {
		return fmt.Errorf("%w: guest name is required", ErrInvalidRSVP)
	}
	if r.Attendance != AttendanceYes && r.Attendance != AttendanceNo {
		return fmt.Errorf("%w: attendance must be yes or no", ErrInvalidRSVP)
	}
	if r.GuestCount < 0 {
		return fmt.Errorf("%w: negative guest count", ErrInvalidRSVP)
	}
	if r.ActualGuestCount != nil && *r.ActualGuestCount > r.GuestCount {
		return fmt.Errorf("%w: %d of %d", ErrSeatsExceeded, *r.ActualGuestCount, r.GuestCount)
	}
	return nil
}

// SeatsUsed returns how many seats the RSVP occupies. Declines use none;
// acceptances use the actual count when one was recorded.
func (r RSVP) SeatsUsed() int {
	if r.Attendance != AttendanceYes {
		return 0
	}
	if r.ActualGuestCount != nil {
		return *r.ActualGuestCount
	}
	return r.GuestCount
}

// RSVPStats summarizes the RSVP table for the organizer
type RSVPStats struct {
	Total         int `json:"total"`
	Attending     int `json:"attending"`
	NotAttending  int `json:"notAttending"`
	TotalGuests   int `json:"totalGuests"`
	AssignedSeats int `json:"assignedSeats"`
	Today         int `json:"today"`
}

// ComputeStats aggregates rsvps. Today counts rows created on the same
// calendar day as now, in now's location.
func ComputeStats(rsvps []RSVP, now time.Time) RSVPStats {
	var stats RSVPStats
	y, m, d := now.Date()
	for _, r := range rsvps {
		stats.Total++
		switch r.Attendance {
		case AttendanceYes:
			stats.Attending++
		case AttendanceNo:
			stats.NotAttending++
		}
		stats.TotalGuests += r.SeatsUsed()
		stats.AssignedSeats += r.GuestCount

		ry, rm, rd := r.CreatedAt.In(now.Location()).Date()
		if ry == y && rm == m && rd == d {
			stats.Today++
		}
	}
	return stats
}
