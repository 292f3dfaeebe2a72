// Package rsvp accepts guest RSVP submissions and reports on them.
package rsvp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/whatsapp"
)

// Messenger delivers a text message to a phone number
type Messenger interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Submission is an RSVP as posted by the public form. Seat counts arrive as
// text and are parsed leniently.
type Submission struct {
	GuestName        string `json:"guestName"`
	Attendance       string `json:"attendance"`
	GuestCount       string `json:"guestCount"`
	ActualGuestCount string `json:"actualGuestCount"`
	Message          string `json:"message"`
	IPAddress        string `json:"-"`
	UserAgent        string `json:"-"`
}

type Config struct {
	// CouplePhone receives a WhatsApp notification per RSVP when set
	CouplePhone string
	Schema      storage.Schema
}

type Service struct {
	store     storage.RSVPStore
	messenger Messenger
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates the service. messenger may be nil, in which case the
// couple is not notified.
func NewService(store storage.RSVPStore, messenger Messenger, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		messenger: messenger,
		cfg:       cfg,
		log:       logger.With().Str("component", "rsvp").Logger(),
		now:       time.Now,
	}
}

// Schema returns the RSVP table schema the service was configured with
func (s *Service) Schema() storage.Schema {
	return s.cfg.Schema
}

// Submit validates and stores a submission, then notifies the couple.
// Notification failures are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.RSVP, error) {
	r, err := s.build(sub)
	if err != nil {
		return models.RSVP{}, err
	}

	stored, err := s.store.Insert(ctx, r)
	if err != nil {
		return models.RSVP{}, fmt.Errorf("store rsvp: %w", err)
	}

	s.log.Info().
		Str("id", stored.ID).
		Str("guest", stored.GuestName).
		Str("attendance", string(stored.Attendance)).
		Int("assigned_seats", stored.GuestCount).
		Int("seats", stored.SeatsUsed()).
		Msg("RSVP saved")

	s.notifyCouple(ctx, stored)
	return stored, nil
}

// Record stores an RSVP that did not come through the web form, such as a
// WhatsApp reply.
func (s *Service) Record(ctx context.Context, r models.RSVP) (models.RSVP, error) {
	if !s.cfg.Schema.HasActualGuestCount() {
		r.ActualGuestCount = nil
	}
	if err := r.Validate(); err != nil {
		return models.RSVP{}, err
	}
	stored, err := s.store.Insert(ctx, r)
	if err != nil {
		return models.RSVP{}, fmt.Errorf("store rsvp: %w", err)
	}
	s.log.Info().Str("id", stored.ID).Str("guest", stored.GuestName).Str("attendance", string(stored.Attendance)).Msg("RSVP recorded")
	s.notifyCouple(ctx, stored)
	return stored, nil
}

func (s *Service) build(sub Submission) (models.RSVP, error) {
	name := strings.TrimSpace(sub.GuestName)
	if name == "" || strings.TrimSpace(sub.Attendance) == "" {
		return models.RSVP{}, fmt.Errorf("%w: guest name and attendance are required", models.ErrInvalidRSVP)
	}
	attendance, err := models.ParseAttendance(sub.Attendance)
	if err != nil {
		return models.RSVP{}, err
	}

	assigned := parseSeats(sub.GuestCount, models.DefaultSeatCount)
	actual := 0
	if attendance == models.AttendanceYes {
		actual = parseSeats(sub.ActualGuestCount, assigned)
	}
	if actual > assigned {
		return models.RSVP{}, fmt.Errorf("%w: cannot use %d seats when %d are assigned", models.ErrSeatsExceeded, actual, assigned)
	}

	r := models.RSVP{
		GuestName:  name,
		Attendance: attendance,
		GuestCount: assigned,
		Message:    strings.TrimSpace(sub.Message),
		IPAddress:  sub.IPAddress,
		UserAgent:  sub.UserAgent,
	}
	if s.cfg.Schema.HasActualGuestCount() {
		r.ActualGuestCount = &actual
	}
	return r, r.Validate()
}

// parseSeats reads a positive integer, falling back to def
func parseSeats(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Service) notifyCouple(ctx context.Context, r models.RSVP) {
	if s.messenger == nil || s.cfg.CouplePhone == "" {
		return
	}
	msg := whatsapp.CoupleNotification(r, s.cfg.Schema.HasActualGuestCount(), s.now())
	if err := s.messenger.SendMessage(ctx, s.cfg.CouplePhone, msg); err != nil {
		s.log.Error().Err(err).Str("guest", r.GuestName).Msg("Couple notification failed")
		return
	}
	s.log.Debug().Str("guest", r.GuestName).Msg("Couple notified")
}

// List returns all RSVPs, newest first
func (s *Service) List(ctx context.Context) ([]models.RSVP, error) {
	return s.store.List(ctx)
}

// Stats summarizes the RSVP table as of now
func (s *Service) Stats(ctx context.Context) (models.RSVPStats, error) {
	rsvps, err := s.store.List(ctx)
	if err != nil {
		return models.RSVPStats{}, fmt.Errorf("list rsvps: %w", err)
	}
	return models.ComputeStats(rsvps, s.now()), nil
}

// PurgeAll deletes every RSVP
func (s *Service) PurgeAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete rsvps: %w", err)
	}
	s.log.Warn().Msg("All RSVPs deleted")
	return nil
}

var testMarkers = []string{"test", "prueba", "demo"}

// IsTestData reports whether r looks like a test entry: its name mentions
// test/prueba/demo, or it was created on the same day as now.
func IsTestData(r models.RSVP, now time.Time) bool {
	name := strings.ToLower(r.GuestName)
	for _, marker := range testMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	y, m, d := now.Date()
	ry, rm, rd := r.CreatedAt.In(now.Location()).Date()
	return ry == y && rm == m && rd == d
}

// PurgeTestData deletes the RSVPs IsTestData flags and returns how many
func (s *Service) PurgeTestData(ctx context.Context) (int, error) {
	rsvps, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rsvps: %w", err)
	}

	now := s.now()
	deleted := 0
	for _, r := range rsvps {
		if !IsTestData(r, now) {
			continue
		}
		if err := s.store.Delete(ctx, r.ID); err != nil {
			return deleted, fmt.Errorf("delete rsvp %s: %w", r.ID, err)
		}
		deleted++
	}
	s.log.Info().Int("deleted", deleted).Msg("Test RSVPs purged")
	return deleted, nil
}
