// Package followup finds invited guests with no RSVP and sends them
// reminders or invitations over WhatsApp.
package followup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/guests"
	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/reconcile"
	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/whatsapp"
)

// ErrNotConnected is returned by bulk sends when no WhatsApp session is
// available.
var ErrNotConnected = errors.New("whatsapp is not connected; use links instead")

// Messenger delivers a text message to a phone number
type Messenger interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Mode selects which message a bulk operation sends
type Mode string

const (
	ModeInvitation Mode = "initial"
	ModeReminder   Mode = "followup"
)

// ParseMode maps "initial"/"followup" (the default) to a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeReminder:
		return ModeReminder, nil
	case ModeInvitation:
		return ModeInvitation, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeInvitation, ModeReminder)
}

type Config struct {
	Event       whatsapp.Event
	CountryCode string
	// Interval is the pause between two outgoing messages
	Interval time.Duration
}

type Service struct {
	guests    storage.GuestRepository
	list      *guests.Service
	rsvps     storage.RSVPStore
	messenger Messenger
	cfg       Config
	log       zerolog.Logger
	wait      func(ctx context.Context, d time.Duration) error
}

// NewService creates the service. messenger may be nil when only links
// are needed.
func NewService(guestRepo storage.GuestRepository, rsvps storage.RSVPStore, messenger Messenger, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		guests:    guestRepo,
		list:      guests.NewService(guestRepo, logger),
		rsvps:     rsvps,
		messenger: messenger,
		cfg:       cfg,
		log:       logger.With().Str("component", "followup").Logger(),
		wait:      sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Pending returns invited guests that have no matching RSVP, in guest-list
// order.
func (s *Service) Pending(ctx context.Context) ([]models.Guest, error) {
	all, err := s.guests.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}
	rsvps, err := s.rsvps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	pending := reconcile.FindGuestsNeedingFollowup(all, rsvps)

	if s.log.GetLevel() <= zerolog.DebugLevel {
		for _, g := range all {
			if !g.InvitationSent {
				continue
			}
			if r, ok := reconcile.MatchRSVP(g, rsvps); ok {
				s.log.Debug().Str("guest", g.Name).Str("rsvp", r.GuestName).Msg("RSVP found")
			} else {
				s.log.Debug().Str("guest", g.Name).Msg("No RSVP found")
			}
		}
	}
	s.log.Info().
		Int("guests", len(all)).
		Int("rsvps", len(rsvps)).
		Int("pending", len(pending)).
		Msg("Follow-up list computed")

	return pending, nil
}

// Uninvited returns guests whose invitation has not been sent
func (s *Service) Uninvited(ctx context.Context) ([]models.Guest, error) {
	all, err := s.guests.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}
	uninvited := make([]models.Guest, 0)
	for _, g := range all {
		if !g.InvitationSent {
			uninvited = append(uninvited, g)
		}
	}
	return uninvited, nil
}

// Targets returns the guests a bulk operation in mode addresses
func (s *Service) Targets(ctx context.Context, mode Mode) ([]models.Guest, error) {
	if mode == ModeInvitation {
		return s.Uninvited(ctx)
	}
	return s.Pending(ctx)
}

// Message renders the text mode sends to g
func (s *Service) Message(mode Mode, g models.Guest) string {
	if mode == ModeInvitation {
		return whatsapp.InvitationMessage(s.cfg.Event, g)
	}
	return whatsapp.ReminderMessage(s.cfg.Event, g)
}

// Link is a pre-filled wa.me link for one guest
type Link struct {
	GuestID     string `json:"guestId"`
	Guest       string `json:"guest"`
	Phone       string `json:"phone"`
	CleanPhone  string `json:"cleanPhone"`
	WhatsAppURL string `json:"whatsappUrl"`
	Message     string `json:"message"`
}

// Links builds wa.me links for the guests mode targets, for sending by hand
func (s *Service) Links(ctx context.Context, mode Mode) ([]Link, error) {
	targets, err := s.Targets(ctx, mode)
	if err != nil {
		return nil, err
	}

	links := make([]Link, 0, len(targets))
	for _, g := range targets {
		msg := s.Message(mode, g)
		links = append(links, Link{
			GuestID:     g.ID,
			Guest:       g.Name,
			Phone:       g.Phone,
			CleanPhone:  whatsapp.NormalizePhoneNumber(g.Phone, s.cfg.CountryCode),
			WhatsAppURL: whatsapp.Link(g.Phone, s.cfg.CountryCode, msg),
			Message:     msg,
		})
	}
	return links, nil
}

// SendResult is the outcome for one recipient
type SendResult struct {
	GuestID string `json:"guestId"`
	Guest   string `json:"guest"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// BulkResult summarizes a bulk send
type BulkResult struct {
	Sent        []SendResult `json:"sent"`
	Failed      []SendResult `json:"failed"`
	Total       int          `json:"total"`
	SuccessRate string       `json:"successRate"`
}

func (r *BulkResult) finish() {
	r.Total = len(r.Sent) + len(r.Failed)
	rate := 0
	if r.Total > 0 {
		rate = int(math.Round(float64(len(r.Sent)) / float64(r.Total) * 100))
	}
	r.SuccessRate = fmt.Sprintf("%d%%", rate)
}

// SendReminders messages every pending guest
func (s *Service) SendReminders(ctx context.Context) (BulkResult, error) {
	targets, err := s.Pending(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	return s.send(ctx, ModeReminder, targets)
}

// SendInvitations messages every uninvited guest and marks the ones that
// were reached as invited.
func (s *Service) SendInvitations(ctx context.Context) (BulkResult, error) {
	targets, err := s.Uninvited(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	result, sendErr := s.send(ctx, ModeInvitation, targets)
	if len(result.Sent) > 0 {
		if err := s.markSent(ctx, result.Sent); err != nil {
			return result, err
		}
	}
	return result, sendErr
}

// send delivers one message per target, pausing Interval between them.
// Failed recipients are logged and reported; cancellation stops the run
// and returns what was done so far.
func (s *Service) send(ctx context.Context, mode Mode, targets []models.Guest) (BulkResult, error) {
	result := BulkResult{Sent: []SendResult{}, Failed: []SendResult{}}
	if s.messenger == nil {
		result.finish()
		return result, ErrNotConnected
	}

	s.log.Info().Str("mode", string(mode)).Int("count", len(targets)).Msg("Starting bulk send")

	for i, g := range targets {
		if i > 0 {
			if err := s.wait(ctx, s.cfg.Interval); err != nil {
				result.finish()
				return result, err
			}
		}

		res := SendResult{GuestID: g.ID, Guest: g.Name, Phone: g.Phone}
		if err := s.messenger.SendMessage(ctx, g.Phone, s.Message(mode, g)); err != nil {
			s.log.Error().Err(err).Str("guest", g.Name).Msgf("Send failed (%d/%d)", i+1, len(targets))
			res.Status = "failed"
			res.Error = err.Error()
			result.Failed = append(result.Failed, res)
			continue
		}

		s.log.Info().Str("guest", g.Name).Msgf("Sent (%d/%d)", i+1, len(targets))
		res.Status = "sent"
		result.Sent = append(result.Sent, res)
	}

	result.finish()
	s.log.Info().Int("sent", len(result.Sent)).Int("failed", len(result.Failed)).Msg("Bulk send complete")
	return result, nil
}

// markSent records delivered invitations. It runs on a context detached
// from cancellation: messages already sent must not be sent again.
func (s *Service) markSent(ctx context.Context, sent []SendResult) error {
	ids := make([]string, 0, len(sent))
	for _, r := range sent {
		ids = append(ids, r.GuestID)
	}
	return s.list.MarkSent(context.WithoutCancel(ctx), ids...)
}

// Invite methods
const (
	MethodWhatsApp = "whatsapp"
	MethodWebLink  = "web-link"
)

// InviteRequest names one guest to invite: a guest-list ID, or a name and
// phone number for someone not looked up by ID.
type InviteRequest struct {
	GuestID   string `json:"guestId"`
	GuestName string `json:"guestName"`
	Phone     string `json:"phoneNumber"`
	SeatCount int    `json:"seatCount"`
}

// InviteResult reports how a single invitation went out. When it could not
// be sent, WhatsAppURL carries a wa.me link for sending it by hand.
type InviteResult struct {
	Success     bool   `json:"success"`
	Method      string `json:"method"`
	Message     string `json:"message"`
	Guest       string `json:"guest"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Invite sends one invitation. A guest reached over WhatsApp is marked as
// invited; otherwise the result falls back to a wa.me link.
func (s *Service) Invite(ctx context.Context, req InviteRequest) (InviteResult, error) {
	g, err := s.inviteTarget(ctx, req)
	if err != nil {
		return InviteResult{}, err
	}

	msg := whatsapp.InvitationMessage(s.cfg.Event, g)
	res := InviteResult{Guest: g.Name}

	if s.messenger == nil {
		res.Method = MethodWebLink
		res.Message = "WhatsApp Web link generated"
		res.WhatsAppURL = whatsapp.Link(g.Phone, s.cfg.CountryCode, msg)
		return res, nil
	}

	if err := s.messenger.SendMessage(ctx, g.Phone, msg); err != nil {
		s.log.Warn().Err(err).Str("guest", g.Name).Msg("Invitation failed, falling back to link")
		res.Method = MethodWebLink
		res.Message = "Could not send over WhatsApp; open the link to send it manually"
		res.WhatsAppURL = whatsapp.Link(g.Phone, s.cfg.CountryCode, msg)
		res.Error = err.Error()
		return res, nil
	}

	s.log.Info().Str("guest", g.Name).Msg("Invitation sent")
	res.Success = true
	res.Method = MethodWhatsApp
	res.Message = "WhatsApp invitation sent"

	detached := context.WithoutCancel(ctx)
	if req.GuestID != "" {
		err = s.list.MarkSent(detached, req.GuestID)
	} else {
		_, err = s.list.MarkSentByName(detached, g.Name)
	}
	return res, err
}

func (s *Service) inviteTarget(ctx context.Context, req InviteRequest) (models.Guest, error) {
	if req.GuestID == "" {
		g := models.Guest{Name: req.GuestName, Phone: req.Phone, SeatCount: req.SeatCount}
		if g.SeatCount <= 0 {
			g.SeatCount = models.DefaultSeatCount
		}
		return g, g.Validate()
	}

	all, err := s.guests.Load(ctx)
	if err != nil {
		return models.Guest{}, fmt.Errorf("load guests: %w", err)
	}
	for _, g := range all {
		if g.ID == req.GuestID {
			return g, nil
		}
	}
	return models.Guest{}, models.ErrGuestNotFound
}
