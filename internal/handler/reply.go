// Package handler reacts to guests answering their invitation on WhatsApp.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/reconcile"
	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/whatsapp"
)

// Messenger delivers a text message to a phone number
type Messenger interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Recorder stores an RSVP that arrived outside the web form
type Recorder interface {
	Record(ctx context.Context, r models.RSVP) (models.RSVP, error)
}

type Config struct {
	Event       whatsapp.Event
	CountryCode string
}

type ReplyHandler struct {
	guests    storage.GuestRepository
	recorder  Recorder
	messenger Messenger
	cfg       Config
	log       zerolog.Logger
}

func NewReplyHandler(guests storage.GuestRepository, recorder Recorder, messenger Messenger, cfg Config, logger zerolog.Logger) *ReplyHandler {
	return &ReplyHandler{
		guests:    guests,
		recorder:  recorder,
		messenger: messenger,
		cfg:       cfg,
		log:       logger.With().Str("component", "handler").Logger(),
	}
}

// Matched against the normalized reply as whole words or word sequences
var (
	// affirmations say yes with a negation in them
	affirmations = []string{
		"no faltaremos", "no faltare", "no fallaremos", "no me lo perderia", "no nos lo perderiamos",
		"sin falta", "wouldnt miss it", "would not miss it", "no doubt",
	}
	declinePhrases = []string{
		"no", "nope", "decline", "declining", "not coming", "cant come", "wont come", "cant make it",
		"no podre", "no podremos", "no podemos", "no asistire", "no asistiremos", "lamentablemente",
	}
	acceptPhrases = []string{
		"yes", "yep", "yeah", "accept", "accepting", "attending", "coming", "will come", "will be there",
		"si", "claro", "confirmo", "confirmamos", "asistire", "asistiremos", "ahi estaremos", "alli estaremos",
	}
)

// Classify reads a free-text reply as an acceptance or a decline.
// Affirmations such as "no faltaremos" win over declines, and declines win
// over plain acceptances so "no, not coming" never reads as "coming".
func Classify(text string) (models.Attendance, bool) {
	if strings.Contains(text, "❌") {
		return models.AttendanceNo, true
	}
	if strings.Contains(text, "✅") {
		return models.AttendanceYes, true
	}

	// Apostrophes vanish in normalization, so "can't" becomes "cant"
	padded := " " + strings.Join(strings.Fields(reconcile.NormalizeName(text)), " ") + " "
	if strings.TrimSpace(padded) == "" {
		return "", false
	}
	if containsPhrase(padded, affirmations) {
		return models.AttendanceYes, true
	}
	if containsPhrase(padded, declinePhrases) {
		return models.AttendanceNo, true
	}
	if containsPhrase(padded, acceptPhrases) {
		return models.AttendanceYes, true
	}
	return "", false
}

func containsPhrase(padded string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// HandleMessage records an RSVP when a known guest answers yes or no, and
// confirms it back to them. Messages from unknown numbers and replies that
// are neither are ignored.
func (h *ReplyHandler) HandleMessage(msg *events.Message) error {
	if msg == nil || msg.Message == nil {
		return nil
	}
	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctx := context.Background()
	phone := whatsapp.NormalizePhoneNumber(whatsapp.SenderPhone(msg.Info), h.cfg.CountryCode)

	guest, ok, err := h.findGuest(ctx, phone)
	if err != nil {
		return err
	}
	if !ok {
		h.log.Debug().Str("phone", phone).Msg("Message from unknown number ignored")
		return nil
	}

	attendance, ok := Classify(text)
	if !ok {
		h.log.Debug().Str("guest", guest.Name).Msg("Reply is not an RSVP")
		return nil
	}

	seats := guest.SeatCount
	if attendance == models.AttendanceNo {
		seats = 0
	}
	r, err := h.recorder.Record(ctx, models.RSVP{
		GuestName:        guest.Name,
		Attendance:       attendance,
		GuestCount:       guest.SeatCount,
		ActualGuestCount: &seats,
		Message:          text,
	})
	if err != nil {
		return fmt.Errorf("failed to record RSVP: %w", err)
	}
	h.log.Info().Str("guest", guest.Name).Str("attendance", string(r.Attendance)).Msg("RSVP received over WhatsApp")

	if err := h.messenger.SendMessage(ctx, guest.Phone, whatsapp.ReplyConfirmation(h.cfg.Event, attendance)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

func (h *ReplyHandler) findGuest(ctx context.Context, phone string) (models.Guest, bool, error) {
	if phone == "" {
		return models.Guest{}, false, nil
	}
	guests, err := h.guests.Load(ctx)
	if err != nil {
		return models.Guest{}, false, fmt.Errorf("load guests: %w", err)
	}
	for _, g := range guests {
		if whatsapp.NormalizePhoneNumber(g.Phone, h.cfg.CountryCode) == phone {
			return g, true, nil
		}
	}
	return models.Guest{}, false, nil
}
