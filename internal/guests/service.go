// Package guests manages the organizer's guest list.
package guests

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

// Service applies list edits as load/modify/save cycles on a repository
type Service struct {
	repo storage.GuestRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo storage.GuestRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  logger.With().Str("component", "guests").Logger(),
		now:  time.Now,
	}
}

// NewGuest is the input for Add
type NewGuest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	SeatCount int    `json:"seatCount"`
}

func (s *Service) List(ctx context.Context) ([]models.Guest, error) {
	return s.repo.Load(ctx)
}

// Add appends a guest that has not been invited yet. A zero seat count
// becomes DefaultSeatCount.
func (s *Service) Add(ctx context.Context, in NewGuest) (models.Guest, error) {
	g := models.Guest{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		SeatCount: in.SeatCount,
	}
	if g.SeatCount == 0 {
		g.SeatCount = models.DefaultSeatCount
	}
	if err := g.Validate(); err != nil {
		return models.Guest{}, err
	}

	guests, err := s.repo.Load(ctx)
	if err != nil {
		return models.Guest{}, fmt.Errorf("load guests: %w", err)
	}
	if err := s.repo.Save(ctx, append(guests, g)); err != nil {
		return models.Guest{}, fmt.Errorf("save guests: %w", err)
	}

	s.log.Info().Str("guest", g.Name).Int("seats", g.SeatCount).Msg("Guest added")
	return g, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	return s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		for i, g := range guests {
			if g.ID == id {
				return append(guests[:i], guests[i+1:]...), nil
			}
		}
		return nil, models.ErrGuestNotFound
	})
}

// ToggleInvitation flips the invitation-sent flag and returns the result
func (s *Service) ToggleInvitation(ctx context.Context, id string) (models.Guest, error) {
	var updated models.Guest
	err := s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		for i := range guests {
			if guests[i].ID == id {
				s.setSent(&guests[i], !guests[i].InvitationSent)
				updated = guests[i]
				return guests, nil
			}
		}
		return nil, models.ErrGuestNotFound
	})
	return updated, err
}

// MarkAllSent flags every guest as invited
func (s *Service) MarkAllSent(ctx context.Context) (int, error) {
	var n int
	err := s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		for i := range guests {
			if !guests[i].InvitationSent {
				s.setSent(&guests[i], true)
				n++
			}
		}
		return guests, nil
	})
	return n, err
}

// MarkSent flags the guests with the given IDs as invited. Unknown IDs are
// ignored.
func (s *Service) MarkSent(ctx context.Context, ids ...string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		for i := range guests {
			if want[guests[i].ID] && !guests[i].InvitationSent {
				s.setSent(&guests[i], true)
			}
		}
		return guests, nil
	})
}

// MarkSentByName flags guests whose display name is exactly name. Used when
// an invitation was sent by hand through a wa.me link.
func (s *Service) MarkSentByName(ctx context.Context, name string) (int, error) {
	var n int
	err := s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		for i := range guests {
			if guests[i].Name == name && !guests[i].InvitationSent {
				s.setSent(&guests[i], true)
				n++
			}
		}
		return guests, nil
	})
	return n, err
}

// Clear removes every guest
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Save(ctx, nil); err != nil {
		return fmt.Errorf("save guests: %w", err)
	}
	s.log.Warn().Msg("Guest list cleared")
	return nil
}

// ImportCSV appends guests read from "Name,Phone,Seats" lines. Blank lines
// are skipped and a missing or unparseable seat count becomes
// DefaultSeatCount. Nothing is saved if any line is malformed.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) ([]models.Guest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var imported []models.Guest
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d %q: expected Name,Phone,Seats", models.ErrInvalidGuest, line, strings.Join(record, ","))
		}

		seats, err := strconv.Atoi(strings.TrimSpace(field(record, 2)))
		if err != nil || seats <= 0 {
			seats = models.DefaultSeatCount
		}
		g := models.Guest{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(record[0]),
			Phone:     strings.TrimSpace(record[1]),
			SeatCount: seats,
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		imported = append(imported, g)
	}

	if err := s.update(ctx, func(guests []models.Guest) ([]models.Guest, error) {
		return append(guests, imported...), nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().Int("count", len(imported)).Msg("Guests imported from CSV")
	return imported, nil
}

// ImportJSON replaces the list with a JSON array of guests, such as one
// produced by ExportJSON. Guests without an ID get one.
func (s *Service) ImportJSON(ctx context.Context, r io.Reader) ([]models.Guest, error) {
	var guests []models.Guest
	if err := json.NewDecoder(r).Decode(&guests); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of guests: %v", models.ErrInvalidGuest, err)
	}
	for i := range guests {
		if guests[i].ID == "" {
			guests[i].ID = uuid.NewString()
		}
		if err := guests[i].Validate(); err != nil {
			return nil, fmt.Errorf("guest %d: %w", i+1, err)
		}
	}

	if err := s.repo.Save(ctx, guests); err != nil {
		return nil, fmt.Errorf("save guests: %w", err)
	}
	s.log.Info().Int("count", len(guests)).Msg("Guest list replaced from JSON")
	return guests, nil
}

// ExportJSON writes the list as an indented JSON array
func (s *Service) ExportJSON(ctx context.Context, w io.Writer) error {
	guests, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load guests: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(guests)
}

func (s *Service) update(ctx context.Context, fn func([]models.Guest) ([]models.Guest, error)) error {
	guests, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load guests: %w", err)
	}
	guests, err = fn(guests)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, guests); err != nil {
		return fmt.Errorf("save guests: %w", err)
	}
	return nil
}

func (s *Service) setSent(g *models.Guest, sent bool) {
	g.InvitationSent = sent
	if sent && g.InvitedAt.IsZero() {
		g.InvitedAt = s.now().UTC()
	}
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
