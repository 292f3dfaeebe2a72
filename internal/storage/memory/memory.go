// Package memory provides in-process stores used by tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

type GuestRepository struct {
	mu     sync.RWMutex
	guests []models.Guest
}

var _ storage.GuestRepository = (*GuestRepository)(nil)

func NewGuestRepository(guests ...models.Guest) *GuestRepository {
	r := &GuestRepository{}
	r.guests = append([]models.Guest{}, guests...)
	return r
}

func (r *GuestRepository) Load(ctx context.Context) ([]models.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guests := make([]models.Guest, len(r.guests))
	copy(guests, r.guests)
	return guests, nil
}

func (r *GuestRepository) Save(ctx context.Context, guests []models.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.guests = append([]models.Guest{}, guests...)
	return nil
}

type RSVPStore struct {
	mu    sync.RWMutex
	rsvps []models.RSVP
	now   func() time.Time
}

var _ storage.RSVPStore = (*RSVPStore)(nil)

func NewRSVPStore(rsvps ...models.RSVP) *RSVPStore {
	return &RSVPStore{
		rsvps: append([]models.RSVP{}, rsvps...),
		now:   time.Now,
	}
}

func (s *RSVPStore) Insert(ctx context.Context, r models.RSVP) (models.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	s.rsvps = append(s.rsvps, r)
	return r, nil
}

func (s *RSVPStore) List(ctx context.Context) ([]models.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rsvps := make([]models.RSVP, len(s.rsvps))
	copy(rsvps, s.rsvps)
	sort.SliceStable(rsvps, func(i, j int) bool {
		return rsvps[i].CreatedAt.After(rsvps[j].CreatedAt)
	})
	return rsvps, nil
}

func (s *RSVPStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rsvps {
		if r.ID == id {
			s.rsvps = append(s.rsvps[:i], s.rsvps[i+1:]...)
			return nil
		}
	}
	return models.ErrRSVPNotFound
}

func (s *RSVPStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rsvps = nil
	return nil
}
