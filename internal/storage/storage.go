package storage

import (
	"context"

	"wedding-rsvp/internal/models"
)

// GuestRepository persists the organizer's guest list as a whole. Callers
// load a snapshot, change it, and save it back.
type GuestRepository interface {
	Load(ctx context.Context) ([]models.Guest, error)
	Save(ctx context.Context, guests []models.Guest) error
}

// RSVPStore holds submitted RSVPs
type RSVPStore interface {
	// Insert stores r, filling in ID and CreatedAt when empty, and returns
	// the stored record as it would be read back.
	Insert(ctx context.Context, r models.RSVP) (models.RSVP, error)
	// List returns every RSVP, newest first.
	List(ctx context.Context) ([]models.RSVP, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
