package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

// GuestRepository keeps the guest list in a JSON file
type GuestRepository struct {
	mu   sync.RWMutex
	file string
}

var _ storage.GuestRepository = (*GuestRepository)(nil)

// NewGuestRepository creates a repository backed by filePath. The file is
// created on the first Save.
func NewGuestRepository(filePath string) *GuestRepository {
	return &GuestRepository{file: filePath}
}

// Path returns the backing file path
func (r *GuestRepository) Path() string {
	return r.file
}

// Load reads the guest list. A missing or empty file is an empty list.
func (r *GuestRepository) Load(ctx context.Context) ([]models.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.file)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Guest{}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	guests := make([]models.Guest, 0)
	if len(data) == 0 {
		return guests, nil
	}

	if err := json.Unmarshal(data, &guests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return guests, nil
}

// Save replaces the guest list on disk
func (r *GuestRepository) Save(ctx context.Context, guests []models.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if guests == nil {
		guests = []models.Guest{}
	}

	data, err := json.MarshalIndent(guests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(r.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temp file, then rename over the original
	tmp := r.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, r.file); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
