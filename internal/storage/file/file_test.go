package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-rsvp/internal/models"
)

func TestLoadMissingFile(t *testing.T) {
	repo := NewGuestRepository(filepath.Join(t.TempDir(), "guests.json"))

	guests, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, guests)
	assert.Empty(t, guests)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "guests.json")
	repo := NewGuestRepository(path)
	ctx := context.Background()

	want := []models.Guest{
		{ID: "1", Name: "Juan Pérez", Phone: "+50377428772", SeatCount: 2, InvitationSent: true},
		{ID: "2", Name: "María García", Phone: "+50377428773", SeatCount: 4},
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guests.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	guests, err := NewGuestRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, guests)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guests.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewGuestRepository(path).Load(context.Background())
	assert.Error(t, err)
}

func TestReadsBrowserExportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guests.json")
	export := `[{"id":"1700000000000","name":"Carlos López","phone":"+50377428774","seatCount":1,"invitationSent":true,"rsvpReceived":false}]`
	require.NoError(t, os.WriteFile(path, []byte(export), 0644))

	guests, err := NewGuestRepository(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Carlos López", guests[0].Name)
	assert.Equal(t, 1, guests[0].SeatCount)
	assert.True(t, guests[0].InvitationSent)
}
