package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-rsvp/internal/storage"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WHATSAPP_DATA_DIR", "/tmp/wedding")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, GuestStoreFile, cfg.GuestStore)
	assert.Equal(t, filepath.Join("/tmp/wedding", "guests.json"), cfg.GuestsFile)
	assert.Equal(t, filepath.Join("/tmp/wedding", "rsvps.db"), cfg.SQLitePath)
	assert.Equal(t, 1100*time.Millisecond, cfg.SendInterval)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())

	schema, err := cfg.Schema()
	require.NoError(t, err)
	assert.Equal(t, storage.SchemaV2, schema)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GUEST_STORE", "redis")
	t.Setenv("RSVP_SCHEMA_VERSION", "1")
	t.Setenv("SEND_INTERVAL", "2s")
	t.Setenv("BRIDE_NAME", "Ana")
	t.Setenv("GROOM_NAME", "Luis")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, GuestStoreRedis, cfg.GuestStore)
	assert.Equal(t, 2*time.Second, cfg.SendInterval)
	assert.Equal(t, "Ana & Luis", cfg.Event().CoupleNames)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	schema, err := cfg.Schema()
	require.NoError(t, err)
	assert.False(t, schema.HasActualGuestCount())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"GUEST_STORE":         "postgres",
		"RSVP_STORE":          "mongo",
		"RSVP_SCHEMA_VERSION": "7",
		"LOG_LEVEL":           "loud",
		"SEND_INTERVAL":       "soon",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
