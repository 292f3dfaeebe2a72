package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/whatsapp"
)

const (
	GuestStoreFile  = "file"
	GuestStoreRedis = "redis"

	RSVPStoreSQLite   = "sqlite"
	RSVPStoreDynamoDB = "dynamodb"
)

// Config holds the application configuration
type Config struct {
	WhatsAppDataDir string `env:"WHATSAPP_DATA_DIR" envDefault:"data"`
	HTTPAddr        string `env:"HTTP_ADDR" envDefault:":8080"`

	GuestStore string `env:"GUEST_STORE" envDefault:"file"`
	GuestsFile string `env:"GUESTS_FILE"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisKey   string `env:"REDIS_KEY_PREFIX" envDefault:"wedding"`

	RSVPStore     string `env:"RSVP_STORE" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH"`
	SchemaVersion int    `env:"RSVP_SCHEMA_VERSION" envDefault:"2"`
	DynamoTable   string `env:"DYNAMODB_TABLE" envDefault:"wedding-rsvps"`
	AWSRegion     string `env:"AWS_REGION"`

	BackupBucket string `env:"BACKUP_BUCKET"`
	BackupPrefix string `env:"BACKUP_PREFIX" envDefault:"backups"`

	CouplePhone  string        `env:"COUPLE_PHONE"`
	CountryCode  string        `env:"DEFAULT_COUNTRY_CODE" envDefault:"503"`
	SendInterval time.Duration `env:"SEND_INTERVAL" envDefault:"1100ms"`

	BrideName         string `env:"BRIDE_NAME" envDefault:"Bride"`
	GroomName         string `env:"GROOM_NAME" envDefault:"Groom"`
	WeddingDate       string `env:"WEDDING_DATE" envDefault:"Saturday, January 1, 2025"`
	CeremonyLocation  string `env:"CEREMONY_LOCATION" envDefault:"Venue TBD"`
	ReceptionLocation string `env:"RECEPTION_LOCATION" envDefault:"Venue TBD"`
	SiteURL           string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables or defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GuestsFile == "" {
		cfg.GuestsFile = filepath.Join(cfg.WhatsAppDataDir, "guests.json")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.WhatsAppDataDir, "rsvps.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.GuestStore {
	case GuestStoreFile, GuestStoreRedis:
	default:
		return fmt.Errorf("GUEST_STORE must be %q or %q, got %q", GuestStoreFile, GuestStoreRedis, c.GuestStore)
	}
	switch c.RSVPStore {
	case RSVPStoreSQLite, RSVPStoreDynamoDB:
	default:
		return fmt.Errorf("RSVP_STORE must be %q or %q, got %q", RSVPStoreSQLite, RSVPStoreDynamoDB, c.RSVPStore)
	}
	if _, err := c.Schema(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.SendInterval < 0 {
		return fmt.Errorf("SEND_INTERVAL must not be negative")
	}
	return nil
}

// Schema returns the RSVP table schema selected by RSVP_SCHEMA_VERSION
func (c *Config) Schema() (storage.Schema, error) {
	return storage.SchemaFromVersion(c.SchemaVersion)
}

// Level returns the configured log level, defaulting to info
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *Config) Event() whatsapp.Event {
	return whatsapp.Event{
		CoupleNames: c.BrideName + " & " + c.GroomName,
		Date:        c.WeddingDate,
		Ceremony:    c.CeremonyLocation,
		Reception:   c.ReceptionLocation,
		SiteURL:     c.SiteURL,
	}
}
