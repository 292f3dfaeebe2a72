package factory

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/backup"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/guests"
	"wedding-rsvp/internal/handler"
	"wedding-rsvp/internal/rsvp"
	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/storage/dynamo"
	"wedding-rsvp/internal/storage/file"
	redisstorage "wedding-rsvp/internal/storage/redis"
	"wedding-rsvp/internal/storage/sqlite"
	"wedding-rsvp/internal/whatsapp"
)

// App contains all wired application components
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// Storage
	GuestRepo storage.GuestRepository
	RSVPStore storage.RSVPStore

	// WhatsApp is nil unless Options.WhatsApp was set
	WhatsApp *whatsapp.Service

	// Services
	Guests    *guests.Service
	RSVPs     *rsvp.Service
	Followups *followup.Service
	Replies   *handler.ReplyHandler
	// Backup is nil when no bucket is configured
	Backup *backup.Service

	closers []func() error
}

type Options struct {
	// WhatsApp connects a WhatsApp session so messages can be sent and
	// replies received.
	WhatsApp bool
	// QROut receives the pairing QR code on first connection
	QROut io.Writer
}

type messenger interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// New creates the application with all dependencies wired from cfg
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	if err := app.openStores(ctx, schema); err != nil {
		_ = app.Close()
		return nil, err
	}

	var m messenger
	if opts.WhatsApp {
		wa, err := whatsapp.NewService(ctx, &whatsapp.Config{
			DataDir:     cfg.WhatsAppDataDir,
			CountryCode: cfg.CountryCode,
			QROut:       opts.QROut,
		}, logger)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("init whatsapp: %w", err)
		}
		if err := wa.Connect(ctx); err != nil {
			_ = app.Close()
			return nil, err
		}
		app.WhatsApp = wa
		app.closers = append(app.closers, func() error {
			wa.Disconnect()
			return nil
		})
		m = wa
	}

	if cfg.BackupBucket != "" {
		client, err := backup.NewS3Client(ctx, cfg.AWSRegion)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Backup = backup.NewService(app.GuestRepo, app.RSVPStore, client, backup.Config{
			Bucket: cfg.BackupBucket,
			Prefix: cfg.BackupPrefix,
		}, logger)
	}

	app.wireServices(schema, m)
	return app, nil
}

func (a *App) openStores(ctx context.Context, schema storage.Schema) error {
	cfg := a.Config

	switch cfg.GuestStore {
	case config.GuestStoreRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.KeyPrefix = cfg.RedisKey
		repo, err := redisstorage.New(redisCfg)
		if err != nil {
			return err
		}
		a.GuestRepo = repo
		a.closers = append(a.closers, repo.Close)
	case config.GuestStoreFile:
		a.GuestRepo = file.NewGuestRepository(cfg.GuestsFile)
	default:
		return fmt.Errorf("unknown guest store %q", cfg.GuestStore)
	}

	switch cfg.RSVPStore {
	case config.RSVPStoreDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		a.RSVPStore = dynamo.New(client, cfg.DynamoTable, schema)
	case config.RSVPStoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, schema)
		if err != nil {
			return err
		}
		a.RSVPStore = store
		a.closers = append(a.closers, store.Close)
	default:
		return fmt.Errorf("unknown rsvp store %q", cfg.RSVPStore)
	}
	return nil
}

func (a *App) wireServices(schema storage.Schema, m messenger) {
	cfg := a.Config
	a.Guests = guests.NewService(a.GuestRepo, a.Logger)
	a.RSVPs = rsvp.NewService(a.RSVPStore, m, rsvp.Config{
		CouplePhone: cfg.CouplePhone,
		Schema:      schema,
	}, a.Logger)
	a.Followups = followup.NewService(a.GuestRepo, a.RSVPStore, m, followup.Config{
		Event:       cfg.Event(),
		CountryCode: cfg.CountryCode,
		Interval:    cfg.SendInterval,
	}, a.Logger)

	if a.WhatsApp != nil {
		a.Replies = handler.NewReplyHandler(a.GuestRepo, a.RSVPs, m, handler.Config{
			Event:       cfg.Event(),
			CountryCode: cfg.CountryCode,
		}, a.Logger)
		a.WhatsApp.SetMessageHandler(a.Replies.HandleMessage)
	}
}

// Close releases stores and the WhatsApp session, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
