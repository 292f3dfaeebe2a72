// Package backup writes JSON snapshots of the guest list and the RSVP table
// to S3.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/storage"
)

// Uploader is the part of the S3 client used for backups
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ Uploader = (*s3.Client)(nil)

// NewS3Client builds an S3 client from the default AWS credential chain
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

type Config struct {
	Bucket string
	Prefix string
}

type Service struct {
	guests   storage.GuestRepository
	rsvps    storage.RSVPStore
	uploader Uploader
	cfg      Config
	log      zerolog.Logger
}

func NewService(guests storage.GuestRepository, rsvps storage.RSVPStore, uploader Uploader, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		guests:   guests,
		rsvps:    rsvps,
		uploader: uploader,
		cfg:      cfg,
		log:      logger.With().Str("component", "backup").Logger(),
	}
}

// Result lists the object keys written by Backup
type Result struct {
	Bucket string   `json:"bucket"`
	Keys   []string `json:"keys"`
}

// Backup uploads guests-YYYY-MM-DD.json and rsvps-YYYY-MM-DD.json under
// the configured prefix, dated by now. A second run on the same day
// overwrites that day's snapshot.
func (s *Service) Backup(ctx context.Context, now time.Time) (Result, error) {
	if s.cfg.Bucket == "" {
		return Result{}, fmt.Errorf("no backup bucket configured")
	}

	guests, err := s.guests.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load guests: %w", err)
	}
	rsvps, err := s.rsvps.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list rsvps: %w", err)
	}

	day := now.Format("2006-01-02")
	result := Result{Bucket: s.cfg.Bucket}
	for _, obj := range []struct {
		name string
		data any
	}{
		{"guests", guests},
		{"rsvps", rsvps},
	} {
		key := path.Join(s.cfg.Prefix, fmt.Sprintf("%s-%s.json", obj.name, day))
		if err := s.put(ctx, key, obj.data); err != nil {
			return result, err
		}
		result.Keys = append(result.Keys, key)
	}

	s.log.Info().
		Str("bucket", s.cfg.Bucket).
		Int("guests", len(guests)).
		Int("rsvps", len(rsvps)).
		Msg("Backup uploaded")
	return result, nil
}

func (s *Service) put(ctx context.Context, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
