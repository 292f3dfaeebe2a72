package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

// GuestRepository stores the guest list as a single JSON document
type GuestRepository struct {
	client *redis.Client
	cfg    Config
}

var _ storage.GuestRepository = (*GuestRepository)(nil)

// New connects to Redis and verifies the connection
func New(cfg Config) (*GuestRepository, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, cfg Config) *GuestRepository {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &GuestRepository{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (r *GuestRepository) Close() error {
	return r.client.Close()
}

func (r *GuestRepository) Load(ctx context.Context) ([]models.Guest, error) {
	data, err := r.client.Get(ctx, r.cfg.guestsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Guest{}, nil
		}
		return nil, fmt.Errorf("get guests: %w", err)
	}

	guests := make([]models.Guest, 0)
	if err := json.Unmarshal(data, &guests); err != nil {
		return nil, fmt.Errorf("unmarshal guests: %w", err)
	}
	return guests, nil
}

func (r *GuestRepository) Save(ctx context.Context, guests []models.Guest) error {
	if len(guests) == 0 {
		return r.client.Del(ctx, r.cfg.guestsKey()).Err()
	}

	data, err := json.Marshal(guests)
	if err != nil {
		return fmt.Errorf("marshal guests: %w", err)
	}
	return r.client.Set(ctx, r.cfg.guestsKey(), data, 0).Err()
}
