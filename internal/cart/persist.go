package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Persister stores the serialized cart snapshot under a single named key.
type Persister interface {
	// Load returns the saved snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

const defaultKey = "kamu:cart"

// RedisPersister keeps the snapshot as a JSON blob in Redis.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister scopes the snapshot key to customerID so one Redis
// instance can hold carts for several sessions.
func NewRedisPersister(client *redis.Client, customerID string) *RedisPersister {
	key := defaultKey
	if customerID != "" {
		key = defaultKey + ":" + customerID
	}
	return &RedisPersister{client: client, key: key}
}

func (p *RedisPersister) Load(ctx context.Context) (*Snapshot, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &snap, nil
}

func (p *RedisPersister) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (p *RedisPersister) Clear(ctx context.Context) error {
	if err := p.client.Del(ctx, p.key).Err(); err != nil {
		return fmt.Errorf("clear cart snapshot: %w", err)
	}
	return nil
}

var _ Persister = (*RedisPersister)(nil)
