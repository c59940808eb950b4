package filestore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "upload:"

// Store keeps raw upload bytes in Redis, keyed by a generated storage key.
// Content is written once at ingestion time and retrieved by key; the
// submission record holds the key and the declared file name.
type Store struct {
	client *redis.Client
}

// NewStore wraps a Redis client as a blob store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save stores content under a fresh key and returns the key.
func (s *Store) Save(ctx context.Context, fileName string, content []byte) (string, error) {
	key := keyPrefix + uuid.NewString()
	if err := s.client.Set(ctx, key, content, 0).Err(); err != nil {
		return "", fmt.Errorf("store upload %s: %w", fileName, err)
	}
	return key, nil
}

// Load retrieves stored content by key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load upload %s: %w", key, err)
	}
	return data, nil
}
