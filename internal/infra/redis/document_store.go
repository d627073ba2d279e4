package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"interview-prep-service/internal/domain"
)

const keyPrefix = "prep:doc:"

// DocumentStore keeps each document under a prefixed Redis string key with
// no expiry; the documents are the source of durable truth, not a cache.
type DocumentStore struct {
	client *redis.Client
}

func NewDocumentStore(client *redis.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

func (s *DocumentStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *DocumentStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
