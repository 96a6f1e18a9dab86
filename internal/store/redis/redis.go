package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/quiz-manager/internal/store"
)

const defaultPrefix = "quizstore"

// KV keeps collections as plain string values without expiry.
type KV struct {
	client *redis.Client
	prefix string
}

var _ store.KV = (*KV)(nil)

func New(client *redis.Client, prefix string) *KV {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &KV{client: client, prefix: prefix}
}

func (r *KV) key(key string) string {
	return r.prefix + ":" + key
}

func (r *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *KV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Close is a no-op; the client is shared and closed by the application.
func (r *KV) Close() error { return nil }
