package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Redis stores payloads as plain string keys, optionally namespaced and with
// an expiry.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Persister = (*Redis)(nil)

// RedisOption configures the Redis persister.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL expires stored form data after ttl. Zero keeps it forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, errors.New("persist: redis client is required")
	}
	r := &Redis{client: client, prefix: "dynform:"}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// DialRedis connects to addr and pings it before returning.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("persist: ping redis %s: %w", addr, err)
	}
	return NewRedis(client, opts...)
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Load(ctx context.Context, key string) (*schema.FormData, error) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load %s: %w", key, err)
	}
	return Decode(payload)
}

func (r *Redis) Save(ctx context.Context, key string, data *schema.FormData) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("persist: save %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("persist: clear %s: %w", key, err)
	}
	return nil
}
