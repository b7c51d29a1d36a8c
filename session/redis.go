package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	checkout "github.com/nextcommerce/checkout-go"
)

// DefaultSessionTTL bounds how long an abandoned session lingers in
// Redis. Generous on purpose: order staleness is enforced by the store's
// own 15-minute expiry policy, not by the storage layer.
const DefaultSessionTTL = 24 * time.Hour

// RedisStore implements SessionStore using Redis. Keys are namespaced
// per session so multiple checkout sessions can share one database.
type RedisStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewRedisStore creates a session store backed by Redis. sessionID
// scopes all keys to one checkout session.
func NewRedisStore(addr, password string, db int, sessionID string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{
		client:    rdb,
		sessionID: sessionID,
		ttl:       DefaultSessionTTL,
	}
}

// NewRedisStoreWithClient wraps an existing Redis client, for callers
// that manage their own connection pool.
func NewRedisStoreWithClient(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{
		client:    client,
		sessionID: sessionID,
		ttl:       DefaultSessionTTL,
	}
}

// WithTTL overrides the storage-level TTL applied on every write.
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	s.ttl = ttl
	return s
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("checkout:session:%s:%s", s.sessionID, key)
}

// Get returns the stored value, or nil if the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// Set stores value under key, refreshing the session TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements SessionStore
var _ checkout.SessionStore = (*RedisStore)(nil)
