package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pargo:checkout:session:"

// RedisSessionStore keeps sessions in Redis as JSON with a TTL.
type RedisSessionStore struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore connects to the Redis server at addr.
func NewRedisSessionStore(addr string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection.
func (r *RedisSessionStore) Ping(ctx context.Context) error {
	if err := r.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *RedisSessionStore) Close() error {
	return r.c.Close()
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := r.c.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	if err := r.c.Set(ctx, redisKeyPrefix+s.ID, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.c.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ SessionStore = (*RedisSessionStore)(nil)
