package authn

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyCachePrefix = "authn:apikey:"

// RedisKeyCache caches API key resolutions in Redis with a TTL, so key resets
// propagate across instances within a bounded window even without explicit
// invalidation.
type RedisKeyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKeyCache creates a Redis-backed key cache. A non-positive ttl
// defaults to five minutes.
func NewRedisKeyCache(client *redis.Client, ttl time.Duration) *RedisKeyCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisKeyCache{client: client, ttl: ttl}
}

func (c *RedisKeyCache) Get(ctx context.Context, key string) (uuid.UUID, bool) {
	val, err := c.client.Get(ctx, keyCachePrefix+key).Result()
	if err != nil {
		return uuid.UUID{}, false
	}
	tenantID, err := uuid.Parse(val)
	if err != nil {
		return uuid.UUID{}, false
	}
	return tenantID, true
}

func (c *RedisKeyCache) Set(ctx context.Context, key string, tenantID uuid.UUID) error {
	return c.client.Set(ctx, keyCachePrefix+key, tenantID.String(), c.ttl).Err()
}

func (c *RedisKeyCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyCachePrefix+key).Err()
}

var _ KeyCache = (*RedisKeyCache)(nil)

const statePrefix = "authn:oauth2:state:"

// RedisStateStore keeps OAuth2 state tokens in Redis, so the provider
// callback can be served by a different instance than the one that issued the
// redirect. Expiry rides on the Redis key TTL.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Store(ctx context.Context, state string, expiresAt time.Time) error {
	return s.client.Set(ctx, statePrefix+state, "1", time.Until(expiresAt)).Err()
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	// GETDEL burns the token atomically, a replayed state finds nothing.
	if err := s.client.GetDel(ctx, statePrefix+state).Err(); err != nil {
		return ErrInvalidState
	}
	return nil
}

var _ StateStore = (*RedisStateStore)(nil)
