// Package cache implements repository.TopicCache on redis.
//
// The cached value is the JSON encoding of the topic list. The earlier
// incarnation of this service stored a comma-joined string, which
// silently corrupts any topic containing a comma — JSON round-trips
// every topic exactly, at the cost of a few bytes of brackets.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tazwar/feedpost/internal/repository"
)

// compile-time check that *TopicCache implements repository.TopicCache
var _ repository.TopicCache = (*TopicCache)(nil)

// topicTTL is how long a cached topic list lives: 48000 seconds
// (13h20m). Mutations invalidate the key eagerly, so the TTL is a
// backstop against writers that bypass this service, not the primary
// consistency mechanism.
const topicTTL = 48000 * time.Second

// TopicCache memoizes per-user topic lists in redis.
type TopicCache struct {
	rdb *redis.Client
}

// Config holds the redis connection settings.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int
}

// New connects to redis and verifies the connection with a ping, so a
// bad address fails at startup instead of on the first cache read.
func New(ctx context.Context, cfg Config) (*TopicCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: pinging redis at %s: %w", cfg.Addr, err)
	}
	return &TopicCache{rdb: rdb}, nil
}

// Close releases the redis connection pool.
func (c *TopicCache) Close() error {
	return c.rdb.Close()
}

// topicKey builds the cache key for a user's topic list. The
// "<user_id>topics" shape is kept for parity with earlier deployments
// that may share the same redis instance.
func topicKey(userID int64) string {
	return fmt.Sprintf("%dtopics", userID)
}

// GetTopics returns (topics, true, nil) on a hit, (nil, false, nil) on
// a miss. Undecodable values are treated as misses after deleting the
// bad key — a stale comma-joined value from an old writer should heal,
// not wedge the endpoint.
func (c *TopicCache) GetTopics(ctx context.Context, userID int64) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, topicKey(userID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading topics for user %d: %w", userID, err)
	}

	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		c.rdb.Del(ctx, topicKey(userID))
		return nil, false, nil
	}
	return topics, true, nil
}

// SetTopics stores the list with the fixed TTL.
func (c *TopicCache) SetTopics(ctx context.Context, userID int64, topics []string) error {
	val, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("cache: encoding topics for user %d: %w", userID, err)
	}
	if err := c.rdb.Set(ctx, topicKey(userID), val, topicTTL).Err(); err != nil {
		return fmt.Errorf("cache: writing topics for user %d: %w", userID, err)
	}
	return nil
}

// Invalidate drops the user's cached list. Deleting an absent key is
// fine — DEL is naturally idempotent.
func (c *TopicCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, topicKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache: invalidating topics for user %d: %w", userID, err)
	}
	return nil
}
