package llm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores generator output in Redis keyed by a hash of the analyzed
// content. It is strictly fail-open: any Redis error is logged and treated
// as a miss so the generator path never depends on cache availability.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{client: client, prefix: "suggest:", ttl: ttl}, nil
}

// NewCacheWithClient creates a cache from an existing Redis client.
func NewCacheWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: "suggest:", ttl: ttl}
}

func (c *Cache) key(content string) string {
	sum := sha1.Sum([]byte(content))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached suggestions for content, if any.
func (c *Cache) Get(ctx context.Context, content string) (Suggestions, bool) {
	raw, err := c.client.Get(ctx, c.key(content)).Result()
	if err == redis.Nil {
		return Suggestions{}, false
	}
	if err != nil {
		log.Printf("llm: cache lookup failed: %v", err)
		return Suggestions{}, false
	}

	var suggestions Suggestions
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		log.Printf("llm: cache entry undecodable: %v", err)
		return Suggestions{}, false
	}
	return suggestions, true
}

// Set stores suggestions for content with the configured TTL.
func (c *Cache) Set(ctx context.Context, content string, suggestions Suggestions) {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		log.Printf("llm: cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.key(content), payload, c.ttl).Err(); err != nil {
		log.Printf("llm: cache store failed: %v", err)
	}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
