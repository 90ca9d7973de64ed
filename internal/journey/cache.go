package journey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keeps aggregated research text in Redis keyed by journey ID, so a
// tier upgrade reuses the already-gathered research instead of re-searching.
// Cache misses are not errors for callers; they just trigger fresh research.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache builds a cache on an existing Redis client.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func researchKey(journeyID string) string {
	return fmt.Sprintf("validately:research:%s", journeyID)
}

// SetResearch stores the aggregated research text for a journey.
func (c *Cache) SetResearch(ctx context.Context, journeyID, content string) error {
	if err := c.client.Set(ctx, researchKey(journeyID), content, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache research for %s: %w", journeyID, err)
	}
	return nil
}

// GetResearch returns the cached research text, or ("", false) on a miss.
func (c *Cache) GetResearch(ctx context.Context, journeyID string) (string, bool, error) {
	val, err := c.client.Get(ctx, researchKey(journeyID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read research cache for %s: %w", journeyID, err)
	}
	c.logger.Debug("Research cache hit", zap.String("journey_id", journeyID))
	return val, true, nil
}
