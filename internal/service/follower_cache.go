package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/purpleforest/purpleforest/pkg/logger"
)

// FollowerCache keeps a user's followed-username list in a redis list so a
// hot home timeline does not re-read the follow graph on every request.
// It is strictly an accelerator: misses and redis failures fall back to
// the store, and follow/unfollow drop the key.
type FollowerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFollowerCache(client *redis.Client, ttl time.Duration) *FollowerCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FollowerCache{client: client, ttl: ttl}
}

func followedKey(userID int64) string { return fmt.Sprintf("followed:index:%d", userID) }

// GetFollowed reports (names, true) on a hit. An empty list is treated as
// a miss; the store answer for a user following nobody is cheap anyway.
func (c *FollowerCache) GetFollowed(ctx context.Context, userID int64) ([]string, bool) {
	names, err := c.client.LRange(ctx, followedKey(userID), 0, -1).Result()
	if err != nil || len(names) == 0 {
		return nil, false
	}
	return names, true
}

func (c *FollowerCache) SetFollowed(ctx context.Context, userID int64, names []string) {
	if len(names) == 0 {
		return
	}
	key := followedKey(userID)
	vals := make([]interface{}, len(names))
	for i, n := range names {
		vals[i] = n
	}
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, vals...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("follower cache set failed", zap.Int64("user", userID), zap.Error(err))
	}
}

func (c *FollowerCache) Invalidate(ctx context.Context, userID int64) {
	if err := c.client.Del(ctx, followedKey(userID)).Err(); err != nil {
		logger.Warn("follower cache invalidate failed", zap.Int64("user", userID), zap.Error(err))
	}
}
