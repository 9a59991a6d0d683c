package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadTTL = 30 * time.Second

// UnreadCache caches per-user unread notification counts.
type UnreadCache interface {
	Get(ctx context.Context, userID string) (int, bool)
	Set(ctx context.Context, userID string, count int)
	Invalidate(ctx context.Context, userID string)
}

// NewUnreadCache builds a redis-backed cache or a noop cache when Redis is
// not configured or unreachable.
func NewUnreadCache(redisAddr string) UnreadCache {
	if redisAddr == "" {
		log.Printf("redis disabled, using noop unread cache: empty redis addr")
		return noopCache{}
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis disabled, using noop unread cache: %v", err)
		_ = client.Close()
		return noopCache{}
	}

	log.Printf("redis connected addr=%s", redisAddr)
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

func (c *redisCache) Get(ctx context.Context, userID string) (int, bool) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *redisCache) Set(ctx context.Context, userID string, count int) {
	if err := c.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err(); err != nil {
		log.Printf("unread cache set failed: %v", err)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		log.Printf("unread cache invalidate failed: %v", err)
	}
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, userID string) (int, bool) { return 0, false }

func (noopCache) Set(ctx context.Context, userID string, count int) {}

func (noopCache) Invalidate(ctx context.Context, userID string) {}
