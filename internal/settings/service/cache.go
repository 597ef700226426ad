package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bazaarlabs/settlement/internal/config"
	"github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 30 * time.Second

// Cache is a short-TTL read-through cache for settings lookups. Staleness
// only affects rate and threshold values, never linkage correctness, so a
// small TTL is acceptable. Every cache failure degrades to the database.
type Cache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewCache returns nil when no redis address is configured; the service
// treats a nil cache as a direct database path.
func NewCache(cfg config.Config, log *zap.Logger) *Cache {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &Cache{
		client: client,
		log:    log.Named("settings.cache"),
	}
}

func cacheKey(key string) string {
	return "settings:" + key
}

func (c *Cache) Get(ctx context.Context, key string) (domain.Setting, bool) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("settings cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.Setting{}, false
	}

	var setting domain.Setting
	if err := json.Unmarshal(raw, &setting); err != nil {
		c.log.Warn("settings cache entry corrupt", zap.String("key", key), zap.Error(err))
		return domain.Setting{}, false
	}
	return setting, true
}

func (c *Cache) Set(ctx context.Context, setting domain.Setting) {
	raw, err := json.Marshal(setting)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(setting.Key), raw, cacheTTL).Err(); err != nil {
		c.log.Warn("settings cache write failed", zap.String("key", setting.Key), zap.Error(err))
	}
}

func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		c.log.Warn("settings cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
