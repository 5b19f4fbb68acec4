package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"vidtube/internal/domain"
	"vidtube/pkg/redis"

	"go.uber.org/zap"
)

// CacheService caches video listing pages in Redis with a cache-aside pattern
type CacheService struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = redis.TTLVideoList
	}
	return &CacheService{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// GetVideoPage returns a cached listing page and the listing generation it
// was looked up under. Cache errors and corrupt entries count as misses.
func (c *CacheService) GetVideoPage(ctx context.Context, page int) ([]domain.Video, int64, bool) {
	generation, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("Video list cache error, falling back to database", zap.Int("page", page), zap.Error(err))
		return nil, -1, false
	}

	cached, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyVideoListPage(generation, page))
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Video list cache error, falling back to database", zap.Int("page", page), zap.Error(err))
		}
		return nil, generation, false
	}

	var videos []domain.Video
	if err := json.Unmarshal([]byte(cached), &videos); err != nil {
		c.logger.Warn("Video list cache corrupted, falling back to database", zap.Int("page", page), zap.Error(err))
		return nil, generation, false
	}

	c.logger.Debug("Video list cache hit", zap.Int("page", page))
	return videos, generation, true
}

// SetVideoPage stores a listing page asynchronously (fire and forget) under
// the generation returned by the preceding miss. A page read before an
// invalidation lands in a retired generation and is never served.
func (c *CacheService) SetVideoPage(generation int64, page int, videos []domain.Video) {
	if generation < 0 {
		return
	}
	data, err := json.Marshal(videos)
	if err != nil {
		c.logger.Error("Failed to marshal video list for cache", zap.Int("page", page), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyVideoListPage(generation, page), data, c.ttl); err != nil {
			c.logger.Warn("Failed to cache video list", zap.Int("page", page), zap.Error(err))
		}
	}()
}

// InvalidateVideoPages retires the current listing generation and drops
// every cached page
func (c *CacheService) InvalidateVideoPages(ctx context.Context) {
	if _, err := c.redis.Incr(ctx, c.redis.KeyBuilder.KeyVideoListGeneration()); err != nil {
		c.logger.Error("Failed to bump video list cache generation", zap.Error(err))
	}
	if err := c.redis.InvalidatePattern(ctx, c.redis.KeyBuilder.KeyVideoListPattern()); err != nil {
		c.logger.Error("Failed to invalidate video list cache", zap.Error(err))
		return
	}
	c.logger.Debug("Video list cache invalidated")
}

func (c *CacheService) generation(ctx context.Context) (int64, error) {
	raw, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyVideoListGeneration())
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
