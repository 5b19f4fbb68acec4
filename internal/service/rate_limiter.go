package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"vidtube/internal/domain"
	"vidtube/pkg/logger"
	"vidtube/pkg/redis"

	"golang.org/x/time/rate"
)

// RedisRateLimiter is a fixed window counter shared by every instance
type RedisRateLimiter struct {
	redisClient *redis.Client
	limit       int64
	window      time.Duration
	logger      *logger.Logger
}

// NewRedisRateLimiter creates a limiter allowing limit requests per window
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, logger *logger.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{redisClient: client, limit: int64(limit), window: window, logger: logger}
}

// Allow counts a request from ip within scope
func (r *RedisRateLimiter) Allow(ctx context.Context, scope, ip string) (*domain.RateLimitInfo, error) {
	key := r.redisClient.KeyBuilder.KeyRateLimit(scope, hashIP(ip))

	count, ttl, err := r.redisClient.IncrWindow(ctx, key, r.window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if ttl < 0 {
		r.logger.WithField("scope", scope).Warn("Rate limit counter has no expiry")
		ttl = r.window
	}

	return &domain.RateLimitInfo{
		Key:          key,
		RequestCount: count,
		Limit:        r.limit,
		WindowStart:  time.Now().Add(ttl - r.window),
		TTL:          ttl,
		IsAllowed:    count <= r.limit,
	}, nil
}

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps a token bucket per client in process memory.
// Buckets idle for a whole window are full again and get swept.
type LocalRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalRateLimiter allows bursts of limit requests refilled over window
func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		limiters:  make(map[string]*localEntry),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *LocalRateLimiter) Allow(ctx context.Context, scope, ip string) (*domain.RateLimitInfo, error) {
	key := scope + ":" + hashIP(ip)

	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}
	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{lim: rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	allowed := entry.lim.AllowN(now, 1)
	remaining := int64(entry.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &domain.RateLimitInfo{
		Key:          key,
		RequestCount: int64(l.limit) - remaining,
		Limit:        int64(l.limit),
		WindowStart:  now,
		TTL:          l.window,
		IsAllowed:    allowed,
	}, nil
}

// Len reports how many client buckets are held
func (l *LocalRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// sweep must be called with mu held
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.window {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// hashIP keeps raw client addresses out of keys and logs
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
