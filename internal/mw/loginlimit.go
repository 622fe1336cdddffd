package mw

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const loginKeyPrefix = "privdm:login:"

// LoginLimiter counts login attempts per key in fixed windows.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type loginAttempt struct {
	count       int
	windowStart time.Time
}

// MemoryLoginLimiter keeps counters in process. Counters are not shared between replicas.
type MemoryLoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*loginAttempt
	max         int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryLoginLimiter(max int, window time.Duration) *MemoryLoginLimiter {
	return &MemoryLoginLimiter{
		attempts:    make(map[string]*loginAttempt),
		max:         max,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *MemoryLoginLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < 5*l.window {
		return
	}
	l.lastCleanup = now
	for key, a := range l.attempts {
		if now.Sub(a.windowStart) >= l.window {
			delete(l.attempts, key)
		}
	}
}

func (l *MemoryLoginLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	a, ok := l.attempts[key]
	if !ok || now.Sub(a.windowStart) >= l.window {
		l.attempts[key] = &loginAttempt{count: 1, windowStart: now}
		return true, 0, nil
	}
	if a.count >= l.max {
		return false, a.windowStart.Add(l.window).Sub(now), nil
	}
	a.count++
	return true, 0, nil
}

var loginLimitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// RedisLoginLimiter shares counters between replicas through Redis.
type RedisLoginLimiter struct {
	client redis.Scripter
	max    int
	window time.Duration
}

func NewRedisLoginLimiter(client redis.Scripter, max int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client, max: max, window: window}
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := loginLimitScript.Run(ctx, l.client, []string{loginKeyPrefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return true, 0, err
	}
	if len(res) != 2 {
		return true, 0, nil
	}
	if int(res[0]) <= l.max {
		return true, 0, nil
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// LoginLimit rejects clients that exceeded their login attempts with 429.
// Limiter errors are logged and the request is let through.
func LoginLimit(l LoginLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, retryAfter, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn().Err(err).Str("ip", ip).Msg("login limit check failed, allowing request")
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(ceilSeconds(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
		c.Next()
	}
}

func ceilSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
