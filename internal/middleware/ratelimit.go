package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

// Counter increments a windowed counter and returns the new count.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter counts with INCR, shared by every instance.
type RedisCounter struct {
	rc *pkgredis.Client
}

func NewRedisCounter(rc *pkgredis.Client) *RedisCounter { return &RedisCounter{rc: rc} }

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	rdb := r.rc.Raw()
	full := r.rc.Key(key)
	count, err := rdb.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		rdb.PExpire(ctx, full, window+time.Second)
	}
	return count, nil
}

// MemoryCounter is a per-process Counter for setups without Redis.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]memoryCount
	now    func() time.Time
}

type memoryCount struct {
	n         int64
	expiresAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]memoryCount), now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, v := range m.counts {
		if !now.Before(v.expiresAt) {
			delete(m.counts, k)
		}
	}
	entry, ok := m.counts[key]
	if !ok {
		entry = memoryCount{expiresAt: now.Add(window)}
	}
	entry.n++
	m.counts[key] = entry
	return entry.n, nil
}

// RateLimit allows max requests per client IP in each fixed window under
// scope. Over the limit it sets Retry-After and hands off to reject, which
// must abort. Counter failures let the request through.
func RateLimit(counter Counter, scope string, max int, window time.Duration, reject gin.HandlerFunc) gin.HandlerFunc {
	if window <= 0 {
		window = time.Minute
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" || counter == nil {
			c.Next()
			return
		}

		slot := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("rate_limit:%s:%s:%d", scope, ip, slot)
		count, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			c.Next()
			return
		}

		if count > int64(max) {
			c.Header("Retry-After", fmt.Sprint(int(window/time.Second)))
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
