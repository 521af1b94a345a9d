package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter

	mu   sync.Mutex
	last time.Time
}

func (v *visitor) touch(now time.Time) {
	v.mu.Lock()
	v.last = now
	v.mu.Unlock()
}

func (v *visitor) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.last)
}

// RateLimitPerIP limits each client IP to limit requests per second with the
// given burst. At most cacheSize IPs are tracked; visitors idle for longer
// than ttl are forgotten. The janitor goroutine stops with ctx.
func RateLimitPerIP(ctx context.Context, limit, burst, cacheSize int, ttl time.Duration) gin.HandlerFunc {
	visitors, _ := lru.New[string, *visitor](cacheSize)

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, key := range visitors.Keys() {
					if v, ok := visitors.Peek(key); ok && v.idleSince(now) > ttl {
						visitors.Remove(key)
					}
				}
			}
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		v, ok := visitors.Get(ip)
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Limit(limit), burst)}
			// a concurrent first request from the same IP may have won
			if prev, found, _ := visitors.PeekOrAdd(ip, v); found {
				v = prev
			}
		}
		v.touch(time.Now())

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
