package mw

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Abin-1409/fuel-swift/internal/server/resp"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
	rateLimitWindow    = time.Second
)

// RateLimit caps requests per second per client IP with a Redis counter.
// limitPerSec <= 0 disables it.
func RateLimit(rdb redis.Cmdable, limitPerSec int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limitPerSec <= 0 {
			c.Next()
			return
		}
		key := rateLimitKeyPrefix + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			resp.Abort(c, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, rateLimitWindow)
		} else if ttl, _ := rdb.TTL(ctx, key).Result(); ttl < 0 {
			rdb.Expire(ctx, key, rateLimitWindow)
		}

		if count > int64(limitPerSec) {
			c.Header("Retry-After", "1")
			resp.Abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limitPerSec))
		c.Next()
	}
}
