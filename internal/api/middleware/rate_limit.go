package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware throttles per-user request rates with a fixed window
// counter in redis. With a nil client it is a no-op, so single-node setups
// without redis still work.
type RateLimitMiddleware struct {
	redisClient *redis.Client
}

func NewRateLimitMiddleware(redisClient *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{redisClient: redisClient}
}

func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rm.redisClient == nil {
			c.Next()
			return
		}

		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := fmt.Sprintf("rate_limit:%d:%s", identity.UserID, c.Request.URL.Path)
		ctx := c.Request.Context()

		count, err := rm.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Rate limiting is advisory; do not fail requests when redis
			// is unavailable.
			c.Next()
			return
		}
		if count == 1 {
			rm.redisClient.Expire(ctx, key, window)
		}

		if count > int64(requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded: %d requests per %v", requests, window),
			})
			return
		}

		c.Next()
	}
}
