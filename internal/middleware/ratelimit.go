package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/talentia-hr/vacaciones-api/pkg/errors"
	"github.com/talentia-hr/vacaciones-api/pkg/response"
)

type rateLimitObserver interface {
	ObserveRateLimitRejection()
}

// RateLimitConfig tunes the fixed-window limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

// RateLimit enforces a per-user fixed window using a shared Redis counter so
// the limit holds across process restarts and replicas. When Redis is
// unreachable the request is allowed through.
func RateLimit(client *redis.Client, cfg RateLimitConfig, metrics rateLimitObserver, logger *zap.Logger) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		cfg.Requests = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.FullPath(), claims.UserID)
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Warn("failed to set rate limit window", zap.Error(err))
			}
		}

		if count > int64(cfg.Requests) {
			if metrics != nil {
				metrics.ObserveRateLimitRejection()
			}
			ttl, err := client.TTL(ctx, key).Result()
			if err == nil && ttl > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			}
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
