package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/hirehub/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "hirehub:rate_limit:"

// RateLimit caps anonymous callers at max requests per window and IP.
// Authenticated callers are never limited. Redis errors let the request through.
func RateLimit(rc *pkgredis.Client, max int64, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("%s%s:%d", rateLimitPrefix, ip, bucket)

		count, err := rc.IncrWithin(c.Request.Context(), key, window+time.Second)
		if err != nil {
			c.Next()
			return
		}

		if count > max {
			log.Warn("rate limited", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds()+0.5)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      0,
				"code":    http.StatusTooManyRequests,
				"message": "Request was throttled.",
			})
			return
		}

		c.Next()
	}
}
