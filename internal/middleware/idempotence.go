package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/hirehub/core/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
)

const (
	idempotenceHeader = "X-Idempotence-Key"
	idempotenceTTL    = 60 * time.Second
	idempotencePrefix = "hirehub:idempotence:"

	idempotencePending = "0"
	idempotenceDone    = "1"
)

// Idempotence rejects a repeated POST or PUT while the first one is still
// running or within a minute of it succeeding. Requests are keyed by the
// X-Idempotence-Key header, or by a hash of the request and its caller.
func Idempotence(rc *pkgredis.Client, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[normalizePath(p)] = struct{}{}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut:
		default:
			c.Next()
			return
		}
		if _, ok := skipped[normalizePath(c.Request.URL.Path)]; ok {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := idempotencePrefix + key
		ctx := c.Request.Context()

		acquired, err := rc.SetNX(ctx, redisKey, idempotencePending, idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			msg := "The same request can only be sent once within 60 seconds."
			if val, _ := rc.Get(ctx, redisKey); val == idempotencePending {
				msg = "The same request is already being processed."
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      0,
				"code":    http.StatusConflict,
				"message": msg,
			})
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = rc.Set(ctx, redisKey, idempotenceDone, redis.KeepTTL)
		} else {
			_ = rc.Del(ctx, redisKey)
		}
	}
}

func normalizePath(p string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(p)), "/")
}

// resolveIdempotenceKey returns the idempotence key for the current request.
func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := strings.TrimSpace(c.GetHeader(idempotenceHeader)); hdr != "" {
		return hdr, nil
	}

	var body []byte
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		body = raw
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	ua := c.Request.UserAgent()
	ip := c.ClientIP()
	token := extractToken(c)

	if len(body) == 0 && ua == "" && ip == "" && token == "" {
		return "", nil
	}

	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%s", c.Request.Method, c.Request.URL.String(), body, ua, ip, token)
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
