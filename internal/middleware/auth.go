package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/database"
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/pkg/jwt"
	"github.com/hirehub/core/internal/pkg/response"
	"github.com/hirehub/core/internal/serializer"
	"gorm.io/gorm"
)

const ContextKeyUserID = "user_id"

// Auth returns a middleware that enforces JWT authentication.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ValidateToken(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not block the request.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := ValidateToken(db, extractToken(c)); err == nil {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// ValidateToken validates a JWT and returns the id of the active user it names.
func ValidateToken(db *gorm.DB, rawToken string) (uint, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return 0, errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return 0, err
	}

	u, err := database.GetOrNone[models.UserModel](db, "id = ? AND is_active = ?", claims.UserID, true)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, errors.New("user not found or inactive")
	}
	return claims.UserID, nil
}

// CurrentUserID extracts the authenticated user ID from context, 0 when anonymous.
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(uint)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != 0
}

// Actor describes the caller for serializer audit stamping.
func Actor(c *gin.Context) serializer.Actor {
	if id := CurrentUserID(c); id != 0 {
		return serializer.UserActor(id)
	}
	return serializer.Anonymous()
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer or JWT prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	lower := strings.ToLower(token)
	for _, prefix := range []string{"bearer ", "jwt "} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(token[len(prefix):])
		}
	}
	return token
}
