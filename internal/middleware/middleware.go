package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/models"
)

const (
	RequestIDKey = "requestId"
	UserKey      = "user"
)

// RequestID tags every request with a correlation id, honoring one supplied
// by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// StructuredLogger emits one log line per request.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"requestId", c.GetString(RequestIDKey),
			"clientIp", c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	}
}

// ErrorHandler logs errors collected during the request. Responses are
// already written by the handlers; this is purely for observability.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			logger.Error("request error",
				"error", ginErr.Err,
				"path", c.Request.URL.Path,
				"requestId", c.GetString(RequestIDKey),
			)
		}
	}
}

// Auth requires a valid bearer token and loads the account into the context.
func Auth(jwtSecret string, users models.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtSecret, users)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the account when a valid bearer token is present but
// lets anonymous requests through. Public listings use it so admins see
// unapproved records.
func OptionalAuth(jwtSecret string, users models.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := resolveUser(c, jwtSecret, users); ok {
			c.Set(UserKey, user)
		}
		c.Next()
	}
}

// AdminOnly rejects non-admin accounts. It must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil for anonymous
// requests.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func resolveUser(c *gin.Context, jwtSecret string, users models.UserRepo) (*models.User, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	claims, err := helpers.ValidateToken(jwtSecret, tokenStr)
	if err != nil {
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, false
	}
	user, err := users.GetUserByID(c.Request.Context(), id)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}
