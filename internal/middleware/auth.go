package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/logging"
	"github.com/larder-app/larder/backend/internal/types"
)

// UserIDKey is the gin context key holding the authenticated uuid.UUID.
const UserIDKey = "user_id"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// ok is false when the header is present but malformed.
func bearerToken(c *gin.Context) (token string, present, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

// authenticate stores the principal on both the gin context and the request context.
func authenticate(c *gin.Context, userID uuid.UUID) {
	c.Set(UserIDKey, userID)
	ctx := identity.WithUser(c.Request.Context(), userID)
	logger := logging.FromContext(ctx).With("user_id", userID.String())
	ctx = logging.WithLogger(ctx, logger)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   apperr.ErrUnauthenticated.Code,
		"message": message,
	})
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			abortUnauthenticated(c, "missing authorization header")
			return
		}
		if !ok {
			abortUnauthenticated(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthenticated(c, err.Error())
			return
		}

		authenticate(c, claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a valid token is sent and
// otherwise continues anonymously. A bad token is not an error here.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, ok := bearerToken(c)
		if ok {
			if claims, err := validator.ValidateToken(token); err == nil {
				authenticate(c, claims.UserID)
			} else {
				logging.FromContext(c.Request.Context()).Debug("ignoring invalid token on optional auth route", "error", err)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
