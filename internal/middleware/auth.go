package middleware

import (
	"errors"
	"net/http"

	"backend/internal/authz"
	"backend/internal/repository"
	"backend/internal/session"
	"backend/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityKey is where the authenticated identity lives on the gin context.
const IdentityKey = "identity"

// AuthMiddleware creates a Gin middleware that authenticates the session
// cookie. It does one token decode and one user lookup; the lookup also
// refuses tokens whose subject row was deleted after issuance.
func AuthMiddleware(codec *token.Codec, users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil || raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		userID, err := codec.Verify(token.KindSession, raw)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
				c.Abort()
				return
			}
			logger.Warn("Invalid session token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		user, err := users.GetByID(userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
				c.Abort()
				return
			}
			logger.Error("Failed to load session user", zap.Int64("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			c.Abort()
			return
		}

		c.Set(IdentityKey, authz.Identity{UserID: user.ID, Role: user.Role})

		c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthMiddleware. It must
// only be called on routes behind the middleware.
func IdentityFrom(c *gin.Context) authz.Identity {
	return c.MustGet(IdentityKey).(authz.Identity)
}
