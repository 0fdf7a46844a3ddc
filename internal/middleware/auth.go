package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/response"
	"release-tracker-api/internal/util"
)

const revocationCheckTimeout = 5 * time.Second

// Auth returns a middleware that verifies bearer tokens and rejects revoked ones.
// The caller's actor and claims are stored in the gin context.
func Auth(tokens *auth.TokenManager, revocations auth.RevocationStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		// "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), revocationCheckTimeout)
		defer cancel()

		revoked, err := revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Error("Failed to check token revocation", zap.Error(err))
			response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Unable to verify token")
			return
		}
		if revoked {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Token has been revoked")
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid token claims")
			return
		}

		c.Set(util.ContextKeyActor, actor)
		c.Set(util.ContextKeyClaims, claims)
		c.Next()
	}
}
