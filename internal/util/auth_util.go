package util

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/response"
)

// Gin context keys set by the auth middleware
const (
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
)

// ExtractActor returns the authenticated caller. It writes a 401 and returns
// false when the request did not pass through the auth middleware.
func ExtractActor(c *gin.Context) (authz.Actor, bool) {
	value, exists := c.Get(ContextKeyActor)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Actor not found in context")
		return authz.Actor{}, false
	}
	actor, ok := value.(authz.Actor)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid actor in context")
		return authz.Actor{}, false
	}
	return actor, true
}

// ExtractClaims returns the verified token claims of the caller
func ExtractClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Token claims not found in context")
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid token claims in context")
		return nil, false
	}
	return claims, true
}
