package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/response"
	"release-tracker-api/internal/util"
)

func setupAuthRouter(tokens *auth.TokenManager, revocations auth.RevocationStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Auth(tokens, revocations, zap.NewNop()), func(c *gin.Context) {
		actor, ok := util.ExtractActor(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, actor)
	})
	return router
}

func issueToken(t *testing.T, tokens *auth.TokenManager) (string, *auth.Claims, *domain.User) {
	t.Helper()
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Username:  "tess",
		Role:      &domain.Role{Name: domain.RoleTester},
	}
	signed, claims, err := tokens.Issue(user)
	require.NoError(t, err)
	return signed, claims, user
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	router := setupAuthRouter(tokens, auth.NewMemoryRevocationStore())
	signed, _, user := issueToken(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var actor authz.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, domain.RoleTester, actor.Role)
}

func TestAuth_Rejections(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	router := setupAuthRouter(tokens, revocations)

	signed, _, _ := issueToken(t, tokens)
	revokedToken, revokedClaims, _ := issueToken(t, tokens)
	require.NoError(t, revocations.Revoke(context.Background(), revokedClaims.ID, time.Hour))
	foreign, _, _ := issueToken(t, auth.NewTokenManager("other-secret", time.Hour))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + signed},
		{"empty token", "Bearer "},
		{"foreign signature", "Bearer " + foreign},
		{"revoked", "Bearer " + revokedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, response.ErrCodeUnauthorized, body.Error.Code)
		})
	}
}
