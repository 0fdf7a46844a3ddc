package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/response"
)

func newTestAuthService(t *testing.T, repo *MockUserRepository) (AuthService, *auth.TokenManager, auth.RevocationStore, *metrics.Metrics) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	return NewAuthService(repo, tokens, revocations, m, zap.NewNop()), tokens, revocations, m
}

func seededUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hashed, err := HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		BaseModel:      domain.BaseModel{ID: uuid.New()},
		Username:       "alice",
		HashedPassword: hashed,
		Role:           &domain.Role{Name: domain.RoleTester},
	}
}

func TestLogin_IssuesBearerToken(t *testing.T) {
	user := seededUser(t, "correct-horse")
	repo := &MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc, tokens, _, m := newTestAuthService(t, repo)

	token, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims, err := tokens.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, domain.RoleTester, claims.Role)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues("success")))
}

func TestLogin_Failures(t *testing.T) {
	user := seededUser(t, "correct-horse")

	tests := []struct {
		name     string
		findErr  error
		password string
		wantCode string
	}{
		{"wrong password", nil, "battery-staple", response.ErrCodeUnauthorized},
		{"unknown user", gorm.ErrRecordNotFound, "correct-horse", response.ErrCodeUnauthorized},
		{"database down", errors.New("connection refused"), "correct-horse", response.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockUserRepository{
				FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
					if tt.findErr != nil {
						return nil, tt.findErr
					}
					return user, nil
				},
			}
			svc, _, _, m := newTestAuthService(t, repo)

			_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: tt.password})
			assert.True(t, response.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues("failure")))
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	user := seededUser(t, "pw123456")
	svc, tokens, revocations, _ := newTestAuthService(t, &MockUserRepository{})
	ctx := context.Background()

	_, claims, err := tokens.Issue(user)
	require.NoError(t, err)

	revoked, err := revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err = revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
