package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

const msgInvalidCredentials = "Invalid username or password"

// AuthService exchanges credentials for tokens and revokes them
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authServiceImpl struct {
	userRepo    repository.UserRepository
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	revocations auth.RevocationStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		metrics:     m,
		logger:      logger,
	}
}

// Login verifies credentials. Unknown users and wrong passwords are indistinguishable.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeUnauthorized, msgInvalidCredentials, "")
		}
		return nil, internalError("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		s.metrics.RecordLogin(false)
		return nil, response.NewAppError(response.ErrCodeUnauthorized, msgInvalidCredentials, "")
	}

	signed, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, internalError("issue token", err)
	}
	s.metrics.RecordLogin(true)
	s.logger.Info("User logged in", zap.String("username", user.Username))

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Logout revokes the presented token until it would have expired anyway
func (s *authServiceImpl) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return internalError("revoke token", err)
	}
	return nil
}
