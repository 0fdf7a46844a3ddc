package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"release-tracker-api/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Username:  "alice",
		Role:      &domain.Role{Name: domain.RoleTester},
	}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := testUser()

	signed, issued, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, "alice", actor.Username)
	assert.Equal(t, domain.RoleTester, actor.Role)
}

func TestTokenManager_RejectsInvalidTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenManager("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		claims := &Claims{UserID: uuid.NewString(), RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_ActorRequiresUUID(t *testing.T) {
	_, err := (&Claims{UserID: "42"}).Actor()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "a", time.Minute))
	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = store.IsRevoked(ctx, "b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = store.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "c", 0))
	revoked, _ = store.IsRevoked(ctx, "c")
	assert.False(t, revoked)
}

func TestNewRevocationStore_FallsBackToMemory(t *testing.T) {
	_, ok := NewRevocationStore(nil).(*MemoryRevocationStore)
	assert.True(t, ok)
}
