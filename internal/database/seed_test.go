package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"release-tracker-api/internal/domain"
)

func TestSeed_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	opts := SeedOptions{DefaultPassword: "secret"}

	require.NoError(t, Seed(ctx, db, opts, zap.NewNop()))
	require.NoError(t, Seed(ctx, db, opts, zap.NewNop()))

	counts := map[interface{}]int64{
		&domain.Role{}:                int64(len(domain.CanonicalRoles)),
		&domain.User{}:                3,
		&domain.Platform{}:            3,
		&domain.Channel{}:             2,
		&domain.TaskType{}:            4,
		&domain.FeatureType{}:         2,
		&domain.FeatureTypeTaskType{}: 6,
		&domain.TaskTypeApprover{}:    2,
	}
	for model, want := range counts {
		var got int64
		require.NoError(t, db.Model(model).Count(&got).Error)
		assert.Equal(t, want, got, "%T", model)
	}
}

func TestSeed_UsersGetRolesAndHashedPasswords(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(context.Background(), db, SeedOptions{DefaultPassword: "secret"}, zap.NewNop()))

	var manager domain.User
	require.NoError(t, db.Preload("Role").Where("username = ?", "manager").First(&manager).Error)
	assert.Equal(t, domain.RoleReleaseManager, manager.RoleName())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(manager.HashedPassword), []byte("secret")))
}

func TestSeed_FeatureTypeTaskTypes(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(context.Background(), db, SeedOptions{DefaultPassword: "secret"}, zap.NewNop()))

	var ft domain.FeatureType
	require.NoError(t, db.Preload("TaskTypes").Where("name = ?", "Review-exempt").First(&ft).Error)

	var keys []string
	for _, tt := range ft.TaskTypes {
		keys = append(keys, tt.KeyName)
	}
	assert.ElementsMatch(t, []string{"test", "analytic", "feature_toggle"}, keys)
}

func TestSeed_RequiresPassword(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, Seed(context.Background(), db, SeedOptions{}, zap.NewNop()))
}
