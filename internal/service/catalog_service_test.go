package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/response"
)

func TestRequiredTaskTypes_OrderedByKey(t *testing.T) {
	env := newTestEnv(t)

	required, err := env.catalog.RequiredTaskTypes(context.Background(), env.featureTypes["Review-exempt"].ID)
	require.NoError(t, err)
	keys := make([]string, 0, len(required))
	for _, tt := range required {
		keys = append(keys, tt.KeyName)
	}
	assert.Equal(t, []string{"analytic", "feature_toggle", "test"}, keys)

	_, err = env.catalog.RequiredTaskTypes(context.Background(), uuid.New())
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestApprover_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	analytic := env.taskTypes["analytic"]

	role, err := env.catalog.ApproverRole(ctx, analytic.ID)
	require.NoError(t, err)
	assert.Nil(t, role)
	_, err = env.catalog.GetApprover(ctx, analytic.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)

	_, err = env.catalog.AssignApprover(ctx, env.actor(t, domain.RoleUser), analytic.ID, env.roles[domain.RoleTester].ID)
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden), "got %v", err)

	assigned, err := env.catalog.AssignApprover(ctx, env.manager, analytic.ID, env.roles[domain.RoleTester].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTester, assigned.Role.Name)

	_, err = env.catalog.AssignApprover(ctx, env.manager, analytic.ID, env.roles[domain.RoleReviewer].ID)
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)

	got, err := env.catalog.GetApprover(ctx, analytic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTester, got.Role.Name)

	require.NoError(t, env.catalog.RemoveApprover(ctx, env.manager, analytic.ID))
	role, err = env.catalog.ApproverRole(ctx, analytic.ID)
	require.NoError(t, err)
	assert.Nil(t, role)

	err = env.catalog.RemoveApprover(ctx, env.manager, analytic.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestAssignApprover_UnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.AssignApprover(ctx, env.manager, uuid.New(), env.roles[domain.RoleTester].ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
	_, err = env.catalog.AssignApprover(ctx, env.manager, env.taskTypes["analytic"].ID, uuid.New())
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestTaskTypes_CreateGetDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	optional := false

	created, err := env.catalog.CreateTaskType(ctx, env.manager, &dto.CreateTaskTypeRequest{
		KeyName: "security", Name: "Security review", IsRequired: &optional,
	})
	require.NoError(t, err)
	assert.False(t, created.IsRequired)

	_, err = env.catalog.CreateTaskType(ctx, env.manager, &dto.CreateTaskTypeRequest{KeyName: "security", Name: "again"})
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)

	byKey, err := env.catalog.GetTaskType(ctx, "security")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byKey.ID)
	byID, err := env.catalog.GetTaskType(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "security", byID.KeyName)

	uxui, err := env.catalog.GetTaskType(ctx, "uxui")
	require.NoError(t, err)
	require.NotNil(t, uxui.ApproverRole)
	assert.Equal(t, domain.RoleReviewer, *uxui.ApproverRole)

	require.NoError(t, env.catalog.DeleteTaskType(ctx, env.manager, created.ID))
	_, err = env.catalog.GetTaskType(ctx, "security")
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestDeleteTaskType_InUse(t *testing.T) {
	env := newTestEnv(t)
	env.createFeature(t, env.actor(t, domain.RoleUser), "Uses test", "Review-exempt")

	err := env.catalog.DeleteTaskType(context.Background(), env.manager, env.taskTypes["test"].ID)
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)
}

func TestFeatureTypes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateFeatureType(ctx, env.manager, &dto.CreateFeatureTypeRequest{
		Name: "Hotfix", TaskTypeKeys: []string{"test", "nope"},
	})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)

	hotfix, err := env.catalog.CreateFeatureType(ctx, env.manager, &dto.CreateFeatureTypeRequest{
		Name: "Hotfix", TaskTypeKeys: []string{"test", " test "},
	})
	require.NoError(t, err)
	require.Len(t, hotfix.TaskTypes, 1)
	assert.Equal(t, "test", hotfix.TaskTypes[0].KeyName)

	_, err = env.catalog.CreateFeatureType(ctx, env.manager, &dto.CreateFeatureTypeRequest{Name: "Hotfix"})
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)

	updated, err := env.catalog.SetFeatureTypeTaskTypes(ctx, env.manager, hotfix.ID, []string{"analytic", "test"})
	require.NoError(t, err)
	assert.Len(t, updated.TaskTypes, 2)

	all, err := env.catalog.ListFeatureTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, env.catalog.DeleteFeatureType(ctx, env.manager, hotfix.ID))

	env.createFeature(t, env.actor(t, domain.RoleUser), "Typed", "Review-exempt")
	err = env.catalog.DeleteFeatureType(ctx, env.manager, env.featureTypes["Review-exempt"].ID)
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)
}
