package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/response"
)

func releaseRequest(env *testEnv, name string) *dto.CreateReleaseRequest {
	return &dto.CreateReleaseRequest{
		Name:          name,
		PlatformID:    env.release.PlatformID,
		ChannelID:     env.release.ChannelID,
		ReleaseTypeID: env.release.ReleaseTypeID,
	}
}

func TestCreateRelease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.releases.CreateRelease(ctx, env.manager, releaseRequest(env, "2024.05"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.ReleaseStatusOpen), created.Status)

	_, err = env.releases.CreateRelease(ctx, env.manager, releaseRequest(env, "2024.05"))
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)

	_, err = env.releases.CreateRelease(ctx, env.actor(t, domain.RoleUser), releaseRequest(env, "2024.06"))
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden), "got %v", err)

	req := releaseRequest(env, "2024.07")
	req.PlatformID = uuid.New()
	_, err = env.releases.CreateRelease(ctx, env.manager, req)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)

	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	req = releaseRequest(env, "2024.08")
	req.StartDate, req.EndDate = &start, &end
	_, err = env.releases.CreateRelease(ctx, env.manager, req)
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)
}

func TestGetRelease_IncludesFeatureTasks(t *testing.T) {
	env := newTestEnv(t)
	env.createFeature(t, env.actor(t, domain.RoleUser), "Nested", "No-toggle-required")

	detail, err := env.releases.GetRelease(context.Background(), env.release.ID)
	require.NoError(t, err)
	require.Len(t, detail.Features, 1)
	assert.Len(t, detail.Features[0].Tasks, 3)
}

func TestUpdateRelease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := env.newRelease(t, "2024.09", domain.ReleaseStatusOpen)

	status := string(domain.ReleaseStatusDone)
	updated, err := env.releases.UpdateRelease(ctx, env.manager, env.release.ID, &dto.UpdateReleaseRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, updated.Status)

	taken := other.Name
	_, err = env.releases.UpdateRelease(ctx, env.manager, env.release.ID, &dto.UpdateReleaseRequest{Name: &taken})
	assert.True(t, response.HasCode(err, response.ErrCodeConflict), "got %v", err)

	bad := "archived"
	_, err = env.releases.UpdateRelease(ctx, env.manager, env.release.ID, &dto.UpdateReleaseRequest{Status: &bad})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)
}

func TestListReleases(t *testing.T) {
	env := newTestEnv(t)
	env.newRelease(t, "2024.10", domain.ReleaseStatusDone)

	page, err := env.releases.ListReleases(context.Background(), dto.ReleaseListFilter{Status: string(domain.ReleaseStatusDone)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = env.releases.ListReleases(context.Background(), dto.ReleaseListFilter{Name: "2024"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestDeleteRelease_RemovesFeaturesAndEvidence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	feature := env.createFeature(t, owner, "Doomed", "Review-exempt")
	_, err := env.tasks.UploadAttachment(ctx, owner, taskByKey(t, feature, "test").ID, env.evidence.GetFileURL("evidence/r.png"))
	require.NoError(t, err)
	_, err = env.tasks.UploadAttachment(ctx, owner, taskByKey(t, feature, "test").ID, "https://external.example.com/log")
	require.NoError(t, err)

	require.NoError(t, env.releases.DeleteRelease(ctx, env.manager, env.release.ID))
	assert.Equal(t, []string{"evidence/r.png"}, env.evidence.DeletedKeys)

	var features int64
	require.NoError(t, env.db.Model(&domain.Feature{}).Count(&features).Error)
	assert.Zero(t, features)

	_, err = env.releases.GetRelease(ctx, env.release.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}
