package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/response"
)

// For any role and any approver-gated task, a non-creator may change the status
// exactly when the role is the approver or a manager role.
func TestProperty_ApproverGatesStatusChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	feature := env.createFeature(t, env.actor(t, domain.RoleUser), "Gated", "No-toggle-required")

	roleNames := []string{domain.RoleAdmin, domain.RoleUser, domain.RoleReleaseManager, domain.RoleReviewer, domain.RoleTester}
	actors := make([]authz.Actor, len(roleNames))
	for i, name := range roleNames {
		actors[i] = env.actor(t, name)
	}
	approvers := map[string]string{"uxui": domain.RoleReviewer, "test": domain.RoleTester}
	gated := []string{"uxui", "test"}
	statuses := []domain.TaskStatus{domain.TaskStatusOpen, domain.TaskStatusInProgress, domain.TaskStatusReview, domain.TaskStatusDone}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("status change allowed iff approver or manager", prop.ForAll(
		func(roleIdx, keyIdx, statusIdx int) bool {
			actor := actors[roleIdx]
			key := gated[keyIdx]
			task := taskByKey(t, feature, key)

			_, err := env.tasks.UpdateTaskStatus(ctx, actor, task.ID, string(statuses[statusIdx]))
			allowed := actor.Role == approvers[key] || authz.HasRole(actor.Role, authz.Managers...)
			if allowed {
				return err == nil
			}
			return response.HasCode(err, response.ErrCodeForbidden)
		},
		gen.IntRange(0, len(roleNames)-1),
		gen.IntRange(0, len(gated)-1),
		gen.IntRange(0, len(statuses)-1),
	))

	properties.TestingRun(t)
}

func TestUpdateTaskStatus_NoApproverFallsBackToCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	feature := env.createFeature(t, owner, "Analytics events", "Review-exempt")
	analytic := taskByKey(t, feature, "analytic")

	updated, err := env.tasks.UpdateTaskStatus(ctx, owner, analytic.ID, string(domain.TaskStatusReview))
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskStatusReview), updated.Status)

	_, err = env.tasks.UpdateTaskStatus(ctx, env.actor(t, domain.RoleReviewer), analytic.ID, string(domain.TaskStatusDone))
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeForbidden, appErr.Code)
	assert.Equal(t, "required role: admin or release_manager or feature creator", appErr.Details)

	// any direction is allowed
	updated, err = env.tasks.UpdateTaskStatus(ctx, env.manager, analytic.ID, string(domain.TaskStatusOpen))
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskStatusOpen), updated.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.TaskStatusChangesTotal.WithLabelValues("open")))
}

func TestUpdateTaskStatus_ApproverRequiredEvenForCreator(t *testing.T) {
	env := newTestEnv(t)
	owner := env.actor(t, domain.RoleUser)
	feature := env.createFeature(t, owner, "Design refresh", "No-toggle-required")

	_, err := env.tasks.UpdateTaskStatus(context.Background(), owner, taskByKey(t, feature, "uxui").ID, string(domain.TaskStatusDone))
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeForbidden, appErr.Code)
	assert.Contains(t, appErr.Details, domain.RoleReviewer)
}

func TestUpdateTaskStatus_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.UpdateTaskStatus(ctx, env.manager, uuid.New(), "finished")
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)

	_, err = env.tasks.UpdateTaskStatus(ctx, env.manager, uuid.New(), string(domain.TaskStatusDone))
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestUploadAttachment_AdvancesOpenTaskOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	feature := env.createFeature(t, owner, "Evidence", "Review-exempt")
	task := taskByKey(t, feature, "test")

	for _, link := range []string{"https://ci.example.com/run/1", "http://ci.example.com/run/2"} {
		attachment, err := env.tasks.UploadAttachment(ctx, owner, task.ID, link)
		require.NoError(t, err)
		assert.Equal(t, link, attachment.Link)
		require.NotNil(t, attachment.UploadedBy)
		assert.Equal(t, owner.ID, *attachment.UploadedBy)
	}

	detail, err := env.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskStatusInProgress), detail.Status)
	assert.Len(t, detail.Attachments, 2)

	var automatic int64
	require.NoError(t, env.db.Model(&domain.ChangeLog{}).
		Where("entity_id = ? AND action = ?", task.ID, domain.ActionTaskStatusChanged).Count(&automatic).Error)
	assert.Equal(t, int64(1), automatic)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.AttachmentsUploadedTotal))
}

func TestUploadAttachment_KeepsReviewStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	task := taskByKey(t, env.createFeature(t, owner, "Reviewed", "Review-exempt"), "analytic")

	_, err := env.tasks.UpdateTaskStatus(ctx, owner, task.ID, string(domain.TaskStatusReview))
	require.NoError(t, err)
	_, err = env.tasks.UploadAttachment(ctx, owner, task.ID, "https://example.com/report.pdf")
	require.NoError(t, err)

	detail, err := env.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskStatusReview), detail.Status)
}

func TestUploadAttachment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	feature := env.createFeature(t, owner, "Rejections", "Review-exempt")
	open := taskByKey(t, feature, "analytic")
	done := taskByKey(t, feature, "test")
	_, err := env.tasks.UpdateTaskStatus(ctx, env.manager, done.ID, string(domain.TaskStatusDone))
	require.NoError(t, err)

	tests := []struct {
		name     string
		taskID   uuid.UUID
		link     string
		wantCode string
	}{
		{"ftp link", open.ID, "ftp://files.example.com/a.zip", response.ErrCodeValidation},
		{"bare text", open.ID, "report.pdf", response.ErrCodeValidation},
		{"done task", done.ID, "https://example.com/late.png", response.ErrCodeConflict},
		{"unknown task", uuid.New(), "https://example.com/a.png", response.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.UploadAttachment(ctx, owner, tt.taskID, tt.link)
			assert.True(t, response.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	detail, err := env.tasks.GetTask(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskStatusOpen), detail.Status)
	assert.Empty(t, detail.Attachments)
}

func TestPresignEvidenceUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	task := taskByKey(t, env.createFeature(t, owner, "Screenshots", "Review-exempt"), "test")

	presigned, err := env.tasks.PresignEvidenceUpload(ctx, owner, task.ID, &dto.PresignedURLRequest{FileName: "shot.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.Contains(t, presigned.UploadURL, "X-Amz-Signature")
	assert.Equal(t, env.evidence.GetFileURL(presigned.FileKey), presigned.FileURL)

	_, err = env.tasks.UploadAttachment(ctx, owner, task.ID, presigned.FileURL)
	require.NoError(t, err)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	task := taskByKey(t, env.createFeature(t, owner, "Commented", "Review-exempt"), "test")

	_, err := env.tasks.AddComment(ctx, owner, task.ID, "  ")
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)

	comment, err := env.tasks.AddComment(ctx, owner, task.ID, "Looks good on staging")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, comment.UserID)

	comments, err := env.tasks.GetComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Looks good on staging", comments[0].Comment)

	_, err = env.tasks.GetComments(ctx, uuid.New())
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}

func TestListTasks_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	first := env.createFeature(t, owner, "Alpha", "Review-exempt")
	env.createFeature(t, owner, "Beta", "No-toggle-required")
	_, err := env.tasks.UpdateTaskStatus(ctx, env.manager, taskByKey(t, first, "test").ID, string(domain.TaskStatusReview))
	require.NoError(t, err)

	tasks, err := env.tasks.ListTasks(ctx, dto.TaskListFilter{KeyName: "test"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = env.tasks.ListTasks(ctx, dto.TaskListFilter{Status: string(domain.TaskStatusReview)})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].FeatureID)

	tasks, err = env.tasks.ListTasks(ctx, dto.TaskListFilter{FeatureName: "Beta"})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.actor(t, domain.RoleUser)
	task := taskByKey(t, env.createFeature(t, owner, "Trimmed", "Review-exempt"), "feature_toggle")
	_, err := env.tasks.UploadAttachment(ctx, owner, task.ID, env.evidence.GetFileURL("evidence/t.png"))
	require.NoError(t, err)
	_, err = env.tasks.AddComment(ctx, owner, task.ID, "not needed")
	require.NoError(t, err)

	err = env.tasks.DeleteTask(ctx, owner, task.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden), "got %v", err)

	require.NoError(t, env.tasks.DeleteTask(ctx, env.manager, task.ID))
	assert.Equal(t, []string{"evidence/t.png"}, env.evidence.DeletedKeys)
	_, err = env.tasks.GetTask(ctx, task.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound), "got %v", err)
}
