package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

// TaskService defines the task lifecycle operations
type TaskService interface {
	GetTask(ctx context.Context, id uuid.UUID) (*dto.TaskDetailResponse, error)
	ListTasks(ctx context.Context, filter dto.TaskListFilter) ([]dto.TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, actor authz.Actor, id uuid.UUID) error

	UploadAttachment(ctx context.Context, actor authz.Actor, taskID uuid.UUID, link string) (*dto.AttachmentResponse, error)
	ListAttachments(ctx context.Context, taskID uuid.UUID) ([]dto.AttachmentResponse, error)
	PresignEvidenceUpload(ctx context.Context, actor authz.Actor, taskID uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error)

	AddComment(ctx context.Context, actor authz.Actor, taskID uuid.UUID, comment string) (*dto.CommentResponse, error)
	GetComments(ctx context.Context, taskID uuid.UUID) ([]dto.CommentResponse, error)
}

type taskServiceImpl struct {
	tx             repository.Transactor
	taskRepo       repository.TaskRepository
	featureRepo    repository.FeatureRepository
	attachmentRepo repository.AttachmentRepository
	commentRepo    repository.CommentRepository
	changeLogRepo  repository.ChangeLogRepository
	catalog        CatalogService
	evidence       client.EvidenceStore
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(
	tx repository.Transactor,
	taskRepo repository.TaskRepository,
	featureRepo repository.FeatureRepository,
	attachmentRepo repository.AttachmentRepository,
	commentRepo repository.CommentRepository,
	changeLogRepo repository.ChangeLogRepository,
	catalog CatalogService,
	evidence client.EvidenceStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) TaskService {
	return &taskServiceImpl{
		tx:             tx,
		taskRepo:       taskRepo,
		featureRepo:    featureRepo,
		attachmentRepo: attachmentRepo,
		commentRepo:    commentRepo,
		changeLogRepo:  changeLogRepo,
		catalog:        catalog,
		evidence:       evidence,
		metrics:        m,
		logger:         logger,
	}
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*dto.TaskDetailResponse, error) {
	task, err := s.taskRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Task")
	}
	resp := dto.NewTaskDetailResponse(task)
	return &resp, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, filter dto.TaskListFilter) ([]dto.TaskResponse, error) {
	if filter.Status != "" && !domain.TaskStatus(filter.Status).IsValid() {
		return nil, response.NewValidationError("Invalid task status", filter.Status)
	}
	tasks, err := s.taskRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, internalError("list tasks", err)
	}
	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, dto.NewTaskResponse(&tasks[i]))
	}
	return result, nil
}

// UpdateTaskStatus moves a task to any status. Managers may always do so; otherwise
// the actor needs the task type's approver role, or, when the type has no approver,
// must be the feature's creator.
func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*dto.TaskResponse, error) {
	newStatus := domain.TaskStatus(status)
	if !newStatus.IsValid() {
		return nil, response.NewValidationError("Invalid task status", status)
	}

	var (
		task    *domain.Task
		changed bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.taskRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Task")
		}
		if err := s.authorizeStatusChange(ctx, actor, task); err != nil {
			return err
		}
		if task.Status == newStatus {
			return nil
		}

		previous := task.Status
		if err := s.taskRepo.UpdateStatus(ctx, task.ID, newStatus); err != nil {
			return lookupError(err, "Task")
		}
		task.Status = newStatus
		changed = true
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityTask, task.ID, actor,
			domain.ActionTaskStatusChanged, map[string]interface{}{
				"task_type": task.KeyName(),
				"from":      previous,
				"to":        newStatus,
			})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.RecordTaskStatusChange(string(newStatus))
		s.logger.Info("Task status changed",
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", task.KeyName()),
			zap.String("status", string(newStatus)),
			zap.String("actor", actor.Username))
	}

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *taskServiceImpl) authorizeStatusChange(ctx context.Context, actor authz.Actor, task *domain.Task) error {
	if actor.HasRole(authz.Managers...) {
		return nil
	}

	approver, err := s.catalog.ApproverRole(ctx, task.TaskTypeID)
	if err != nil {
		return err
	}
	if approver != nil {
		return authz.RequireRole(actor, approver.Name, authz.Managers...)
	}

	feature, err := s.featureRepo.FindByID(ctx, task.FeatureID)
	if err != nil {
		return lookupError(err, "Feature")
	}
	if actor.Is(feature.CreatorID) {
		return nil
	}
	return response.NewForbiddenError(authz.MsgInsufficientPermissions,
		"required role: "+strings.Join(authz.Managers, " or ")+" or feature creator")
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}

	var removed []domain.AttachmentLink
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.taskRepo.FindByIDForUpdate(ctx, id); err != nil {
			return lookupError(err, "Task")
		}
		var err error
		if removed, err = s.attachmentRepo.FindByTaskID(ctx, id); err != nil {
			return internalError("load attachments", err)
		}
		if err := s.taskRepo.DeleteByIDs(ctx, []uuid.UUID{id}); err != nil {
			return internalError("delete task", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	removeEvidence(ctx, s.evidence, removed, s.logger)
	return nil
}

// UploadAttachment records an http(s) evidence link. An open task advances to
// in_progress in the same transaction without an approver check.
func (s *taskServiceImpl) UploadAttachment(ctx context.Context, actor authz.Actor, taskID uuid.UUID, link string) (*dto.AttachmentResponse, error) {
	link = strings.TrimSpace(link)

	var (
		attachment *domain.AttachmentLink
		advanced   bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.taskRepo.FindByIDForUpdate(ctx, taskID)
		if err != nil {
			return lookupError(err, "Task")
		}
		if task.Status == domain.TaskStatusDone {
			return response.NewConflictError("task already done", "")
		}
		if !isHTTPLink(link) {
			return response.NewValidationError("Link must start with http:// or https://", link)
		}

		if task.Status == domain.TaskStatusOpen {
			if err := s.taskRepo.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress); err != nil {
				return lookupError(err, "Task")
			}
			advanced = true
			if err := recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityTask, task.ID, actor,
				domain.ActionTaskStatusChanged, map[string]interface{}{
					"task_type": task.KeyName(),
					"from":      domain.TaskStatusOpen,
					"to":        domain.TaskStatusInProgress,
					"automatic": true,
				}); err != nil {
				return err
			}
		}

		attachment = &domain.AttachmentLink{TaskID: task.ID, Link: link}
		if actor.ID != uuid.Nil {
			uploader := actor.ID
			attachment.UploadedBy = &uploader
		}
		if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
			return internalError("create attachment", err)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityTask, task.ID, actor,
			domain.ActionAttachmentUploaded, map[string]interface{}{"link": link})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementAttachmentUploaded()
	if advanced {
		s.metrics.RecordTaskStatusChange(string(domain.TaskStatusInProgress))
	}

	resp := dto.NewAttachmentResponse(attachment)
	return &resp, nil
}

func (s *taskServiceImpl) ListAttachments(ctx context.Context, taskID uuid.UUID) ([]dto.AttachmentResponse, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, internalError("list attachments", err)
	}
	result := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		result = append(result, dto.NewAttachmentResponse(&attachments[i]))
	}
	return result, nil
}

// PresignEvidenceUpload returns an upload URL for an evidence file. The returned
// file URL is then attached with UploadAttachment.
func (s *taskServiceImpl) PresignEvidenceUpload(ctx context.Context, actor authz.Actor, taskID uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error) {
	if s.evidence == nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Evidence storage is not configured", "")
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, lookupError(err, "Task")
	}
	if task.Status == domain.TaskStatusDone {
		return nil, response.NewConflictError("task already done", "")
	}

	upload, err := s.evidence.PresignUpload(ctx, task.ID, req.FileName, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to presign evidence upload",
			zap.String("task_id", task.ID.String()),
			zap.String("actor", actor.Username),
			zap.Error(err))
		return nil, internalError("generate upload URL", err)
	}

	return &dto.PresignedURLResponse{
		UploadURL: upload.UploadURL,
		FileKey:   upload.FileKey,
		FileURL:   upload.FileURL,
		ExpiresAt: upload.ExpiresAt,
	}, nil
}

func (s *taskServiceImpl) AddComment(ctx context.Context, actor authz.Actor, taskID uuid.UUID, comment string) (*dto.CommentResponse, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, response.NewValidationError("Comment is required", "")
	}
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}

	c := &domain.TaskComment{TaskID: taskID, UserID: actor.ID, Comment: comment}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, internalError("create comment", err)
	}
	resp := dto.NewCommentResponse(c)
	return &resp, nil
}

func (s *taskServiceImpl) GetComments(ctx context.Context, taskID uuid.UUID) ([]dto.CommentResponse, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, internalError("list comments", err)
	}
	result := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, dto.NewCommentResponse(&comments[i]))
	}
	return result, nil
}

func (s *taskServiceImpl) ensureTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.taskRepo.FindByID(ctx, id); err != nil {
		return lookupError(err, "Task")
	}
	return nil
}
