package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// AttachmentRepository defines the interface for evidence link data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.AttachmentLink) error
	FindByTaskID(ctx context.Context, taskID uuid.UUID) ([]domain.AttachmentLink, error)
	FindByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]domain.AttachmentLink, error)
	FindByFeatureID(ctx context.Context, featureID uuid.UUID) ([]domain.AttachmentLink, error)
	FindByReleaseID(ctx context.Context, releaseID uuid.UUID) ([]domain.AttachmentLink, error)
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

// Create creates a new attachment link
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.AttachmentLink) error {
	return conn(ctx, r.db).Create(attachment).Error
}

// FindByTaskID lists the links of a task, oldest first
func (r *attachmentRepositoryImpl) FindByTaskID(ctx context.Context, taskID uuid.UUID) ([]domain.AttachmentLink, error) {
	var attachments []domain.AttachmentLink
	if err := conn(ctx, r.db).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindByTaskIDs lists the links of several tasks
func (r *attachmentRepositoryImpl) FindByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]domain.AttachmentLink, error) {
	if len(taskIDs) == 0 {
		return []domain.AttachmentLink{}, nil
	}

	var attachments []domain.AttachmentLink
	if err := conn(ctx, r.db).
		Where("task_id IN ?", taskIDs).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindByFeatureID lists the links of every task of a feature
func (r *attachmentRepositoryImpl) FindByFeatureID(ctx context.Context, featureID uuid.UUID) ([]domain.AttachmentLink, error) {
	var attachments []domain.AttachmentLink
	if err := conn(ctx, r.db).
		Joins("JOIN tasks ON tasks.id = attachment_links.task_id").
		Where("tasks.feature_id = ?", featureID).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindByReleaseID lists the links of every task filed under a release
func (r *attachmentRepositoryImpl) FindByReleaseID(ctx context.Context, releaseID uuid.UUID) ([]domain.AttachmentLink, error) {
	var attachments []domain.AttachmentLink
	if err := conn(ctx, r.db).
		Joins("JOIN tasks ON tasks.id = attachment_links.task_id").
		Joins("JOIN features ON features.id = tasks.feature_id").
		Where("features.release_id = ?", releaseID).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// CommentRepository defines the interface for task comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TaskComment) error
	FindByTaskID(ctx context.Context, taskID uuid.UUID) ([]domain.TaskComment, error)
}

type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.TaskComment) error {
	return conn(ctx, r.db).Create(comment).Error
}

func (r *commentRepositoryImpl) FindByTaskID(ctx context.Context, taskID uuid.UUID) ([]domain.TaskComment, error) {
	var comments []domain.TaskComment
	if err := conn(ctx, r.db).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
