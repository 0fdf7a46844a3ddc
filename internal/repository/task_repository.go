package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByFeatureIDForUpdate(ctx context.Context, featureID uuid.UUID) ([]domain.Task, error)
	FindAll(ctx context.Context, filter dto.TaskListFilter) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

func (r *taskRepositoryImpl) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return conn(ctx, r.db).Omit("TaskType", "Attachments", "Comments").Create(&tasks).Error
}

// FindByID loads a task with its task type
func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := conn(ctx, r.db).Preload("TaskType").Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindDetailByID loads a task with its task type, attachments and comments
func (r *taskRepositoryImpl) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := conn(ctx, r.db).
		Preload("TaskType").
		Preload("Attachments", orderByCreatedAt).
		Preload("Comments", orderByCreatedAt).
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDForUpdate loads and locks a task row
func (r *taskRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := forUpdate(conn(ctx, r.db)).Preload("TaskType").Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByFeatureIDForUpdate loads and locks every task of a feature
func (r *taskRepositoryImpl) FindByFeatureIDForUpdate(ctx context.Context, featureID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := forUpdate(conn(ctx, r.db)).
		Preload("TaskType").
		Where("feature_id = ?", featureID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAll lists tasks matching filter; FeatureName and KeyName match exactly
func (r *taskRepositoryImpl) FindAll(ctx context.Context, filter dto.TaskListFilter) ([]domain.Task, error) {
	query := conn(ctx, r.db).Model(&domain.Task{}).Preload("TaskType")
	if filter.FeatureID != nil {
		query = query.Where("tasks.feature_id = ?", *filter.FeatureID)
	}
	if filter.FeatureName != "" {
		query = query.Joins("JOIN features ON features.id = tasks.feature_id").
			Where("features.name = ?", filter.FeatureName)
	}
	if filter.KeyName != "" {
		query = query.Joins("JOIN task_types ON task_types.id = tasks.task_type_id").
			Where("task_types.key_name = ?", filter.KeyName)
	}
	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}

	var tasks []domain.Task
	if err := query.Order("tasks.created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus changes the status of a task and returns gorm.ErrRecordNotFound if it vanished
func (r *taskRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	result := conn(ctx, r.db).Model(&domain.Task{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByIDs removes tasks with their attachments and comments
func (r *taskRepositoryImpl) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	return deleteTasks(conn(ctx, r.db), ids)
}

func deleteTasks(db *gorm.DB, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := db.Where("task_id IN ?", taskIDs).Delete(&domain.AttachmentLink{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_id IN ?", taskIDs).Delete(&domain.TaskComment{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", taskIDs).Delete(&domain.Task{}).Error
}
