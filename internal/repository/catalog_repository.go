package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// TaskTypeRepository defines the interface for task type and approver data access
type TaskTypeRepository interface {
	Create(ctx context.Context, taskType *domain.TaskType) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskType, error)
	FindByKeyName(ctx context.Context, keyName string) (*domain.TaskType, error)
	FindByKeyNames(ctx context.Context, keyNames []string) ([]domain.TaskType, error)
	ExistsByKeyName(ctx context.Context, keyName string) (bool, error)
	FindAll(ctx context.Context) ([]domain.TaskType, error)
	CountTasks(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindApprover(ctx context.Context, taskTypeID uuid.UUID) (*domain.TaskTypeApprover, error)
	CreateApprover(ctx context.Context, approver *domain.TaskTypeApprover) error
	DeleteApprover(ctx context.Context, taskTypeID uuid.UUID) error
}

type taskTypeRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskTypeRepository creates a new instance of TaskTypeRepository
func NewTaskTypeRepository(db *gorm.DB) TaskTypeRepository {
	return &taskTypeRepositoryImpl{db: db}
}

func (r *taskTypeRepositoryImpl) Create(ctx context.Context, taskType *domain.TaskType) error {
	return conn(ctx, r.db).Omit("Approver").Create(taskType).Error
}

func (r *taskTypeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.TaskType, error) {
	var taskType domain.TaskType
	if err := conn(ctx, r.db).Preload("Approver.Role").Where("id = ?", id).First(&taskType).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

func (r *taskTypeRepositoryImpl) FindByKeyName(ctx context.Context, keyName string) (*domain.TaskType, error) {
	var taskType domain.TaskType
	if err := conn(ctx, r.db).Preload("Approver.Role").Where("key_name = ?", keyName).First(&taskType).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

// FindByKeyNames returns the task types whose key is listed, ordered by key
func (r *taskTypeRepositoryImpl) FindByKeyNames(ctx context.Context, keyNames []string) ([]domain.TaskType, error) {
	if len(keyNames) == 0 {
		return []domain.TaskType{}, nil
	}
	var taskTypes []domain.TaskType
	if err := conn(ctx, r.db).Where("key_name IN ?", keyNames).Order("key_name ASC").Find(&taskTypes).Error; err != nil {
		return nil, err
	}
	return taskTypes, nil
}

func (r *taskTypeRepositoryImpl) ExistsByKeyName(ctx context.Context, keyName string) (bool, error) {
	return existsBy(conn(ctx, r.db), &domain.TaskType{}, "key_name", keyName)
}

func (r *taskTypeRepositoryImpl) FindAll(ctx context.Context) ([]domain.TaskType, error) {
	var taskTypes []domain.TaskType
	if err := conn(ctx, r.db).Preload("Approver.Role").Order("key_name ASC").Find(&taskTypes).Error; err != nil {
		return nil, err
	}
	return taskTypes, nil
}

// CountTasks counts the tasks of this type across all features
func (r *taskTypeRepositoryImpl) CountTasks(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Task{}).Where("task_type_id = ?", id).Count(&count).Error
	return count, err
}

// Delete removes a task type, its approver and its feature type links
func (r *taskTypeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("task_type_id = ?", id).Delete(&domain.TaskTypeApprover{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_type_id = ?", id).Delete(&domain.FeatureTypeTaskType{}).Error; err != nil {
		return err
	}
	return deleteByID(db, &domain.TaskType{}, id)
}

// FindApprover returns gorm.ErrRecordNotFound when the task type has no approver
func (r *taskTypeRepositoryImpl) FindApprover(ctx context.Context, taskTypeID uuid.UUID) (*domain.TaskTypeApprover, error) {
	var approver domain.TaskTypeApprover
	if err := conn(ctx, r.db).Preload("Role").Where("task_type_id = ?", taskTypeID).First(&approver).Error; err != nil {
		return nil, err
	}
	return &approver, nil
}

func (r *taskTypeRepositoryImpl) CreateApprover(ctx context.Context, approver *domain.TaskTypeApprover) error {
	return conn(ctx, r.db).Omit("Role").Create(approver).Error
}

func (r *taskTypeRepositoryImpl) DeleteApprover(ctx context.Context, taskTypeID uuid.UUID) error {
	result := conn(ctx, r.db).Where("task_type_id = ?", taskTypeID).Delete(&domain.TaskTypeApprover{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FeatureTypeRepository defines the interface for feature type data access
type FeatureTypeRepository interface {
	Create(ctx context.Context, featureType *domain.FeatureType) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FeatureType, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.FeatureType, error)
	RequiredTaskTypes(ctx context.Context, featureTypeID uuid.UUID) ([]domain.TaskType, error)
	ReplaceTaskTypes(ctx context.Context, featureTypeID uuid.UUID, taskTypeIDs []uuid.UUID) error
	CountFeatures(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type featureTypeRepositoryImpl struct {
	db *gorm.DB
}

// NewFeatureTypeRepository creates a new instance of FeatureTypeRepository
func NewFeatureTypeRepository(db *gorm.DB) FeatureTypeRepository {
	return &featureTypeRepositoryImpl{db: db}
}

// Create inserts the feature type row; links are written by ReplaceTaskTypes
func (r *featureTypeRepositoryImpl) Create(ctx context.Context, featureType *domain.FeatureType) error {
	return conn(ctx, r.db).Omit("TaskTypes").Create(featureType).Error
}

// FindByID loads a feature type with its task types ordered by key
func (r *featureTypeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.FeatureType, error) {
	var featureType domain.FeatureType
	if err := conn(ctx, r.db).
		Preload("TaskTypes", orderTaskTypes).
		Preload("TaskTypes.Approver.Role").
		Where("id = ?", id).
		First(&featureType).Error; err != nil {
		return nil, err
	}
	return &featureType, nil
}

func (r *featureTypeRepositoryImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	return existsBy(conn(ctx, r.db), &domain.FeatureType{}, "name", name)
}

func (r *featureTypeRepositoryImpl) FindAll(ctx context.Context) ([]domain.FeatureType, error) {
	var featureTypes []domain.FeatureType
	if err := conn(ctx, r.db).
		Preload("TaskTypes", orderTaskTypes).
		Preload("TaskTypes.Approver.Role").
		Order("name ASC").
		Find(&featureTypes).Error; err != nil {
		return nil, err
	}
	return featureTypes, nil
}

// RequiredTaskTypes lists the task types linked to a feature type, ordered by key
func (r *featureTypeRepositoryImpl) RequiredTaskTypes(ctx context.Context, featureTypeID uuid.UUID) ([]domain.TaskType, error) {
	var taskTypes []domain.TaskType
	if err := conn(ctx, r.db).
		Joins("JOIN feature_type_task_types ftt ON ftt.task_type_id = task_types.id").
		Where("ftt.feature_type_id = ?", featureTypeID).
		Order("task_types.key_name ASC").
		Find(&taskTypes).Error; err != nil {
		return nil, err
	}
	return taskTypes, nil
}

// ReplaceTaskTypes rewrites the link set of a feature type
func (r *featureTypeRepositoryImpl) ReplaceTaskTypes(ctx context.Context, featureTypeID uuid.UUID, taskTypeIDs []uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("feature_type_id = ?", featureTypeID).Delete(&domain.FeatureTypeTaskType{}).Error; err != nil {
		return err
	}
	if len(taskTypeIDs) == 0 {
		return nil
	}
	links := make([]domain.FeatureTypeTaskType, 0, len(taskTypeIDs))
	for _, id := range taskTypeIDs {
		links = append(links, domain.FeatureTypeTaskType{FeatureTypeID: featureTypeID, TaskTypeID: id})
	}
	return db.Create(&links).Error
}

// CountFeatures counts the features of this type
func (r *featureTypeRepositoryImpl) CountFeatures(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Feature{}).Where("feature_type_id = ?", id).Count(&count).Error
	return count, err
}

func (r *featureTypeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("feature_type_id = ?", id).Delete(&domain.FeatureTypeTaskType{}).Error; err != nil {
		return err
	}
	return deleteByID(db, &domain.FeatureType{}, id)
}

func orderTaskTypes(db *gorm.DB) *gorm.DB {
	return db.Order("task_types.key_name ASC")
}
