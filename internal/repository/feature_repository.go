package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
)

// FeatureRepository defines the interface for feature data access
type FeatureRepository interface {
	Create(ctx context.Context, feature *domain.Feature) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Feature, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error)
	FindDetailByName(ctx context.Context, name string) (*domain.Feature, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter dto.FeatureListFilter) ([]domain.Feature, int64, error)
	Update(ctx context.Context, feature *domain.Feature) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type featureRepositoryImpl struct {
	db *gorm.DB
}

// NewFeatureRepository creates a new instance of FeatureRepository
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepositoryImpl{db: db}
}

// Create inserts the feature row only; tasks are created separately
func (r *featureRepositoryImpl) Create(ctx context.Context, feature *domain.Feature) error {
	return conn(ctx, r.db).Omit("Release", "FeatureType", "Tasks").Create(feature).Error
}

func (r *featureRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error) {
	var feature domain.Feature
	if err := conn(ctx, r.db).Where("id = ?", id).First(&feature).Error; err != nil {
		return nil, err
	}
	return &feature, nil
}

// FindByIDForUpdate loads the feature row with a write lock held until the transaction ends
func (r *featureRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Feature, error) {
	var feature domain.Feature
	if err := forUpdate(conn(ctx, r.db)).Where("id = ?", id).First(&feature).Error; err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *featureRepositoryImpl) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error) {
	return r.findDetail(ctx, "id = ?", id)
}

func (r *featureRepositoryImpl) FindDetailByName(ctx context.Context, name string) (*domain.Feature, error) {
	return r.findDetail(ctx, "name = ?", name)
}

func (r *featureRepositoryImpl) findDetail(ctx context.Context, query string, arg interface{}) (*domain.Feature, error) {
	var feature domain.Feature
	err := conn(ctx, r.db).
		Preload("FeatureType").
		Preload("Tasks", orderTasks).
		Preload("Tasks.TaskType").
		Preload("Tasks.Attachments", orderByCreatedAt).
		Preload("Tasks.Comments", orderByCreatedAt).
		Where(query, arg).
		First(&feature).Error
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *featureRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Feature{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns one page of features matching filter and the total match count
func (r *featureRepositoryImpl) FindAll(ctx context.Context, filter dto.FeatureListFilter) ([]domain.Feature, int64, error) {
	filter.Normalize()

	query := conn(ctx, r.db).Model(&domain.Feature{})
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.ReleaseID != nil {
		query = query.Where("release_id = ?", *filter.ReleaseID)
	}
	if filter.FeatureTypeID != nil {
		query = query.Where("feature_type_id = ?", *filter.FeatureTypeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Name != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '!'`, dto.LikePattern(filter.Name))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var features []domain.Feature
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&features).Error
	if err != nil {
		return nil, 0, err
	}
	return features, total, nil
}

func (r *featureRepositoryImpl) Update(ctx context.Context, feature *domain.Feature) error {
	return conn(ctx, r.db).Omit("Release", "FeatureType", "Tasks").Save(feature).Error
}

// Delete removes a feature with its tasks, attachments and comments
func (r *featureRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	var count int64
	if err := db.Model(&domain.Feature{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return deleteFeatures(db, []uuid.UUID{id})
}

// deleteFeatures removes features and everything hanging off their tasks
func deleteFeatures(db *gorm.DB, featureIDs []uuid.UUID) error {
	if len(featureIDs) == 0 {
		return nil
	}
	var taskIDs []uuid.UUID
	if err := db.Model(&domain.Task{}).Where("feature_id IN ?", featureIDs).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if err := deleteTasks(db, taskIDs); err != nil {
		return err
	}
	return db.Where("id IN ?", featureIDs).Delete(&domain.Feature{}).Error
}

func orderTasks(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.created_at ASC")
}
