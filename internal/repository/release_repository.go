package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
)

// ReleaseRepository defines the interface for release data access
type ReleaseRepository interface {
	Create(ctx context.Context, release *domain.Release) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Release, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Release, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter dto.ReleaseListFilter) ([]domain.Release, int64, error)
	Update(ctx context.Context, release *domain.Release) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type releaseRepositoryImpl struct {
	db *gorm.DB
}

// NewReleaseRepository creates a new instance of ReleaseRepository
func NewReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &releaseRepositoryImpl{db: db}
}

func (r *releaseRepositoryImpl) Create(ctx context.Context, release *domain.Release) error {
	return conn(ctx, r.db).Omit("Platform", "Channel", "ReleaseType", "Features").Create(release).Error
}

func (r *releaseRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Release, error) {
	var release domain.Release
	if err := conn(ctx, r.db).Where("id = ?", id).First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

// FindDetailByID loads a release with its features and their tasks
func (r *releaseRepositoryImpl) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.Release, error) {
	var release domain.Release
	err := conn(ctx, r.db).
		Preload("Features", func(db *gorm.DB) *gorm.DB { return db.Order("features.created_at ASC") }).
		Preload("Features.FeatureType").
		Preload("Features.Tasks", orderTasks).
		Preload("Features.Tasks.TaskType").
		Preload("Features.Tasks.Attachments", orderByCreatedAt).
		Preload("Features.Tasks.Comments", orderByCreatedAt).
		Where("id = ?", id).
		First(&release).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *releaseRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Release{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns one page of releases matching filter and the total match count
func (r *releaseRepositoryImpl) FindAll(ctx context.Context, filter dto.ReleaseListFilter) ([]domain.Release, int64, error) {
	filter.Normalize()

	query := conn(ctx, r.db).Model(&domain.Release{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PlatformID != nil {
		query = query.Where("platform_id = ?", *filter.PlatformID)
	}
	if filter.ChannelID != nil {
		query = query.Where("channel_id = ?", *filter.ChannelID)
	}
	if filter.Name != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '!'`, dto.LikePattern(filter.Name))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var releases []domain.Release
	err := query.
		Order("start_date DESC").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&releases).Error
	if err != nil {
		return nil, 0, err
	}
	return releases, total, nil
}

func (r *releaseRepositoryImpl) Update(ctx context.Context, release *domain.Release) error {
	return conn(ctx, r.db).Omit("Platform", "Channel", "ReleaseType", "Features").Save(release).Error
}

// Delete removes a release and every feature filed under it
func (r *releaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	var featureIDs []uuid.UUID
	if err := db.Model(&domain.Feature{}).Where("release_id = ?", id).Pluck("id", &featureIDs).Error; err != nil {
		return err
	}
	if err := deleteFeatures(db, featureIDs); err != nil {
		return err
	}
	return deleteByID(db, &domain.Release{}, id)
}

func orderByCreatedAt(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
