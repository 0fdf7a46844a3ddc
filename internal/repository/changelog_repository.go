package repository

import (
	"context"

	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
)

// ChangeLogRepository appends and lists audit entries
type ChangeLogRepository interface {
	Create(ctx context.Context, entry *domain.ChangeLog) error
	FindAll(ctx context.Context, filter dto.ChangeLogFilter) ([]domain.ChangeLog, int64, error)
}

type changeLogRepositoryImpl struct {
	db *gorm.DB
}

// NewChangeLogRepository creates a new instance of ChangeLogRepository
func NewChangeLogRepository(db *gorm.DB) ChangeLogRepository {
	return &changeLogRepositoryImpl{db: db}
}

func (r *changeLogRepositoryImpl) Create(ctx context.Context, entry *domain.ChangeLog) error {
	return conn(ctx, r.db).Create(entry).Error
}

// FindAll lists entries newest first
func (r *changeLogRepositoryImpl) FindAll(ctx context.Context, filter dto.ChangeLogFilter) ([]domain.ChangeLog, int64, error) {
	filter.Normalize()

	query := conn(ctx, r.db).Model(&domain.ChangeLog{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []domain.ChangeLog
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
