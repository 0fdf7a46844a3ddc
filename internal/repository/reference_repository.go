package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// PlatformRepository defines the interface for platform data access
type PlatformRepository interface {
	Create(ctx context.Context, platform *domain.Platform) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Platform, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.Platform, error)
	Update(ctx context.Context, platform *domain.Platform) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type platformRepositoryImpl struct {
	db *gorm.DB
}

// NewPlatformRepository creates a new instance of PlatformRepository
func NewPlatformRepository(db *gorm.DB) PlatformRepository {
	return &platformRepositoryImpl{db: db}
}

func (r *platformRepositoryImpl) Create(ctx context.Context, platform *domain.Platform) error {
	return conn(ctx, r.db).Create(platform).Error
}

func (r *platformRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Platform, error) {
	var platform domain.Platform
	if err := conn(ctx, r.db).Where("id = ?", id).First(&platform).Error; err != nil {
		return nil, err
	}
	return &platform, nil
}

func (r *platformRepositoryImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	return existsBy(conn(ctx, r.db), &domain.Platform{}, "name", name)
}

func (r *platformRepositoryImpl) FindAll(ctx context.Context) ([]domain.Platform, error) {
	var platforms []domain.Platform
	if err := conn(ctx, r.db).Order("name ASC").Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}

func (r *platformRepositoryImpl) Update(ctx context.Context, platform *domain.Platform) error {
	return conn(ctx, r.db).Save(platform).Error
}

func (r *platformRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &domain.Platform{}, id)
}

// ChannelRepository defines the interface for channel data access
type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.Channel, error)
	Update(ctx context.Context, channel *domain.Channel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type channelRepositoryImpl struct {
	db *gorm.DB
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepositoryImpl{db: db}
}

func (r *channelRepositoryImpl) Create(ctx context.Context, channel *domain.Channel) error {
	return conn(ctx, r.db).Create(channel).Error
}

func (r *channelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	var channel domain.Channel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepositoryImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	return existsBy(conn(ctx, r.db), &domain.Channel{}, "name", name)
}

func (r *channelRepositoryImpl) FindAll(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	if err := conn(ctx, r.db).Order("name ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepositoryImpl) Update(ctx context.Context, channel *domain.Channel) error {
	return conn(ctx, r.db).Save(channel).Error
}

func (r *channelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &domain.Channel{}, id)
}

// ReleaseTypeRepository defines the interface for release type data access
type ReleaseTypeRepository interface {
	Create(ctx context.Context, releaseType *domain.ReleaseType) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ReleaseType, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.ReleaseType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type releaseTypeRepositoryImpl struct {
	db *gorm.DB
}

// NewReleaseTypeRepository creates a new instance of ReleaseTypeRepository
func NewReleaseTypeRepository(db *gorm.DB) ReleaseTypeRepository {
	return &releaseTypeRepositoryImpl{db: db}
}

func (r *releaseTypeRepositoryImpl) Create(ctx context.Context, releaseType *domain.ReleaseType) error {
	return conn(ctx, r.db).Omit("Platform", "Channel").Create(releaseType).Error
}

func (r *releaseTypeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReleaseType, error) {
	var releaseType domain.ReleaseType
	if err := conn(ctx, r.db).Where("id = ?", id).First(&releaseType).Error; err != nil {
		return nil, err
	}
	return &releaseType, nil
}

func (r *releaseTypeRepositoryImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	return existsBy(conn(ctx, r.db), &domain.ReleaseType{}, "name", name)
}

func (r *releaseTypeRepositoryImpl) FindAll(ctx context.Context) ([]domain.ReleaseType, error) {
	var releaseTypes []domain.ReleaseType
	if err := conn(ctx, r.db).Order("name ASC").Find(&releaseTypes).Error; err != nil {
		return nil, err
	}
	return releaseTypes, nil
}

func (r *releaseTypeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &domain.ReleaseType{}, id)
}

// existsBy reports whether any row of model has column equal to value
func existsBy(db *gorm.DB, model interface{}, column string, value interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
