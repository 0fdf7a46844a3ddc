package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

// ReferenceService manages platforms, channels and release types
type ReferenceService interface {
	CreatePlatform(ctx context.Context, actor authz.Actor, name string) (*dto.NamedResponse, error)
	ListPlatforms(ctx context.Context) ([]dto.NamedResponse, error)
	RenamePlatform(ctx context.Context, actor authz.Actor, id uuid.UUID, name string) (*dto.NamedResponse, error)
	DeletePlatform(ctx context.Context, actor authz.Actor, id uuid.UUID) error

	CreateChannel(ctx context.Context, actor authz.Actor, name string) (*dto.NamedResponse, error)
	ListChannels(ctx context.Context) ([]dto.NamedResponse, error)
	RenameChannel(ctx context.Context, actor authz.Actor, id uuid.UUID, name string) (*dto.NamedResponse, error)
	DeleteChannel(ctx context.Context, actor authz.Actor, id uuid.UUID) error

	CreateReleaseType(ctx context.Context, actor authz.Actor, req *dto.CreateReleaseTypeRequest) (*dto.ReleaseTypeResponse, error)
	ListReleaseTypes(ctx context.Context) ([]dto.ReleaseTypeResponse, error)
	DeleteReleaseType(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type referenceServiceImpl struct {
	platformRepo    repository.PlatformRepository
	channelRepo     repository.ChannelRepository
	releaseTypeRepo repository.ReleaseTypeRepository
}

// NewReferenceService creates a new instance of ReferenceService
func NewReferenceService(
	platformRepo repository.PlatformRepository,
	channelRepo repository.ChannelRepository,
	releaseTypeRepo repository.ReleaseTypeRepository,
) ReferenceService {
	return &referenceServiceImpl{
		platformRepo:    platformRepo,
		channelRepo:     channelRepo,
		releaseTypeRepo: releaseTypeRepo,
	}
}

func (s *referenceServiceImpl) CreatePlatform(ctx context.Context, actor authz.Actor, name string) (*dto.NamedResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := s.ensureUnique(ctx, s.platformRepo.ExistsByName, "Platform", name); err != nil {
		return nil, err
	}

	platform := &domain.Platform{Name: name}
	if err := s.platformRepo.Create(ctx, platform); err != nil {
		return nil, persistError(err, "create platform", "Platform name already in use")
	}
	resp := dto.NewPlatformResponse(platform)
	return &resp, nil
}

func (s *referenceServiceImpl) ListPlatforms(ctx context.Context) ([]dto.NamedResponse, error) {
	platforms, err := s.platformRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list platforms", err)
	}
	result := make([]dto.NamedResponse, 0, len(platforms))
	for i := range platforms {
		result = append(result, dto.NewPlatformResponse(&platforms[i]))
	}
	return result, nil
}

func (s *referenceServiceImpl) RenamePlatform(ctx context.Context, actor authz.Actor, id uuid.UUID, name string) (*dto.NamedResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	platform, err := s.platformRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Platform")
	}
	name = strings.TrimSpace(name)
	if name != platform.Name {
		if err := s.ensureUnique(ctx, s.platformRepo.ExistsByName, "Platform", name); err != nil {
			return nil, err
		}
		platform.Name = name
		if err := s.platformRepo.Update(ctx, platform); err != nil {
			return nil, persistError(err, "update platform", "Platform name already in use")
		}
	}
	resp := dto.NewPlatformResponse(platform)
	return &resp, nil
}

func (s *referenceServiceImpl) DeletePlatform(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return err
	}
	return deleteError(s.platformRepo.Delete(ctx, id), "Platform")
}

func (s *referenceServiceImpl) CreateChannel(ctx context.Context, actor authz.Actor, name string) (*dto.NamedResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := s.ensureUnique(ctx, s.channelRepo.ExistsByName, "Channel", name); err != nil {
		return nil, err
	}

	channel := &domain.Channel{Name: name}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, persistError(err, "create channel", "Channel name already in use")
	}
	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

func (s *referenceServiceImpl) ListChannels(ctx context.Context) ([]dto.NamedResponse, error) {
	channels, err := s.channelRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list channels", err)
	}
	result := make([]dto.NamedResponse, 0, len(channels))
	for i := range channels {
		result = append(result, dto.NewChannelResponse(&channels[i]))
	}
	return result, nil
}

func (s *referenceServiceImpl) RenameChannel(ctx context.Context, actor authz.Actor, id uuid.UUID, name string) (*dto.NamedResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	channel, err := s.channelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Channel")
	}
	name = strings.TrimSpace(name)
	if name != channel.Name {
		if err := s.ensureUnique(ctx, s.channelRepo.ExistsByName, "Channel", name); err != nil {
			return nil, err
		}
		channel.Name = name
		if err := s.channelRepo.Update(ctx, channel); err != nil {
			return nil, persistError(err, "update channel", "Channel name already in use")
		}
	}
	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

func (s *referenceServiceImpl) DeleteChannel(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return err
	}
	return deleteError(s.channelRepo.Delete(ctx, id), "Channel")
}

func (s *referenceServiceImpl) CreateReleaseType(ctx context.Context, actor authz.Actor, req *dto.CreateReleaseTypeRequest) (*dto.ReleaseTypeResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUnique(ctx, s.releaseTypeRepo.ExistsByName, "Release type", name); err != nil {
		return nil, err
	}
	if _, err := s.platformRepo.FindByID(ctx, req.PlatformID); err != nil {
		return nil, lookupError(err, "Platform")
	}
	if _, err := s.channelRepo.FindByID(ctx, req.ChannelID); err != nil {
		return nil, lookupError(err, "Channel")
	}

	releaseType := &domain.ReleaseType{Name: name, PlatformID: req.PlatformID, ChannelID: req.ChannelID}
	if err := s.releaseTypeRepo.Create(ctx, releaseType); err != nil {
		return nil, persistError(err, "create release type", "Release type name already in use")
	}
	resp := dto.NewReleaseTypeResponse(releaseType)
	return &resp, nil
}

func (s *referenceServiceImpl) ListReleaseTypes(ctx context.Context) ([]dto.ReleaseTypeResponse, error) {
	releaseTypes, err := s.releaseTypeRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list release types", err)
	}
	result := make([]dto.ReleaseTypeResponse, 0, len(releaseTypes))
	for i := range releaseTypes {
		result = append(result, dto.NewReleaseTypeResponse(&releaseTypes[i]))
	}
	return result, nil
}

func (s *referenceServiceImpl) DeleteReleaseType(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}
	return deleteError(s.releaseTypeRepo.Delete(ctx, id), "Release type")
}

func (s *referenceServiceImpl) ensureUnique(ctx context.Context, exists func(context.Context, string) (bool, error), entity, name string) error {
	if name == "" {
		return response.NewValidationError(entity+" name is required", "")
	}
	found, err := exists(ctx, name)
	if err != nil {
		return internalError("check "+strings.ToLower(entity)+" name", err)
	}
	if found {
		return response.NewConflictError(entity+" name already in use", name)
	}
	return nil
}

// deleteError maps a failed delete; rows still referenced elsewhere are a CONFLICT
func deleteError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return response.NewConflictError(entity+" is in use", "")
	default:
		return lookupError(err, entity)
	}
}
