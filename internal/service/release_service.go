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
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

const msgReleaseNameInUse = "Release name already in use"

// ReleaseService defines release management operations
type ReleaseService interface {
	CreateRelease(ctx context.Context, actor authz.Actor, req *dto.CreateReleaseRequest) (*dto.ReleaseResponse, error)
	GetRelease(ctx context.Context, id uuid.UUID) (*dto.ReleaseDetailResponse, error)
	ListReleases(ctx context.Context, filter dto.ReleaseListFilter) (*dto.ReleaseListResponse, error)
	UpdateRelease(ctx context.Context, actor authz.Actor, id uuid.UUID, req *dto.UpdateReleaseRequest) (*dto.ReleaseResponse, error)
	DeleteRelease(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type releaseServiceImpl struct {
	tx              repository.Transactor
	releaseRepo     repository.ReleaseRepository
	platformRepo    repository.PlatformRepository
	channelRepo     repository.ChannelRepository
	releaseTypeRepo repository.ReleaseTypeRepository
	attachmentRepo  repository.AttachmentRepository
	changeLogRepo   repository.ChangeLogRepository
	evidence        client.EvidenceStore
	logger          *zap.Logger
}

// NewReleaseService creates a new instance of ReleaseService
func NewReleaseService(
	tx repository.Transactor,
	releaseRepo repository.ReleaseRepository,
	platformRepo repository.PlatformRepository,
	channelRepo repository.ChannelRepository,
	releaseTypeRepo repository.ReleaseTypeRepository,
	attachmentRepo repository.AttachmentRepository,
	changeLogRepo repository.ChangeLogRepository,
	evidence client.EvidenceStore,
	logger *zap.Logger,
) ReleaseService {
	return &releaseServiceImpl{
		tx:              tx,
		releaseRepo:     releaseRepo,
		platformRepo:    platformRepo,
		channelRepo:     channelRepo,
		releaseTypeRepo: releaseTypeRepo,
		attachmentRepo:  attachmentRepo,
		changeLogRepo:   changeLogRepo,
		evidence:        evidence,
		logger:          logger,
	}
}

func (s *releaseServiceImpl) CreateRelease(ctx context.Context, actor authz.Actor, req *dto.CreateReleaseRequest) (*dto.ReleaseResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	status := domain.ReleaseStatusOpen
	if req.Status != "" {
		status = domain.ReleaseStatus(req.Status)
	}
	if !status.IsValid() {
		return nil, response.NewValidationError("Invalid release status", req.Status)
	}
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.releaseRepo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return nil, internalError("check release name", err)
	}
	if exists {
		return nil, response.NewConflictError(msgReleaseNameInUse, name)
	}
	if err := s.ensureReferences(ctx, req.PlatformID, req.ChannelID, req.ReleaseTypeID); err != nil {
		return nil, err
	}

	release := &domain.Release{
		Name:          name,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        status,
		PlatformID:    req.PlatformID,
		ChannelID:     req.ChannelID,
		ReleaseTypeID: req.ReleaseTypeID,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.releaseRepo.Create(ctx, release); err != nil {
			return persistError(err, "create release", msgReleaseNameInUse)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityRelease, release.ID, actor,
			domain.ActionReleaseCreated, map[string]interface{}{"name": release.Name, "status": release.Status})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Release created", zap.String("release_id", release.ID.String()), zap.String("name", release.Name))
	resp := dto.NewReleaseResponse(release)
	return &resp, nil
}

// GetRelease returns a release with its features and their tasks
func (s *releaseServiceImpl) GetRelease(ctx context.Context, id uuid.UUID) (*dto.ReleaseDetailResponse, error) {
	release, err := s.releaseRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Release")
	}
	return dto.NewReleaseDetailResponse(release), nil
}

func (s *releaseServiceImpl) ListReleases(ctx context.Context, filter dto.ReleaseListFilter) (*dto.ReleaseListResponse, error) {
	if filter.Status != "" && !domain.ReleaseStatus(filter.Status).IsValid() {
		return nil, response.NewValidationError("Invalid release status", filter.Status)
	}
	filter.Normalize()

	releases, total, err := s.releaseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, internalError("list releases", err)
	}

	resp := &dto.ReleaseListResponse{
		Releases: make([]dto.ReleaseResponse, 0, len(releases)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range releases {
		resp.Releases = append(resp.Releases, dto.NewReleaseResponse(&releases[i]))
	}
	return resp, nil
}

func (s *releaseServiceImpl) UpdateRelease(ctx context.Context, actor authz.Actor, id uuid.UUID, req *dto.UpdateReleaseRequest) (*dto.ReleaseResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	var release *domain.Release
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		release, err = s.releaseRepo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "Release")
		}

		changes := map[string]interface{}{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != release.Name {
				exists, err := s.releaseRepo.ExistsByName(ctx, name, release.ID)
				if err != nil {
					return internalError("check release name", err)
				}
				if exists {
					return response.NewConflictError(msgReleaseNameInUse, name)
				}
				changes["name"] = name
				release.Name = name
			}
		}
		if req.Description != nil {
			release.Description = *req.Description
			changes["description"] = true
		}
		if req.StartDate != nil {
			release.StartDate = req.StartDate
			changes["start_date"] = req.StartDate
		}
		if req.EndDate != nil {
			release.EndDate = req.EndDate
			changes["end_date"] = req.EndDate
		}
		if err := validateDateRange(release.StartDate, release.EndDate); err != nil {
			return err
		}
		if req.Status != nil {
			status := domain.ReleaseStatus(*req.Status)
			if !status.IsValid() {
				return response.NewValidationError("Invalid release status", *req.Status)
			}
			if status != release.Status {
				changes["status"] = map[string]string{"from": string(release.Status), "to": string(status)}
				release.Status = status
			}
		}
		if req.PlatformID != nil {
			release.PlatformID = *req.PlatformID
		}
		if req.ChannelID != nil {
			release.ChannelID = *req.ChannelID
		}
		if req.ReleaseTypeID != nil {
			release.ReleaseTypeID = *req.ReleaseTypeID
		}
		if req.PlatformID != nil || req.ChannelID != nil || req.ReleaseTypeID != nil {
			if err := s.ensureReferences(ctx, release.PlatformID, release.ChannelID, release.ReleaseTypeID); err != nil {
				return err
			}
			changes["references"] = true
		}
		if len(changes) == 0 {
			return nil
		}

		if err := s.releaseRepo.Update(ctx, release); err != nil {
			return persistError(err, "update release", msgReleaseNameInUse)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityRelease, release.ID, actor,
			domain.ActionReleaseUpdated, changes)
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewReleaseResponse(release)
	return &resp, nil
}

// DeleteRelease removes a release and every feature filed under it
func (s *releaseServiceImpl) DeleteRelease(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}

	var removed []domain.AttachmentLink
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.releaseRepo.FindByID(ctx, id); err != nil {
			return lookupError(err, "Release")
		}
		var err error
		if removed, err = s.attachmentRepo.FindByReleaseID(ctx, id); err != nil {
			return internalError("load attachments", err)
		}
		if err := s.releaseRepo.Delete(ctx, id); err != nil {
			return internalError("delete release", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	removeEvidence(ctx, s.evidence, removed, s.logger)
	s.logger.Info("Release deleted", zap.String("release_id", id.String()), zap.String("actor", actor.Username))
	return nil
}

func (s *releaseServiceImpl) ensureReferences(ctx context.Context, platformID, channelID, releaseTypeID uuid.UUID) error {
	if _, err := s.platformRepo.FindByID(ctx, platformID); err != nil {
		return lookupError(err, "Platform")
	}
	if _, err := s.channelRepo.FindByID(ctx, channelID); err != nil {
		return lookupError(err, "Channel")
	}
	if _, err := s.releaseTypeRepo.FindByID(ctx, releaseTypeID); err != nil {
		return lookupError(err, "Release type")
	}
	return nil
}
