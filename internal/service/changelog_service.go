package service

import (
	"context"
	"strings"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

// ChangeLogService exposes the audit trail to managers
type ChangeLogService interface {
	ListChangeLog(ctx context.Context, actor authz.Actor, filter dto.ChangeLogFilter) (*dto.ChangeLogListResponse, error)
}

type changeLogServiceImpl struct {
	changeLogRepo repository.ChangeLogRepository
}

// NewChangeLogService creates a new instance of ChangeLogService
func NewChangeLogService(changeLogRepo repository.ChangeLogRepository) ChangeLogService {
	return &changeLogServiceImpl{changeLogRepo: changeLogRepo}
}

func (s *changeLogServiceImpl) ListChangeLog(ctx context.Context, actor authz.Actor, filter dto.ChangeLogFilter) (*dto.ChangeLogListResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}
	if filter.EntityType != "" {
		filter.EntityType = strings.ToUpper(filter.EntityType)
		switch domain.ChangeLogEntity(filter.EntityType) {
		case domain.ChangeLogEntityRelease, domain.ChangeLogEntityFeature, domain.ChangeLogEntityTask:
		default:
			return nil, response.NewValidationError("Invalid entity type", filter.EntityType)
		}
	}
	filter.Normalize()

	entries, total, err := s.changeLogRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, internalError("list change log", err)
	}
	result := make([]dto.ChangeLogResponse, 0, len(entries))
	for i := range entries {
		result = append(result, dto.NewChangeLogResponse(&entries[i]))
	}
	return &dto.ChangeLogListResponse{
		Entries:  result,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
