package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

const msgFeatureNameInUse = "Feature name already in use"

// FeatureService defines the feature lifecycle operations
type FeatureService interface {
	CreateFeature(ctx context.Context, actor authz.Actor, req *dto.CreateFeatureRequest) (*dto.FeatureDetailResponse, error)
	GetFeature(ctx context.Context, id uuid.UUID) (*dto.FeatureDetailResponse, error)
	GetFeatureByName(ctx context.Context, name string) (*dto.FeatureDetailResponse, error)
	ListFeatures(ctx context.Context, filter dto.FeatureListFilter) (*dto.FeatureListResponse, error)
	UpdateFeature(ctx context.Context, actor authz.Actor, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error)
	ChangeFeatureType(ctx context.Context, actor authz.Actor, id, featureTypeID uuid.UUID) (*dto.FeatureDetailResponse, error)
	ChangeFeatureRelease(ctx context.Context, actor authz.Actor, id, releaseID uuid.UUID) (*dto.FeatureResponse, error)
	DeleteFeature(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type featureServiceImpl struct {
	tx             repository.Transactor
	featureRepo    repository.FeatureRepository
	taskRepo       repository.TaskRepository
	releaseRepo    repository.ReleaseRepository
	attachmentRepo repository.AttachmentRepository
	changeLogRepo  repository.ChangeLogRepository
	catalog        CatalogService
	evidence       client.EvidenceStore
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewFeatureService creates a new instance of FeatureService
func NewFeatureService(
	tx repository.Transactor,
	featureRepo repository.FeatureRepository,
	taskRepo repository.TaskRepository,
	releaseRepo repository.ReleaseRepository,
	attachmentRepo repository.AttachmentRepository,
	changeLogRepo repository.ChangeLogRepository,
	catalog CatalogService,
	evidence client.EvidenceStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) FeatureService {
	return &featureServiceImpl{
		tx:             tx,
		featureRepo:    featureRepo,
		taskRepo:       taskRepo,
		releaseRepo:    releaseRepo,
		attachmentRepo: attachmentRepo,
		changeLogRepo:  changeLogRepo,
		catalog:        catalog,
		evidence:       evidence,
		metrics:        m,
		logger:         logger,
	}
}

// CreateFeature creates a feature and one open task per task type its feature type requires
func (s *featureServiceImpl) CreateFeature(ctx context.Context, actor authz.Actor, req *dto.CreateFeatureRequest) (*dto.FeatureDetailResponse, error) {
	status := domain.FeatureStatusOpen
	if req.Status != "" {
		status = domain.FeatureStatus(req.Status)
	}
	if !status.IsValid() {
		return nil, response.NewValidationError("Invalid feature status", req.Status)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewValidationError("Feature name is required", "")
	}
	exists, err := s.featureRepo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return nil, internalError("check feature name", err)
	}
	if exists {
		return nil, response.NewConflictError(msgFeatureNameInUse, name)
	}

	if _, err := s.releaseRepo.FindByID(ctx, req.ReleaseID); err != nil {
		return nil, lookupError(err, "Release")
	}

	feature := &domain.Feature{
		Name:          name,
		JiraKey:       req.JiraKey,
		Status:        status,
		ReleaseID:     req.ReleaseID,
		FeatureTypeID: req.FeatureTypeID,
		CreatorID:     actor.ID,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		required, err := s.catalog.RequiredTaskTypes(ctx, req.FeatureTypeID)
		if err != nil {
			return err
		}
		if err := s.featureRepo.Create(ctx, feature); err != nil {
			return persistError(err, "create feature", msgFeatureNameInUse)
		}
		if err := s.taskRepo.CreateBatch(ctx, newOpenTasks(feature.ID, required)); err != nil {
			return internalError("create tasks", err)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityFeature, feature.ID, actor,
			domain.ActionFeatureCreated, map[string]interface{}{
				"name":       feature.Name,
				"release_id": feature.ReleaseID,
				"task_types": taskTypeKeys(required),
			})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementFeatureCreated()
	s.logger.Info("Feature created",
		zap.String("feature_id", feature.ID.String()),
		zap.String("name", feature.Name),
		zap.String("creator", actor.Username))

	return s.GetFeature(ctx, feature.ID)
}

func (s *featureServiceImpl) GetFeature(ctx context.Context, id uuid.UUID) (*dto.FeatureDetailResponse, error) {
	feature, err := s.featureRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Feature")
	}
	return dto.NewFeatureDetailResponse(feature), nil
}

func (s *featureServiceImpl) GetFeatureByName(ctx context.Context, name string) (*dto.FeatureDetailResponse, error) {
	feature, err := s.featureRepo.FindDetailByName(ctx, name)
	if err != nil {
		return nil, lookupError(err, "Feature")
	}
	return dto.NewFeatureDetailResponse(feature), nil
}

func (s *featureServiceImpl) ListFeatures(ctx context.Context, filter dto.FeatureListFilter) (*dto.FeatureListResponse, error) {
	if filter.Status != "" && !domain.FeatureStatus(filter.Status).IsValid() {
		return nil, response.NewValidationError("Invalid feature status", filter.Status)
	}
	filter.Normalize()

	features, total, err := s.featureRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, internalError("list features", err)
	}

	resp := &dto.FeatureListResponse{
		Features: make([]dto.FeatureResponse, 0, len(features)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range features {
		resp.Features = append(resp.Features, dto.NewFeatureResponse(&features[i]))
	}
	return resp, nil
}

// UpdateFeature edits name, jira key and status. A done feature may still be renamed.
func (s *featureServiceImpl) UpdateFeature(ctx context.Context, actor authz.Actor, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	var feature *domain.Feature
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		feature, err = s.featureRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Feature")
		}
		if err := authz.AuthorizeOwnerOr(actor, feature.CreatorID, authz.Managers...); err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return response.NewValidationError("Feature name is required", "")
			}
			if name != feature.Name {
				exists, err := s.featureRepo.ExistsByName(ctx, name, feature.ID)
				if err != nil {
					return internalError("check feature name", err)
				}
				if exists {
					return response.NewConflictError(msgFeatureNameInUse, name)
				}
				changes["name"] = map[string]string{"from": feature.Name, "to": name}
				feature.Name = name
			}
		}
		if req.JiraKey != nil {
			jiraKey := strings.TrimSpace(*req.JiraKey)
			if jiraKey == "" {
				feature.JiraKey = nil
			} else {
				feature.JiraKey = &jiraKey
			}
			changes["jira_key"] = jiraKey
		}
		if req.Status != nil {
			status := domain.FeatureStatus(*req.Status)
			if !status.IsValid() {
				return response.NewValidationError("Invalid feature status", *req.Status)
			}
			if status != feature.Status {
				changes["status"] = map[string]string{"from": string(feature.Status), "to": string(status)}
				feature.Status = status
			}
		}
		if len(changes) == 0 {
			return nil
		}

		if err := s.featureRepo.Update(ctx, feature); err != nil {
			return persistError(err, "update feature", msgFeatureNameInUse)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityFeature, feature.ID, actor,
			domain.ActionFeatureUpdated, changes)
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewFeatureResponse(feature)
	return &resp, nil
}

// ChangeFeatureType moves a feature to another feature type and reconciles its tasks.
// Tasks required by both types are kept as they are; the feature row and its tasks
// stay locked until the reconciliation commits.
func (s *featureServiceImpl) ChangeFeatureType(ctx context.Context, actor authz.Actor, id, featureTypeID uuid.UUID) (*dto.FeatureDetailResponse, error) {
	var removed []domain.AttachmentLink

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		feature, err := s.featureRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Feature")
		}
		if feature.IsDone() {
			return response.NewConflictError("cannot change type of a done feature", "")
		}
		required, err := s.catalog.RequiredTaskTypes(ctx, featureTypeID)
		if err != nil {
			return err
		}
		if err := authz.AuthorizeOwnerOr(actor, feature.CreatorID, authz.Managers...); err != nil {
			return err
		}

		tasks, err := s.taskRepo.FindByFeatureIDForUpdate(ctx, feature.ID)
		if err != nil {
			return internalError("load tasks", err)
		}
		for i := range tasks {
			if tasks[i].Status == domain.TaskStatusDone {
				return response.NewConflictError("cannot change type while a task is done", "task: "+tasks[i].KeyName())
			}
		}
		if feature.FeatureTypeID == featureTypeID {
			return nil
		}

		toDelete, toCreate := reconcileTasks(feature.ID, tasks, required)
		deleteIDs := make([]uuid.UUID, 0, len(toDelete))
		deletedKeys := make([]string, 0, len(toDelete))
		for _, task := range toDelete {
			deleteIDs = append(deleteIDs, task.ID)
			deletedKeys = append(deletedKeys, task.KeyName())
		}

		if removed, err = s.attachmentRepo.FindByTaskIDs(ctx, deleteIDs); err != nil {
			return internalError("load attachments", err)
		}
		if err := s.taskRepo.DeleteByIDs(ctx, deleteIDs); err != nil {
			return internalError("delete tasks", err)
		}
		if err := s.taskRepo.CreateBatch(ctx, toCreate); err != nil {
			return internalError("create tasks", err)
		}

		previous := feature.FeatureTypeID
		feature.FeatureTypeID = featureTypeID
		if err := s.featureRepo.Update(ctx, feature); err != nil {
			return internalError("update feature", err)
		}

		createdKeys := make([]string, 0, len(toCreate))
		for _, task := range toCreate {
			createdKeys = append(createdKeys, task.KeyName())
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityFeature, feature.ID, actor,
			domain.ActionFeatureTypeChanged, map[string]interface{}{
				"from":          previous,
				"to":            featureTypeID,
				"tasks_removed": deletedKeys,
				"tasks_added":   createdKeys,
			})
	})
	if err != nil {
		return nil, err
	}

	removeEvidence(ctx, s.evidence, removed, s.logger)
	return s.GetFeature(ctx, id)
}

// ChangeFeatureRelease files a feature under another release.
// Naming the current release is a no-op for any actor.
func (s *featureServiceImpl) ChangeFeatureRelease(ctx context.Context, actor authz.Actor, id, releaseID uuid.UUID) (*dto.FeatureResponse, error) {
	var feature *domain.Feature
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		feature, err = s.featureRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Feature")
		}
		if feature.ReleaseID == releaseID {
			return nil
		}

		target, err := s.releaseRepo.FindByID(ctx, releaseID)
		if err != nil {
			return lookupError(err, "Release")
		}
		if target.Status == domain.ReleaseStatusDone {
			return response.NewConflictError("cannot move a feature into a done release", target.Name)
		}
		if feature.IsDone() {
			return response.NewConflictError("cannot change release of a done feature", "")
		}
		if err := authz.AuthorizeOwnerOr(actor, feature.CreatorID, authz.Managers...); err != nil {
			return err
		}

		previous := feature.ReleaseID
		feature.ReleaseID = releaseID
		if err := s.featureRepo.Update(ctx, feature); err != nil {
			return internalError("update feature", err)
		}
		return recordChange(ctx, s.changeLogRepo, domain.ChangeLogEntityFeature, feature.ID, actor,
			domain.ActionFeatureMoved, map[string]interface{}{"from": previous, "to": releaseID})
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewFeatureResponse(feature)
	return &resp, nil
}

// DeleteFeature removes a feature with its tasks, attachments and comments
func (s *featureServiceImpl) DeleteFeature(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}

	var removed []domain.AttachmentLink
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if removed, err = s.attachmentRepo.FindByFeatureID(ctx, id); err != nil {
			return internalError("load attachments", err)
		}
		if err := s.featureRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Feature not found", "")
			}
			return internalError("delete feature", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	removeEvidence(ctx, s.evidence, removed, s.logger)
	s.logger.Info("Feature deleted", zap.String("feature_id", id.String()), zap.String("actor", actor.Username))
	return nil
}

// reconcileTasks returns the current tasks the new task types no longer require
// and the open tasks to create for newly required types
func reconcileTasks(featureID uuid.UUID, current []domain.Task, required []domain.TaskType) ([]domain.Task, []domain.Task) {
	requiredIDs := make(map[uuid.UUID]bool, len(required))
	for _, tt := range required {
		requiredIDs[tt.ID] = true
	}
	carried := make(map[uuid.UUID]bool, len(current))

	var toDelete []domain.Task
	for _, task := range current {
		carried[task.TaskTypeID] = true
		if !requiredIDs[task.TaskTypeID] {
			toDelete = append(toDelete, task)
		}
	}

	var missing []domain.TaskType
	for _, tt := range required {
		if !carried[tt.ID] {
			missing = append(missing, tt)
		}
	}
	return toDelete, newOpenTasks(featureID, missing)
}

func newOpenTasks(featureID uuid.UUID, taskTypes []domain.TaskType) []domain.Task {
	tasks := make([]domain.Task, 0, len(taskTypes))
	for i := range taskTypes {
		tasks = append(tasks, domain.Task{
			FeatureID:  featureID,
			TaskTypeID: taskTypes[i].ID,
			Status:     domain.TaskStatusOpen,
			TaskType:   &taskTypes[i],
		})
	}
	return tasks
}

func taskTypeKeys(taskTypes []domain.TaskType) []string {
	keys := make([]string, 0, len(taskTypes))
	for _, tt := range taskTypes {
		keys = append(keys, tt.KeyName)
	}
	return keys
}
