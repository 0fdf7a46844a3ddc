package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

// CatalogService maintains task types, feature types and task-type approvers
type CatalogService interface {
	RequiredTaskTypes(ctx context.Context, featureTypeID uuid.UUID) ([]domain.TaskType, error)
	ApproverRole(ctx context.Context, taskTypeID uuid.UUID) (*domain.Role, error)

	AssignApprover(ctx context.Context, actor authz.Actor, taskTypeID, roleID uuid.UUID) (*dto.ApproverResponse, error)
	GetApprover(ctx context.Context, taskTypeID uuid.UUID) (*dto.ApproverResponse, error)
	RemoveApprover(ctx context.Context, actor authz.Actor, taskTypeID uuid.UUID) error

	CreateTaskType(ctx context.Context, actor authz.Actor, req *dto.CreateTaskTypeRequest) (*dto.TaskTypeResponse, error)
	GetTaskType(ctx context.Context, idOrKey string) (*dto.TaskTypeResponse, error)
	ListTaskTypes(ctx context.Context) ([]dto.TaskTypeResponse, error)
	DeleteTaskType(ctx context.Context, actor authz.Actor, id uuid.UUID) error

	CreateFeatureType(ctx context.Context, actor authz.Actor, req *dto.CreateFeatureTypeRequest) (*dto.FeatureTypeResponse, error)
	GetFeatureType(ctx context.Context, id uuid.UUID) (*dto.FeatureTypeResponse, error)
	ListFeatureTypes(ctx context.Context) ([]dto.FeatureTypeResponse, error)
	SetFeatureTypeTaskTypes(ctx context.Context, actor authz.Actor, id uuid.UUID, keys []string) (*dto.FeatureTypeResponse, error)
	DeleteFeatureType(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type catalogServiceImpl struct {
	tx              repository.Transactor
	taskTypeRepo    repository.TaskTypeRepository
	featureTypeRepo repository.FeatureTypeRepository
	roleRepo        repository.RoleRepository
	logger          *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	tx repository.Transactor,
	taskTypeRepo repository.TaskTypeRepository,
	featureTypeRepo repository.FeatureTypeRepository,
	roleRepo repository.RoleRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		tx:              tx,
		taskTypeRepo:    taskTypeRepo,
		featureTypeRepo: featureTypeRepo,
		roleRepo:        roleRepo,
		logger:          logger,
	}
}

// RequiredTaskTypes returns the task types a feature of the given type must carry, ordered by key
func (s *catalogServiceImpl) RequiredTaskTypes(ctx context.Context, featureTypeID uuid.UUID) ([]domain.TaskType, error) {
	exists, err := s.featureTypeExists(ctx, featureTypeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, response.NewNotFoundError("Feature type not found", "")
	}

	taskTypes, err := s.featureTypeRepo.RequiredTaskTypes(ctx, featureTypeID)
	if err != nil {
		return nil, internalError("load required task types", err)
	}
	return taskTypes, nil
}

func (s *catalogServiceImpl) featureTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.featureTypeRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, internalError("load feature type", err)
	}
	return true, nil
}

// ApproverRole returns the approving role of a task type, or nil when none is configured
func (s *catalogServiceImpl) ApproverRole(ctx context.Context, taskTypeID uuid.UUID) (*domain.Role, error) {
	approver, err := s.taskTypeRepo.FindApprover(ctx, taskTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, internalError("load approver", err)
	}
	return approver.Role, nil
}

// AssignApprover designates the approving role of a task type. A task type holds at most one.
func (s *catalogServiceImpl) AssignApprover(ctx context.Context, actor authz.Actor, taskTypeID, roleID uuid.UUID) (*dto.ApproverResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	taskType, err := s.taskTypeRepo.FindByID(ctx, taskTypeID)
	if err != nil {
		return nil, lookupError(err, "Task type")
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, lookupError(err, "Role")
	}
	if taskType.Approver != nil {
		return nil, response.NewConflictError("Task type already has an approver", "task type: "+taskType.KeyName)
	}

	approver := &domain.TaskTypeApprover{TaskTypeID: taskTypeID, RoleID: roleID}
	if err := s.taskTypeRepo.CreateApprover(ctx, approver); err != nil {
		return nil, persistError(err, "assign approver", "Task type already has an approver")
	}

	s.logger.Info("Approver assigned",
		zap.String("task_type", taskType.KeyName),
		zap.String("role", role.Name),
		zap.String("actor", actor.Username))

	return &dto.ApproverResponse{TaskTypeID: taskTypeID, Role: dto.NewRoleResponse(role)}, nil
}

// GetApprover returns NOT_FOUND when the task type or its approver is missing
func (s *catalogServiceImpl) GetApprover(ctx context.Context, taskTypeID uuid.UUID) (*dto.ApproverResponse, error) {
	if _, err := s.taskTypeRepo.FindByID(ctx, taskTypeID); err != nil {
		return nil, lookupError(err, "Task type")
	}
	approver, err := s.taskTypeRepo.FindApprover(ctx, taskTypeID)
	if err != nil {
		return nil, lookupError(err, "Approver")
	}
	resp := &dto.ApproverResponse{TaskTypeID: taskTypeID}
	if approver.Role != nil {
		resp.Role = dto.NewRoleResponse(approver.Role)
	}
	return resp, nil
}

func (s *catalogServiceImpl) RemoveApprover(ctx context.Context, actor authz.Actor, taskTypeID uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}
	if err := s.taskTypeRepo.DeleteApprover(ctx, taskTypeID); err != nil {
		return lookupError(err, "Approver")
	}
	return nil
}

func (s *catalogServiceImpl) CreateTaskType(ctx context.Context, actor authz.Actor, req *dto.CreateTaskTypeRequest) (*dto.TaskTypeResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	keyName := strings.TrimSpace(req.KeyName)
	exists, err := s.taskTypeRepo.ExistsByKeyName(ctx, keyName)
	if err != nil {
		return nil, internalError("check task type key", err)
	}
	if exists {
		return nil, response.NewConflictError("Task type key already in use", keyName)
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}
	taskType := &domain.TaskType{
		KeyName:     keyName,
		Name:        req.Name,
		Description: req.Description,
		IsRequired:  isRequired,
	}
	if err := s.taskTypeRepo.Create(ctx, taskType); err != nil {
		return nil, persistError(err, "create task type", "Task type key already in use")
	}

	resp := dto.NewTaskTypeResponse(taskType)
	return &resp, nil
}

// GetTaskType looks a task type up by UUID, falling back to its key name
func (s *catalogServiceImpl) GetTaskType(ctx context.Context, idOrKey string) (*dto.TaskTypeResponse, error) {
	var (
		taskType *domain.TaskType
		err      error
	)
	if id, parseErr := uuid.Parse(idOrKey); parseErr == nil {
		taskType, err = s.taskTypeRepo.FindByID(ctx, id)
	} else {
		taskType, err = s.taskTypeRepo.FindByKeyName(ctx, idOrKey)
	}
	if err != nil {
		return nil, lookupError(err, "Task type")
	}
	resp := dto.NewTaskTypeResponse(taskType)
	return &resp, nil
}

func (s *catalogServiceImpl) ListTaskTypes(ctx context.Context) ([]dto.TaskTypeResponse, error) {
	taskTypes, err := s.taskTypeRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list task types", err)
	}
	result := make([]dto.TaskTypeResponse, 0, len(taskTypes))
	for i := range taskTypes {
		result = append(result, dto.NewTaskTypeResponse(&taskTypes[i]))
	}
	return result, nil
}

// DeleteTaskType refuses while any task of the type exists
func (s *catalogServiceImpl) DeleteTaskType(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taskType, err := s.taskTypeRepo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "Task type")
		}
		count, err := s.taskTypeRepo.CountTasks(ctx, id)
		if err != nil {
			return internalError("count tasks", err)
		}
		if count > 0 {
			return response.NewConflictError("Task type is in use", taskType.KeyName)
		}
		if err := s.taskTypeRepo.Delete(ctx, id); err != nil {
			return lookupError(err, "Task type")
		}
		return nil
	})
}

func (s *catalogServiceImpl) CreateFeatureType(ctx context.Context, actor authz.Actor, req *dto.CreateFeatureTypeRequest) (*dto.FeatureTypeResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.featureTypeRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, internalError("check feature type name", err)
	}
	if exists {
		return nil, response.NewConflictError("Feature type name already in use", name)
	}

	featureType := &domain.FeatureType{Name: name, Description: req.Description}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taskTypeIDs, err := s.resolveTaskTypeKeys(ctx, req.TaskTypeKeys)
		if err != nil {
			return err
		}
		if err := s.featureTypeRepo.Create(ctx, featureType); err != nil {
			return persistError(err, "create feature type", "Feature type name already in use")
		}
		if err := s.featureTypeRepo.ReplaceTaskTypes(ctx, featureType.ID, taskTypeIDs); err != nil {
			return internalError("link task types", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetFeatureType(ctx, featureType.ID)
}

func (s *catalogServiceImpl) GetFeatureType(ctx context.Context, id uuid.UUID) (*dto.FeatureTypeResponse, error) {
	featureType, err := s.featureTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Feature type")
	}
	return dto.NewFeatureTypeResponse(featureType), nil
}

func (s *catalogServiceImpl) ListFeatureTypes(ctx context.Context) ([]dto.FeatureTypeResponse, error) {
	featureTypes, err := s.featureTypeRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list feature types", err)
	}
	result := make([]dto.FeatureTypeResponse, 0, len(featureTypes))
	for i := range featureTypes {
		result = append(result, *dto.NewFeatureTypeResponse(&featureTypes[i]))
	}
	return result, nil
}

// SetFeatureTypeTaskTypes replaces the required task types. Existing features keep their tasks.
func (s *catalogServiceImpl) SetFeatureTypeTaskTypes(ctx context.Context, actor authz.Actor, id uuid.UUID, keys []string) (*dto.FeatureTypeResponse, error) {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.featureTypeRepo.FindByID(ctx, id); err != nil {
			return lookupError(err, "Feature type")
		}
		taskTypeIDs, err := s.resolveTaskTypeKeys(ctx, keys)
		if err != nil {
			return err
		}
		if err := s.featureTypeRepo.ReplaceTaskTypes(ctx, id, taskTypeIDs); err != nil {
			return internalError("link task types", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetFeatureType(ctx, id)
}

// DeleteFeatureType refuses while any feature of the type exists
func (s *catalogServiceImpl) DeleteFeatureType(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.Managers...); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		featureType, err := s.featureTypeRepo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "Feature type")
		}
		count, err := s.featureTypeRepo.CountFeatures(ctx, id)
		if err != nil {
			return internalError("count features", err)
		}
		if count > 0 {
			return response.NewConflictError("Feature type is in use", featureType.Name)
		}
		if err := s.featureTypeRepo.Delete(ctx, id); err != nil {
			return lookupError(err, "Feature type")
		}
		return nil
	})
}

// resolveTaskTypeKeys maps key names to ids; unknown keys are a VALIDATION_ERROR
func (s *catalogServiceImpl) resolveTaskTypeKeys(ctx context.Context, keys []string) ([]uuid.UUID, error) {
	keys = normalizeKeys(keys)
	taskTypes, err := s.taskTypeRepo.FindByKeyNames(ctx, keys)
	if err != nil {
		return nil, internalError("load task types", err)
	}

	found := make(map[string]uuid.UUID, len(taskTypes))
	for _, tt := range taskTypes {
		found[tt.KeyName] = tt.ID
	}
	ids := make([]uuid.UUID, 0, len(keys))
	var missing []string
	for _, k := range keys {
		id, ok := found[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, response.NewValidationError("Unknown task type", strings.Join(missing, ", "))
	}
	return ids, nil
}
