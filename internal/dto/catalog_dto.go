package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// CreateTaskTypeRequest represents the request to create a task type
type CreateTaskTypeRequest struct {
	KeyName     string `json:"key_name" binding:"required,max=100" example:"test"`
	Name        string `json:"name" binding:"required,max=255" example:"Testing"`
	Description string `json:"description"`
	// IsRequired defaults to true when omitted
	IsRequired *bool `json:"is_required,omitempty"`
}

// AssignApproverRequest designates the approving role of a task type
type AssignApproverRequest struct {
	RoleID uuid.UUID `json:"role_id" binding:"required"`
}

// TaskTypeResponse represents a task type and its approver, if any
type TaskTypeResponse struct {
	ID           uuid.UUID `json:"id"`
	KeyName      string    `json:"key_name"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsRequired   bool      `json:"is_required"`
	ApproverRole *string   `json:"approver_role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ApproverResponse represents the approver of a task type
type ApproverResponse struct {
	TaskTypeID uuid.UUID    `json:"task_type_id"`
	Role       RoleResponse `json:"role"`
}

// CreateFeatureTypeRequest represents the request to create a feature type
type CreateFeatureTypeRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"Review-exempt"`
	Description string `json:"description"`
	// TaskTypeKeys lists the key names of the required task types
	TaskTypeKeys []string `json:"task_type_keys"`
}

// SetFeatureTypeTaskTypesRequest replaces the required task types of a feature type
type SetFeatureTypeTaskTypesRequest struct {
	TaskTypeKeys []string `json:"task_type_keys"`
}

// FeatureTypeResponse represents a feature type with its required task types
type FeatureTypeResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	TaskTypes   []TaskTypeResponse `json:"task_types"`
	CreatedAt   time.Time          `json:"created_at"`
}

func NewTaskTypeResponse(t *domain.TaskType) TaskTypeResponse {
	resp := TaskTypeResponse{
		ID:          t.ID,
		KeyName:     t.KeyName,
		Name:        t.Name,
		Description: t.Description,
		IsRequired:  t.IsRequired,
		CreatedAt:   t.CreatedAt,
	}
	if t.Approver != nil && t.Approver.Role != nil {
		name := t.Approver.Role.Name
		resp.ApproverRole = &name
	}
	return resp
}

func NewFeatureTypeResponse(f *domain.FeatureType) *FeatureTypeResponse {
	resp := &FeatureTypeResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		TaskTypes:   make([]TaskTypeResponse, 0, len(f.TaskTypes)),
		CreatedAt:   f.CreatedAt,
	}
	for i := range f.TaskTypes {
		resp.TaskTypes = append(resp.TaskTypes, NewTaskTypeResponse(&f.TaskTypes[i]))
	}
	return resp
}
