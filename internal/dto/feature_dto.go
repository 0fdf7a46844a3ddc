package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// CreateFeatureRequest represents the request to create a feature
// @Description Tasks are created automatically, one per task type required by the feature type
type CreateFeatureRequest struct {
	Name          string    `json:"name" binding:"required,max=255"`
	FeatureTypeID uuid.UUID `json:"feature_type_id" binding:"required"`
	ReleaseID     uuid.UUID `json:"release_id" binding:"required"`
	Status        string    `json:"status,omitempty" example:"open"`
	JiraKey       *string   `json:"jira_key,omitempty" binding:"omitempty,max=50"`
}

// UpdateFeatureRequest represents a partial feature update
type UpdateFeatureRequest struct {
	Name    *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	JiraKey *string `json:"jira_key,omitempty" binding:"omitempty,max=50"`
	Status  *string `json:"status,omitempty"`
}

// ChangeFeatureTypeRequest moves a feature to another feature type
type ChangeFeatureTypeRequest struct {
	FeatureTypeID uuid.UUID `json:"feature_type_id" binding:"required"`
}

// ChangeFeatureReleaseRequest moves a feature to another release
type ChangeFeatureReleaseRequest struct {
	ReleaseID uuid.UUID `json:"release_id" binding:"required"`
}

// FeatureResponse represents a feature without its tasks
type FeatureResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	JiraKey       *string   `json:"jira_key,omitempty"`
	Status        string    `json:"status"`
	ReleaseID     uuid.UUID `json:"release_id"`
	FeatureTypeID uuid.UUID `json:"feature_type_id"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FeatureDetailResponse represents a feature with nested tasks, attachments and comments
type FeatureDetailResponse struct {
	FeatureResponse
	FeatureTypeName string               `json:"feature_type_name,omitempty"`
	Tasks           []TaskDetailResponse `json:"tasks"`
}

// FeatureListResponse is a page of features
type FeatureListResponse struct {
	Features []FeatureResponse `json:"features"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func NewFeatureResponse(f *domain.Feature) FeatureResponse {
	return FeatureResponse{
		ID:            f.ID,
		Name:          f.Name,
		JiraKey:       f.JiraKey,
		Status:        string(f.Status),
		ReleaseID:     f.ReleaseID,
		FeatureTypeID: f.FeatureTypeID,
		CreatorID:     f.CreatorID,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func NewFeatureDetailResponse(f *domain.Feature) *FeatureDetailResponse {
	resp := &FeatureDetailResponse{
		FeatureResponse: NewFeatureResponse(f),
		Tasks:           make([]TaskDetailResponse, 0, len(f.Tasks)),
	}
	if f.FeatureType != nil {
		resp.FeatureTypeName = f.FeatureType.Name
	}
	for i := range f.Tasks {
		resp.Tasks = append(resp.Tasks, NewTaskDetailResponse(&f.Tasks[i]))
	}
	return resp
}
