package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// CreateReleaseRequest represents the request to create a release
type CreateReleaseRequest struct {
	Name          string     `json:"name" binding:"required,max=255" example:"2024.03"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        string     `json:"status,omitempty" example:"open"`
	PlatformID    uuid.UUID  `json:"platform_id" binding:"required"`
	ChannelID     uuid.UUID  `json:"channel_id" binding:"required"`
	ReleaseTypeID uuid.UUID  `json:"release_type_id" binding:"required"`
}

// UpdateReleaseRequest represents a partial release update
type UpdateReleaseRequest struct {
	Name          *string    `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description   *string    `json:"description,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        *string    `json:"status,omitempty"`
	PlatformID    *uuid.UUID `json:"platform_id,omitempty"`
	ChannelID     *uuid.UUID `json:"channel_id,omitempty"`
	ReleaseTypeID *uuid.UUID `json:"release_type_id,omitempty"`
}

// ReleaseResponse represents a release without its features
type ReleaseResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Status        string     `json:"status"`
	PlatformID    uuid.UUID  `json:"platform_id"`
	ChannelID     uuid.UUID  `json:"channel_id"`
	ReleaseTypeID uuid.UUID  `json:"release_type_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ReleaseDetailResponse represents a release with its features and their tasks
type ReleaseDetailResponse struct {
	ReleaseResponse
	Features []FeatureDetailResponse `json:"features"`
}

// ReleaseListResponse is a page of releases
type ReleaseListResponse struct {
	Releases []ReleaseResponse `json:"releases"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func NewReleaseResponse(r *domain.Release) ReleaseResponse {
	return ReleaseResponse{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Status:        string(r.Status),
		PlatformID:    r.PlatformID,
		ChannelID:     r.ChannelID,
		ReleaseTypeID: r.ReleaseTypeID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func NewReleaseDetailResponse(r *domain.Release) *ReleaseDetailResponse {
	resp := &ReleaseDetailResponse{
		ReleaseResponse: NewReleaseResponse(r),
		Features:        make([]FeatureDetailResponse, 0, len(r.Features)),
	}
	for i := range r.Features {
		resp.Features = append(resp.Features, *NewFeatureDetailResponse(&r.Features[i]))
	}
	return resp
}
