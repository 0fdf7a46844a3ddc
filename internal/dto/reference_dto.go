package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// NamedRequest creates or renames a platform or channel
type NamedRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Android"`
}

// CreateReleaseTypeRequest represents the request to create a release type
type CreateReleaseTypeRequest struct {
	Name       string    `json:"name" binding:"required,max=100"`
	PlatformID uuid.UUID `json:"platform_id" binding:"required"`
	ChannelID  uuid.UUID `json:"channel_id" binding:"required"`
}

// NamedResponse represents a platform or channel
type NamedResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ReleaseTypeResponse represents a release type
type ReleaseTypeResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PlatformID uuid.UUID `json:"platform_id"`
	ChannelID  uuid.UUID `json:"channel_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewPlatformResponse(p *domain.Platform) NamedResponse {
	return NamedResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func NewChannelResponse(c *domain.Channel) NamedResponse {
	return NamedResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func NewReleaseTypeResponse(r *domain.ReleaseType) ReleaseTypeResponse {
	return ReleaseTypeResponse{
		ID:         r.ID,
		Name:       r.Name,
		PlatformID: r.PlatformID,
		ChannelID:  r.ChannelID,
		CreatedAt:  r.CreatedAt,
	}
}
