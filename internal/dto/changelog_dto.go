package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// ChangeLogResponse represents an audit entry
type ChangeLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	UserID     *uuid.UUID      `json:"user_id"`
	Action     string          `json:"action"`
	Details    json.RawMessage `json:"details,omitempty" swaggertype:"object"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ChangeLogListResponse is a page of audit entries
type ChangeLogListResponse struct {
	Entries  []ChangeLogResponse `json:"entries"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

func NewChangeLogResponse(c *domain.ChangeLog) ChangeLogResponse {
	return ChangeLogResponse{
		ID:         c.ID,
		EntityType: string(c.EntityType),
		EntityID:   c.EntityID,
		UserID:     c.UserID,
		Action:     c.Action,
		Details:    json.RawMessage(c.Details),
		CreatedAt:  c.CreatedAt,
	}
}
