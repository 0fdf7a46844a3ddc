package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// UpdateTaskStatusRequest represents a task status transition
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required" example:"review"`
}

// CreateAttachmentRequest attaches an evidence link to a task
type CreateAttachmentRequest struct {
	Link string `json:"link" binding:"required" example:"https://confluence.example.com/test-report"`
}

// PresignedURLRequest asks for an upload URL for an evidence file
type PresignedURLRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255" example:"screenshot.png"`
	ContentType string `json:"content_type" binding:"required" example:"image/png"`
}

// PresignedURLResponse tells the client where to PUT the file and which link to attach afterwards
type PresignedURLResponse struct {
	UploadURL string    `json:"upload_url"`
	FileKey   string    `json:"file_key"`
	FileURL   string    `json:"file_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateCommentRequest adds a comment to a task
type CreateCommentRequest struct {
	Comment string `json:"comment" binding:"required,min=1"`
}

// TaskResponse represents a task without evidence
type TaskResponse struct {
	ID         uuid.UUID `json:"id"`
	FeatureID  uuid.UUID `json:"feature_id"`
	TaskTypeID uuid.UUID `json:"task_type_id"`
	KeyName    string    `json:"key_name,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TaskDetailResponse represents a task with its attachments and comments
type TaskDetailResponse struct {
	TaskResponse
	Attachments []AttachmentResponse `json:"attachments"`
	Comments    []CommentResponse    `json:"comments"`
}

// AttachmentResponse represents an evidence link
type AttachmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	Link       string     `json:"link"`
	UploadedAt time.Time  `json:"uploaded_at"`
	UploadedBy *uuid.UUID `json:"uploaded_by"`
}

// CommentResponse represents a task comment
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:         t.ID,
		FeatureID:  t.FeatureID,
		TaskTypeID: t.TaskTypeID,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.TaskType != nil {
		resp.KeyName = t.TaskType.KeyName
	}
	return resp
}

func NewTaskDetailResponse(t *domain.Task) TaskDetailResponse {
	resp := TaskDetailResponse{
		TaskResponse: NewTaskResponse(t),
		Attachments:  make([]AttachmentResponse, 0, len(t.Attachments)),
		Comments:     make([]CommentResponse, 0, len(t.Comments)),
	}
	for i := range t.Attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&t.Attachments[i]))
	}
	for i := range t.Comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&t.Comments[i]))
	}
	return resp
}

func NewAttachmentResponse(a *domain.AttachmentLink) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		TaskID:     a.TaskID,
		Link:       a.Link,
		UploadedAt: a.CreatedAt,
		UploadedBy: a.UploadedBy,
	}
}

func NewCommentResponse(c *domain.TaskComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Comment:   c.Comment,
		CreatedAt: c.CreatedAt,
	}
}
