package domain

import "github.com/google/uuid"

// AttachmentLink is an http(s) link to evidence uploaded for a task.
// CreatedAt doubles as the upload time.
type AttachmentLink struct {
	BaseModel
	TaskID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_attachment_links_task_id" json:"task_id"`
	Link       string     `gorm:"type:text;not null" json:"link"`
	UploadedBy *uuid.UUID `gorm:"type:uuid;index:idx_attachment_links_uploaded_by" json:"uploaded_by"`
	Uploader   *User      `gorm:"foreignKey:UploadedBy;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for AttachmentLink
func (AttachmentLink) TableName() string {
	return "attachment_links"
}
