package domain

import "github.com/google/uuid"

// TaskStatus represents the progress of a single task
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// TaskType is a category of verification step, optionally gated by an approver role
type TaskType struct {
	BaseModel
	KeyName     string            `gorm:"type:varchar(100);not null;uniqueIndex:uq_task_types_key_name" json:"key_name"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	IsRequired  bool              `gorm:"not null" json:"is_required"`
	Approver    *TaskTypeApprover `gorm:"foreignKey:TaskTypeID;constraint:OnDelete:CASCADE" json:"approver,omitempty"`
}

// TableName specifies the table name for TaskType
func (TaskType) TableName() string {
	return "task_types"
}

// TaskTypeApprover designates the single role allowed to approve tasks of a type.
// The primary key on TaskTypeID keeps it to one approver per task type.
type TaskTypeApprover struct {
	TaskTypeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_type_id"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;index:idx_task_type_approvers_role_id" json:"role_id"`
	Role       *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
}

// TableName specifies the table name for TaskTypeApprover
func (TaskTypeApprover) TableName() string {
	return "task_type_approvers"
}

// Task is one required step of a feature
type Task struct {
	BaseModel
	FeatureID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_tasks_feature_task_type,priority:1" json:"feature_id"`
	TaskTypeID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_tasks_feature_task_type,priority:2;index:idx_tasks_task_type_id" json:"task_type_id"`
	Status      TaskStatus       `gorm:"type:varchar(20);not null;index:idx_tasks_status" json:"status"`
	TaskType    *TaskType        `gorm:"foreignKey:TaskTypeID;constraint:OnDelete:RESTRICT" json:"task_type,omitempty"`
	Attachments []AttachmentLink `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// KeyName returns the loaded task type key or the task type id
func (t *Task) KeyName() string {
	if t.TaskType != nil {
		return t.TaskType.KeyName
	}
	return t.TaskTypeID.String()
}
