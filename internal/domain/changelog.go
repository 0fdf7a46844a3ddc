package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChangeLogEntity names the kind of entity a change log entry refers to
type ChangeLogEntity string

const (
	ChangeLogEntityRelease ChangeLogEntity = "RELEASE"
	ChangeLogEntityFeature ChangeLogEntity = "FEATURE"
	ChangeLogEntityTask    ChangeLogEntity = "TASK"
)

// Change log actions
const (
	ActionReleaseCreated     = "release_created"
	ActionReleaseUpdated     = "release_updated"
	ActionFeatureCreated     = "feature_created"
	ActionFeatureUpdated     = "feature_updated"
	ActionFeatureTypeChanged = "feature_type_changed"
	ActionFeatureMoved       = "feature_release_changed"
	ActionTaskStatusChanged  = "task_status_changed"
	ActionAttachmentUploaded = "attachment_uploaded"
)

// ChangeLog is an append-only audit record of a lifecycle mutation
type ChangeLog struct {
	BaseModel
	EntityType ChangeLogEntity `gorm:"type:varchar(20);not null;index:idx_change_logs_entity,priority:1" json:"entity_type"`
	EntityID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_change_logs_entity,priority:2" json:"entity_id"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index:idx_change_logs_user_id" json:"user_id"`
	Action     string          `gorm:"type:varchar(50);not null" json:"action"`
	Details    datatypes.JSON  `json:"details,omitempty"`
}

// TableName specifies the table name for ChangeLog
func (ChangeLog) TableName() string {
	return "change_logs"
}
