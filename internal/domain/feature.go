package domain

import "github.com/google/uuid"

// FeatureStatus represents the lifecycle state of a feature
type FeatureStatus string

const (
	FeatureStatusOpen       FeatureStatus = "open"
	FeatureStatusInProgress FeatureStatus = "in_progress"
	FeatureStatusReview     FeatureStatus = "review"
	FeatureStatusDone       FeatureStatus = "done"
	FeatureStatusCancelled  FeatureStatus = "cancelled"
)

// IsValid reports whether s is a known feature status
func (s FeatureStatus) IsValid() bool {
	switch s {
	case FeatureStatusOpen, FeatureStatusInProgress, FeatureStatusReview, FeatureStatusDone, FeatureStatusCancelled:
		return true
	}
	return false
}

// FeatureType is a category of feature that defines its mandatory task types
type FeatureType struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_feature_types_name" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	TaskTypes   []TaskType `gorm:"many2many:feature_type_task_types;joinForeignKey:FeatureTypeID;joinReferences:TaskTypeID" json:"task_types,omitempty"`
}

// TableName specifies the table name for FeatureType
func (FeatureType) TableName() string {
	return "feature_types"
}

// FeatureTypeTaskType links a feature type to one of its required task types
type FeatureTypeTaskType struct {
	FeatureTypeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"feature_type_id"`
	TaskTypeID    uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_feature_type_task_types_task_type_id" json:"task_type_id"`
}

// TableName specifies the table name for FeatureTypeTaskType
func (FeatureTypeTaskType) TableName() string {
	return "feature_type_task_types"
}

// Feature is a unit of product work tracked against a release
type Feature struct {
	BaseModel
	Name          string        `gorm:"type:varchar(255);not null;uniqueIndex:uq_features_name" json:"name"`
	JiraKey       *string       `gorm:"type:varchar(50)" json:"jira_key,omitempty"`
	Status        FeatureStatus `gorm:"type:varchar(20);not null;index:idx_features_status" json:"status"`
	ReleaseID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_features_release_id" json:"release_id"`
	FeatureTypeID uuid.UUID     `gorm:"type:uuid;not null;index:idx_features_feature_type_id" json:"feature_type_id"`
	CreatorID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_features_creator_id" json:"creator_id"`
	Release       *Release      `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"release,omitempty"`
	FeatureType   *FeatureType  `gorm:"foreignKey:FeatureTypeID;constraint:OnDelete:RESTRICT" json:"feature_type,omitempty"`
	Tasks         []Task        `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName specifies the table name for Feature
func (Feature) TableName() string {
	return "features"
}

// IsDone reports whether the feature reached its terminal state
func (f *Feature) IsDone() bool {
	return f.Status == FeatureStatusDone
}
