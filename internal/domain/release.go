package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseStatus represents the lifecycle state of a release
type ReleaseStatus string

const (
	ReleaseStatusOpen       ReleaseStatus = "open"
	ReleaseStatusInProgress ReleaseStatus = "in_progress"
	ReleaseStatusDone       ReleaseStatus = "done"
	ReleaseStatusCancelled  ReleaseStatus = "cancelled"
)

// IsValid reports whether s is a known release status
func (s ReleaseStatus) IsValid() bool {
	switch s {
	case ReleaseStatusOpen, ReleaseStatusInProgress, ReleaseStatusDone, ReleaseStatusCancelled:
		return true
	}
	return false
}

// ReleaseType tags a release with a platform and channel combination
type ReleaseType struct {
	BaseModel
	Name       string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_release_types_name" json:"name"`
	PlatformID uuid.UUID `gorm:"type:uuid;not null;index:idx_release_types_platform_id" json:"platform_id"`
	ChannelID  uuid.UUID `gorm:"type:uuid;not null;index:idx_release_types_channel_id" json:"channel_id"`
	Platform   *Platform `gorm:"foreignKey:PlatformID;constraint:OnDelete:RESTRICT" json:"platform,omitempty"`
	Channel    *Channel  `gorm:"foreignKey:ChannelID;constraint:OnDelete:RESTRICT" json:"channel,omitempty"`
}

// TableName specifies the table name for ReleaseType
func (ReleaseType) TableName() string {
	return "release_types"
}

// Release is a shippable unit that owns features
type Release struct {
	BaseModel
	Name          string        `gorm:"type:varchar(255);not null;uniqueIndex:uq_releases_name" json:"name"`
	Description   string        `gorm:"type:text" json:"description"`
	StartDate     *time.Time    `gorm:"index:idx_releases_start_date" json:"start_date"`
	EndDate       *time.Time    `json:"end_date"`
	Status        ReleaseStatus `gorm:"type:varchar(20);not null;index:idx_releases_status" json:"status"`
	PlatformID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_releases_platform_id" json:"platform_id"`
	ChannelID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_releases_channel_id" json:"channel_id"`
	ReleaseTypeID uuid.UUID     `gorm:"type:uuid;not null;index:idx_releases_release_type_id" json:"release_type_id"`
	Platform      *Platform     `gorm:"foreignKey:PlatformID;constraint:OnDelete:RESTRICT" json:"platform,omitempty"`
	Channel       *Channel      `gorm:"foreignKey:ChannelID;constraint:OnDelete:RESTRICT" json:"channel,omitempty"`
	ReleaseType   *ReleaseType  `gorm:"foreignKey:ReleaseTypeID;constraint:OnDelete:RESTRICT" json:"release_type,omitempty"`
	Features      []Feature     `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"features,omitempty"`
}

// TableName specifies the table name for Release
func (Release) TableName() string {
	return "releases"
}
