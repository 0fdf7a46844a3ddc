package domain

// Platform is a target platform such as Android, iOS or Web
type Platform struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:uq_platforms_name" json:"name"`
}

// TableName specifies the table name for Platform
func (Platform) TableName() string {
	return "platforms"
}

// Channel is a distribution channel a release ships through
type Channel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:uq_channels_name" json:"name"`
}

// TableName specifies the table name for Channel
func (Channel) TableName() string {
	return "channels"
}
