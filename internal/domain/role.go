package domain

import "github.com/google/uuid"

// Canonical role names. Roles are compared by plain string equality.
const (
	RoleAdmin          = "admin"
	RoleUser           = "user"
	RoleReleaseManager = "release_manager"
	RoleReviewer       = "reviewer"
	RoleTester         = "tester"
)

// CanonicalRoles lists the roles seeded on a fresh installation
var CanonicalRoles = []Role{
	{Name: RoleAdmin, Description: "Full access to every resource"},
	{Name: RoleUser, Description: "Creates and edits own features"},
	{Name: RoleReleaseManager, Description: "Manages releases, catalog and task flow"},
	{Name: RoleReviewer, Description: "Approves review tasks"},
	{Name: RoleTester, Description: "Approves testing tasks"},
}

// Role is a named permission group referenced by users and task-type approvers
type Role struct {
	BaseModel
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex:uq_roles_name" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for Role
func (Role) TableName() string {
	return "roles"
}

// User is an authenticated account holding exactly one role
type User struct {
	BaseModel
	Username       string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_users_username" json:"username"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	HashedPassword string    `gorm:"type:varchar(255);not null" json:"-"`
	RoleID         uuid.UUID `gorm:"type:uuid;not null;index:idx_users_role_id" json:"role_id"`
	Role           *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// RoleName returns the loaded role name or an empty string
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
