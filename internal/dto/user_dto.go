package dto

import (
	"time"

	"github.com/google/uuid"

	"release-tracker-api/internal/domain"
)

// CreateUserRequest represents the request to create a user account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	// Role is a role name; defaults to "user"
	Role string `json:"role,omitempty" example:"user"`
}

// UpdateRoleRequest changes the role of a user
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required" example:"tester"`
}

// UpdatePasswordRequest changes the caller's password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// UpdateEmailRequest changes the caller's email
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// CreateRoleRequest represents the request to create a role
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

// UserResponse represents a user account without credentials
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleResponse represents a role
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.RoleName(),
		CreatedAt: u.CreatedAt,
	}
}

func NewRoleResponse(r *domain.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, Description: r.Description}
}
