package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

const msgUserInUse = "Username or email already in use"

// UserService manages accounts and roles
type UserService interface {
	CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error)
	UpdateRole(ctx context.Context, actor authz.Actor, id uuid.UUID, roleName string) (*dto.UserResponse, error)
	UpdatePassword(ctx context.Context, actor authz.Actor, req *dto.UpdatePasswordRequest) error
	UpdateEmail(ctx context.Context, actor authz.Actor, email string) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor authz.Actor, id uuid.UUID) error

	CreateRole(ctx context.Context, actor authz.Actor, req *dto.CreateRoleRequest) (*dto.RoleResponse, error)
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
	DeleteRole(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type userServiceImpl struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, roleRepo: roleRepo, logger: logger}
}

// HashPassword hashes a password with bcrypt's default cost
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, actor authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}

	roleName := req.Role
	if roleName == "" {
		roleName = domain.RoleUser
	}
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return nil, lookupError(err, "Role")
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, internalError("check user", err)
	}
	if exists {
		return nil, response.NewConflictError(msgUserInUse, "")
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, internalError("hash password", err)
	}
	user := &domain.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		RoleID:         role.ID,
		Role:           role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistError(err, "create user", msgUserInUse)
	}

	s.logger.Info("User created", zap.String("username", user.Username), zap.String("role", role.Name))
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list users", err)
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserResponse(&users[i]))
	}
	return result, nil
}

func (s *userServiceImpl) UpdateRole(ctx context.Context, actor authz.Actor, id uuid.UUID, roleName string) (*dto.UserResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User")
	}
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return nil, lookupError(err, "Role")
	}

	user.RoleID = role.ID
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, internalError("update user", err)
	}
	s.logger.Info("User role changed",
		zap.String("username", user.Username),
		zap.String("role", role.Name),
		zap.String("actor", actor.Username))
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdatePassword changes the actor's own password after checking the current one
func (s *userServiceImpl) UpdatePassword(ctx context.Context, actor authz.Actor, req *dto.UpdatePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return lookupError(err, "User")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)) != nil {
		return response.NewValidationError("Current password is incorrect", "")
	}
	hashed, err := HashPassword(req.NewPassword)
	if err != nil {
		return internalError("hash password", err)
	}
	user.HashedPassword = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internalError("update user", err)
	}
	return nil
}

func (s *userServiceImpl) UpdateEmail(ctx context.Context, actor authz.Actor, email string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, lookupError(err, "User")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email, user.ID)
	if err != nil {
		return nil, internalError("check email", err)
	}
	if exists {
		return nil, response.NewConflictError("Email already in use", "")
	}
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, persistError(err, "update user", "Email already in use")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return err
	}
	if actor.Is(id) {
		return response.NewValidationError("Cannot delete your own account", "")
	}
	return deleteError(s.userRepo.Delete(ctx, id), "User")
}

func (s *userServiceImpl) CreateRole(ctx context.Context, actor authz.Actor, req *dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if _, err := s.roleRepo.FindByName(ctx, name); err == nil {
		return nil, response.NewConflictError("Role name already in use", name)
	}

	role := &domain.Role{Name: name, Description: req.Description}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, persistError(err, "create role", "Role name already in use")
	}
	resp := dto.NewRoleResponse(role)
	return &resp, nil
}

func (s *userServiceImpl) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("list roles", err)
	}
	result := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		result = append(result, dto.NewRoleResponse(&roles[i]))
	}
	return result, nil
}

// DeleteRole refuses while users hold the role. Approver assignments go with it.
func (s *userServiceImpl) DeleteRole(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor.Role, authz.AdminOnly...); err != nil {
		return err
	}
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "Role")
	}
	count, err := s.roleRepo.CountUsers(ctx, id)
	if err != nil {
		return internalError("count users", err)
	}
	if count > 0 {
		return response.NewConflictError("Role is assigned to users", role.Name)
	}
	return deleteError(s.roleRepo.Delete(ctx, id), "Role")
}
