package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindAll(ctx context.Context) ([]domain.Role, error)
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type roleRepositoryImpl struct {
	db *gorm.DB
}

// NewRoleRepository creates a new instance of RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepositoryImpl{db: db}
}

func (r *roleRepositoryImpl) Create(ctx context.Context, role *domain.Role) error {
	return conn(ctx, r.db).Create(role).Error
}

func (r *roleRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	var role domain.Role
	if err := conn(ctx, r.db).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepositoryImpl) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	if err := conn(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepositoryImpl) FindAll(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	if err := conn(ctx, r.db).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CountUsers counts the users holding a role
func (r *roleRepositoryImpl) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

// Delete removes a role together with the approver assignments that reference it
func (r *roleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("role_id = ?", id).Delete(&domain.TaskTypeApprover{}).Error; err != nil {
		return err
	}
	return deleteByID(db, &domain.Role{}, id)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	return conn(ctx, r.db).Omit("Role").Create(user).Error
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).Preload("Role").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepositoryImpl) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := conn(ctx, r.db).Preload("Role").Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	return conn(ctx, r.db).Omit("Role").Save(user).Error
}

// Delete removes the user. Evidence they uploaded stays, with uploaded_by cleared.
func (r *userRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.AttachmentLink{}).
			Where("uploaded_by = ?", id).
			Update("uploaded_by", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &domain.User{}, id)
	})
}

// deleteByID hard-deletes one row and reports gorm.ErrRecordNotFound when nothing matched
func deleteByID(db *gorm.DB, model interface{}, id uuid.UUID) error {
	result := db.Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
