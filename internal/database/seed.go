package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// SeedOptions controls the initial accounts created by Seed
type SeedOptions struct {
	// DefaultPassword is assigned to every seeded user
	DefaultPassword string
}

type seedUser struct {
	username string
	email    string
	role     string
}

var seedUsers = []seedUser{
	{"admin", "admin@example.com", domain.RoleAdmin},
	{"manager", "release_manager@example.com", domain.RoleReleaseManager},
	{"user", "user@example.com", domain.RoleUser},
}

type seedReleaseType struct {
	name     string
	platform string
	channel  string
}

var (
	seedPlatforms    = []string{"Android", "iOS", "Web"}
	seedChannels     = []string{"sbol", "investor"}
	seedReleaseTypes = []seedReleaseType{
		{"Android sbol", "Android", "sbol"},
		{"iOS sbol", "iOS", "sbol"},
		{"Web sbol", "Web", "sbol"},
		{"Web investor", "Web", "investor"},
	}
	seedTaskTypes = []domain.TaskType{
		{KeyName: "uxui", Name: "UX/UI review", Description: "Design review of the delivered screens", IsRequired: true},
		{KeyName: "test", Name: "Testing", Description: "Functional testing", IsRequired: true},
		{KeyName: "analytic", Name: "Analytics", Description: "Analytics events verified", IsRequired: true},
		{KeyName: "feature_toggle", Name: "Feature toggle", Description: "Feature toggle configured", IsRequired: true},
	}
	seedApprovers = map[string]string{
		"uxui": domain.RoleReviewer,
		"test": domain.RoleTester,
	}
	seedFeatureTypes = []struct {
		name        string
		description string
		taskTypes   []string
	}{
		{"Review-exempt", "Feature that skips design review", []string{"test", "analytic", "feature_toggle"}},
		{"No-toggle-required", "Feature shipped without a toggle", []string{"uxui", "test", "analytic"}},
	}
)

// Seed inserts the canonical reference data. Rows that already exist are left untouched.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, log *zap.Logger) error {
	if opts.DefaultPassword == "" {
		return errors.New("seed: default password is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := make(map[string]uuid.UUID, len(domain.CanonicalRoles))
		for _, r := range domain.CanonicalRoles {
			role := r
			if err := tx.Where(domain.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", role.Name, err)
			}
			roles[role.Name] = role.ID
		}

		for _, u := range seedUsers {
			var count int64
			if err := tx.Model(&domain.User{}).Where("username = ?", u.username).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(opts.DefaultPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.username, err)
			}
			user := domain.User{
				Username:       u.username,
				Email:          u.email,
				HashedPassword: string(hash),
				RoleID:         roles[u.role],
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.username, err)
			}
		}

		platforms := make(map[string]uuid.UUID, len(seedPlatforms))
		for _, name := range seedPlatforms {
			p := domain.Platform{Name: name}
			if err := tx.Where(domain.Platform{Name: name}).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed platform %s: %w", name, err)
			}
			platforms[name] = p.ID
		}

		channels := make(map[string]uuid.UUID, len(seedChannels))
		for _, name := range seedChannels {
			ch := domain.Channel{Name: name}
			if err := tx.Where(domain.Channel{Name: name}).FirstOrCreate(&ch).Error; err != nil {
				return fmt.Errorf("seed channel %s: %w", name, err)
			}
			channels[name] = ch.ID
		}

		for _, rt := range seedReleaseTypes {
			releaseType := domain.ReleaseType{
				Name:       rt.name,
				PlatformID: platforms[rt.platform],
				ChannelID:  channels[rt.channel],
			}
			if err := tx.Where(domain.ReleaseType{Name: rt.name}).FirstOrCreate(&releaseType).Error; err != nil {
				return fmt.Errorf("seed release type %s: %w", rt.name, err)
			}
		}

		taskTypes := make(map[string]uuid.UUID, len(seedTaskTypes))
		for _, t := range seedTaskTypes {
			taskType := t
			if err := tx.Where(domain.TaskType{KeyName: t.KeyName}).FirstOrCreate(&taskType).Error; err != nil {
				return fmt.Errorf("seed task type %s: %w", t.KeyName, err)
			}
			taskTypes[t.KeyName] = taskType.ID
		}

		for key, roleName := range seedApprovers {
			approver := domain.TaskTypeApprover{TaskTypeID: taskTypes[key], RoleID: roles[roleName]}
			if err := tx.Where(domain.TaskTypeApprover{TaskTypeID: taskTypes[key]}).FirstOrCreate(&approver).Error; err != nil {
				return fmt.Errorf("seed approver for %s: %w", key, err)
			}
		}

		for _, ft := range seedFeatureTypes {
			featureType := domain.FeatureType{Name: ft.name, Description: ft.description}
			if err := tx.Where(domain.FeatureType{Name: ft.name}).FirstOrCreate(&featureType).Error; err != nil {
				return fmt.Errorf("seed feature type %s: %w", ft.name, err)
			}
			for _, key := range ft.taskTypes {
				link := domain.FeatureTypeTaskType{FeatureTypeID: featureType.ID, TaskTypeID: taskTypes[key]}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("seed feature type %s task %s: %w", ft.name, key, err)
				}
			}
		}

		log.Info("Seed data ensured",
			zap.Int("roles", len(roles)),
			zap.Int("users", len(seedUsers)),
			zap.Int("task_types", len(taskTypes)),
			zap.Int("feature_types", len(seedFeatureTypes)),
		)
		return nil
	})
}
