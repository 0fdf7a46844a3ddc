package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/database"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/repository"
)

const testPassword = "secret123"

// testEnv wires every service over a seeded in-memory database
type testEnv struct {
	db       *gorm.DB
	evidence *client.MockS3Client
	metrics  *metrics.Metrics

	catalog   CatalogService
	features  FeatureService
	tasks     TaskService
	releases  ReleaseService
	users     UserService
	changeLog ChangeLogService

	roles        map[string]domain.Role
	taskTypes    map[string]domain.TaskType
	featureTypes map[string]domain.FeatureType
	release      domain.Release

	admin   authz.Actor
	manager authz.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(ctx, db, database.SeedOptions{DefaultPassword: testPassword}, logger))
	t.Cleanup(func() { _ = database.Close(db) })

	env := &testEnv{
		db:           db,
		evidence:     client.NewMockS3Client(),
		metrics:      metrics.NewWithRegistry(prometheus.NewRegistry(), logger),
		roles:        map[string]domain.Role{},
		taskTypes:    map[string]domain.TaskType{},
		featureTypes: map[string]domain.FeatureType{},
	}

	var roles []domain.Role
	require.NoError(t, db.Find(&roles).Error)
	for _, r := range roles {
		env.roles[r.Name] = r
	}
	var taskTypes []domain.TaskType
	require.NoError(t, db.Find(&taskTypes).Error)
	for _, tt := range taskTypes {
		env.taskTypes[tt.KeyName] = tt
	}
	var featureTypes []domain.FeatureType
	require.NoError(t, db.Find(&featureTypes).Error)
	for _, ft := range featureTypes {
		env.featureTypes[ft.Name] = ft
	}

	tx := repository.NewTransactor(db)
	featureRepo := repository.NewFeatureRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	releaseRepo := repository.NewReleaseRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	changeLogRepo := repository.NewChangeLogRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	env.catalog = NewCatalogService(tx, repository.NewTaskTypeRepository(db), repository.NewFeatureTypeRepository(db), roleRepo, logger)
	env.features = NewFeatureService(tx, featureRepo, taskRepo, releaseRepo, attachmentRepo, changeLogRepo,
		env.catalog, env.evidence, env.metrics, logger)
	env.tasks = NewTaskService(tx, taskRepo, featureRepo, attachmentRepo, repository.NewCommentRepository(db),
		changeLogRepo, env.catalog, env.evidence, env.metrics, logger)
	env.releases = NewReleaseService(tx, releaseRepo, repository.NewPlatformRepository(db), repository.NewChannelRepository(db),
		repository.NewReleaseTypeRepository(db), attachmentRepo, changeLogRepo, env.evidence, logger)
	env.users = NewUserService(repository.NewUserRepository(db), roleRepo, logger)
	env.changeLog = NewChangeLogService(changeLogRepo)

	env.admin = env.actor(t, domain.RoleAdmin)
	env.manager = env.actor(t, domain.RoleReleaseManager)
	env.release = env.newRelease(t, "2024.03", domain.ReleaseStatusOpen)
	return env
}

// actor creates a fresh account holding role
func (e *testEnv) actor(t *testing.T, role string) authz.Actor {
	t.Helper()
	user := domain.User{
		Username:       role + "-" + uuid.NewString()[:8],
		HashedPassword: "x",
		RoleID:         e.roles[role].ID,
	}
	user.Email = user.Username + "@example.com"
	require.NoError(t, e.db.Create(&user).Error)
	return authz.Actor{ID: user.ID, Username: user.Username, Role: role}
}

func (e *testEnv) newRelease(t *testing.T, name string, status domain.ReleaseStatus) domain.Release {
	t.Helper()
	var releaseType domain.ReleaseType
	require.NoError(t, e.db.Where("name = ?", "Android sbol").First(&releaseType).Error)
	release := domain.Release{
		Name:          name,
		Status:        status,
		PlatformID:    releaseType.PlatformID,
		ChannelID:     releaseType.ChannelID,
		ReleaseTypeID: releaseType.ID,
	}
	require.NoError(t, e.db.Create(&release).Error)
	return release
}

func (e *testEnv) createFeature(t *testing.T, actor authz.Actor, name, featureType string) *dto.FeatureDetailResponse {
	t.Helper()
	feature, err := e.features.CreateFeature(context.Background(), actor, &dto.CreateFeatureRequest{
		Name:          name,
		FeatureTypeID: e.featureTypes[featureType].ID,
		ReleaseID:     e.release.ID,
	})
	require.NoError(t, err)
	return feature
}

func taskByKey(t *testing.T, feature *dto.FeatureDetailResponse, key string) dto.TaskDetailResponse {
	t.Helper()
	for _, task := range feature.Tasks {
		if task.KeyName == key {
			return task
		}
	}
	t.Fatalf("feature %s has no %s task", feature.Name, key)
	return dto.TaskDetailResponse{}
}

func taskKeys(feature *dto.FeatureDetailResponse) []string {
	keys := make([]string, 0, len(feature.Tasks))
	for _, task := range feature.Tasks {
		keys = append(keys, task.KeyName)
	}
	return keys
}
