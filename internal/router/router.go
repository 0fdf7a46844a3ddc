package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commonmw "github.com/OrangesCloud/wealist-advanced-go-pkg/middleware"

	_ "release-tracker-api/docs"
	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/handler"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/middleware"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Logger      *zap.Logger
	BasePath    string
	Mode        string
	Metrics     *metrics.Metrics
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	// Evidence may be nil when object storage is not configured
	Evidence client.EvidenceStore
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()

	// Middleware (using common package)
	r.Use(commonmw.Recovery(cfg.Logger))
	r.Use(commonmw.Logger(cfg.Logger))
	r.Use(commonmw.DefaultCORS())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	tx := repository.NewTransactor(cfg.DB)
	userRepo := repository.NewUserRepository(cfg.DB)
	roleRepo := repository.NewRoleRepository(cfg.DB)
	platformRepo := repository.NewPlatformRepository(cfg.DB)
	channelRepo := repository.NewChannelRepository(cfg.DB)
	releaseTypeRepo := repository.NewReleaseTypeRepository(cfg.DB)
	releaseRepo := repository.NewReleaseRepository(cfg.DB)
	taskTypeRepo := repository.NewTaskTypeRepository(cfg.DB)
	featureTypeRepo := repository.NewFeatureTypeRepository(cfg.DB)
	featureRepo := repository.NewFeatureRepository(cfg.DB)
	taskRepo := repository.NewTaskRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	commentRepo := repository.NewCommentRepository(cfg.DB)
	changeLogRepo := repository.NewChangeLogRepository(cfg.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.Tokens, cfg.Revocations, cfg.Metrics, cfg.Logger)
	userService := service.NewUserService(userRepo, roleRepo, cfg.Logger)
	referenceService := service.NewReferenceService(platformRepo, channelRepo, releaseTypeRepo)
	catalogService := service.NewCatalogService(tx, taskTypeRepo, featureTypeRepo, roleRepo, cfg.Logger)
	releaseService := service.NewReleaseService(
		tx, releaseRepo, platformRepo, channelRepo, releaseTypeRepo,
		attachmentRepo, changeLogRepo, cfg.Evidence, cfg.Logger,
	)
	featureService := service.NewFeatureService(
		tx, featureRepo, taskRepo, releaseRepo, attachmentRepo, changeLogRepo,
		catalogService, cfg.Evidence, cfg.Metrics, cfg.Logger,
	)
	taskService := service.NewTaskService(
		tx, taskRepo, featureRepo, attachmentRepo, commentRepo, changeLogRepo,
		catalogService, cfg.Evidence, cfg.Metrics, cfg.Logger,
	)
	changeLogService := service.NewChangeLogService(changeLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Logger)
	userHandler := handler.NewUserHandler(userService, cfg.Logger)
	referenceHandler := handler.NewReferenceHandler(referenceService, cfg.Logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, cfg.Logger)
	releaseHandler := handler.NewReleaseHandler(releaseService, cfg.Logger)
	featureHandler := handler.NewFeatureHandler(featureService, cfg.Logger)
	taskHandler := handler.NewTaskHandler(taskService, cfg.Logger)
	changeLogHandler := handler.NewChangeLogHandler(changeLogService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Tokens, cfg.Revocations, cfg.Logger)

	api := r.Group(cfg.BasePath)

	// ============================================================
	// Auth routes
	// ============================================================
	api.POST("/auth/token", authHandler.Login)
	api.POST("/auth/logout", authMiddleware, authHandler.Logout)

	protected := api.Group("")
	protected.Use(authMiddleware)

	users := protected.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.PUT("/me/password", userHandler.UpdatePassword)
		users.PUT("/me/email", userHandler.UpdateEmail)
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id/role", userHandler.UpdateRole)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	roles := protected.Group("/roles")
	{
		roles.POST("", userHandler.CreateRole)
		roles.GET("", userHandler.ListRoles)
		roles.DELETE("/:id", userHandler.DeleteRole)
	}

	// ============================================================
	// Reference data
	// ============================================================
	platforms := protected.Group("/platforms")
	{
		platforms.POST("", referenceHandler.CreatePlatform)
		platforms.GET("", referenceHandler.ListPlatforms)
		platforms.PUT("/:id", referenceHandler.RenamePlatform)
		platforms.DELETE("/:id", referenceHandler.DeletePlatform)
	}

	channels := protected.Group("/channels")
	{
		channels.POST("", referenceHandler.CreateChannel)
		channels.GET("", referenceHandler.ListChannels)
		channels.PUT("/:id", referenceHandler.RenameChannel)
		channels.DELETE("/:id", referenceHandler.DeleteChannel)
	}

	releaseTypes := protected.Group("/release-types")
	{
		releaseTypes.POST("", referenceHandler.CreateReleaseType)
		releaseTypes.GET("", referenceHandler.ListReleaseTypes)
		releaseTypes.DELETE("/:id", referenceHandler.DeleteReleaseType)
	}

	releases := protected.Group("/releases")
	{
		releases.POST("", releaseHandler.CreateRelease)
		releases.GET("", releaseHandler.ListReleases)
		releases.GET("/:id", releaseHandler.GetRelease)
		releases.PUT("/:id", releaseHandler.UpdateRelease)
		releases.DELETE("/:id", releaseHandler.DeleteRelease)
	}

	// ============================================================
	// Catalog
	// ============================================================
	featureTypes := protected.Group("/feature-types")
	{
		featureTypes.POST("", catalogHandler.CreateFeatureType)
		featureTypes.GET("", catalogHandler.ListFeatureTypes)
		featureTypes.GET("/:id", catalogHandler.GetFeatureType)
		featureTypes.PUT("/:id/task-types", catalogHandler.SetFeatureTypeTaskTypes)
		featureTypes.DELETE("/:id", catalogHandler.DeleteFeatureType)
	}

	taskTypes := protected.Group("/task-types")
	{
		taskTypes.POST("", catalogHandler.CreateTaskType)
		taskTypes.GET("", catalogHandler.ListTaskTypes)
		taskTypes.GET("/:id", catalogHandler.GetTaskType)
		taskTypes.DELETE("/:id", catalogHandler.DeleteTaskType)
		taskTypes.GET("/:id/approver", catalogHandler.GetApprover)
		taskTypes.PUT("/:id/approver", catalogHandler.AssignApprover)
		taskTypes.DELETE("/:id/approver", catalogHandler.RemoveApprover)
	}

	// ============================================================
	// Features and tasks
	// ============================================================
	features := protected.Group("/feature")
	{
		features.POST("", featureHandler.CreateFeature)
		features.GET("", featureHandler.ListFeatures)
		features.GET("/by-name/:name", featureHandler.GetFeatureByName)
		features.GET("/:id", featureHandler.GetFeature)
		features.PUT("/:id", featureHandler.UpdateFeature)
		features.DELETE("/:id", featureHandler.DeleteFeature)
		features.PUT("/:id/type", featureHandler.ChangeFeatureType)
		features.PUT("/:id/release", featureHandler.ChangeFeatureRelease)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)

		tasks.GET("/:id/attachments", taskHandler.ListAttachments)
		tasks.POST("/:id/attachments", taskHandler.UploadAttachment)
		tasks.POST("/:id/attachments/presigned-url", taskHandler.GeneratePresignedURL)

		tasks.GET("/:id/comments", taskHandler.GetComments)
		tasks.POST("/:id/comments", taskHandler.AddComment)
	}

	protected.GET("/changelog", changeLogHandler.ListChangeLog)

	return r
}
