package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"release-tracker-api/internal/auth"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/database"
	"release-tracker-api/internal/job"
	"release-tracker-api/internal/metrics"
	"release-tracker-api/internal/router"
)

const (
	dbStatsInterval = 15 * time.Second
	jobTimeout      = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting Release Tracker",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := database.SafeAutoMigrate(db, logger); err != nil {
			return err
		}
	}

	// Initialize metrics
	m := metrics.New(logger)
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	database.StartDBStatsCollector(statsCtx, db, m, dbStatsInterval)

	scheduler := job.NewScheduler(logger, jobTimeout)
	collector := metrics.NewBusinessMetricsCollector(db, m, logger)
	if err := scheduler.Register(cfg.Metrics.CollectSchedule, job.NewMetricsJob(collector)); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	// Initialize S3 client. The interface stays nil when storage is unavailable.
	var evidence client.EvidenceStore
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3Client, err := client.NewS3Client(ctx, &cfg.S3, m)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, evidence uploads disabled", zap.Error(err))
		} else {
			evidence = s3Client
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, evidence uploads disabled")
	}

	redisClient, err := database.NewRedis(ctx, database.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := router.Setup(router.Config{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		BasePath:    cfg.Server.BasePath,
		Mode:        cfg.Server.Mode,
		Metrics:     m,
		Tokens:      auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL),
		Revocations: auth.NewRevocationStore(redisClient),
		Evidence:    evidence,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Release Tracker started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
	return nil
}
