package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"release-tracker-api/internal/database"
)

var seedPassword string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.SafeAutoMigrate(db, logger); err != nil {
			return err
		}
		logger.Info("Database migrations completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert canonical roles, users, reference data and the task catalog",
	Long: `seed inserts the canonical roles, one user per built-in role, the
platforms, channels and release types, and the default task and feature types.
Existing rows are left untouched, so the command can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := seedPassword
		if password == "" {
			password = os.Getenv("SEED_PASSWORD")
		}
		if password == "" {
			return errors.New("a password for the seeded users is required (--password or SEED_PASSWORD)")
		}

		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.SafeAutoMigrate(db, logger); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db, database.SeedOptions{DefaultPassword: password}, logger); err != nil {
			return err
		}
		logger.Info("Seed data applied", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "Password assigned to seeded users")
}
