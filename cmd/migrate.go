package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fyp-labs/adaptive-learning-platform/pkg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		db, err := openDatabase(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}()

		if err := pkg.Migrate(db); err != nil {
			return err
		}
		logger.Info("Schema migrated", "tables", len(pkg.Models()))
		return nil
	},
}
