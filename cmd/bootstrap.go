package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/config"
	"github.com/fyp-labs/adaptive-learning-platform/pkg"
)

// loadConfig applies --env-file (if any) and reads the process environment
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return config.LoadConfig()
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database", "max_open_conns", cfg.Database.MaxOpenConns)
	return db, nil
}
