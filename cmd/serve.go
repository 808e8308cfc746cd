package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fyp-labs/adaptive-learning-platform/internal/events"
	"github.com/fyp-labs/adaptive-learning-platform/internal/handlers"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories/postgres"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/storage"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
	"github.com/fyp-labs/adaptive-learning-platform/pkg"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("auto-migrate", false, "Migrate the schema before serving")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	slogLogger := newLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)

	db, err := openDatabase(cfg, slogLogger)
	if err != nil {
		return err
	}
	if migrate, _ := cmd.Flags().GetBool("auto-migrate"); migrate {
		if err := pkg.Migrate(db); err != nil {
			return err
		}
	}

	// Redis is optional; the cache degrades to pass-through without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, caching disabled", "error", err)
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	publisher, err := events.NewPublisher(cfg.KafkaBrokers, slogLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	store, err := storage.NewDiskStore(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}

	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repoManager.GetRepository(),
		Logger:    slogLogger,
		Validator: validator.New(),
		Store:     store,
		Publisher: publisher,
	}, services.ServiceManagerConfig{
		AdminEmails: cfg.AdminEmails,
		JWTSecret:   cfg.JWT.Secret,
		JWTTTL:      cfg.JWT.TTL,
	})
	if err := serviceManager.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	verifiers := []handlers.TokenVerifier{handlers.NewJWTVerifier(serviceManager.Tokens())}
	if cfg.Casdoor.Enabled() {
		verifiers = append(verifiers, handlers.NewCasdoorVerifier(cfg.Casdoor, serviceManager.Auth()))
		logger.Info("Casdoor token verification enabled", "endpoint", cfg.Casdoor.Endpoint)
	}
	authMiddleware := handlers.NewAuthMiddleware(logger, verifiers...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadSize

	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)
	handlers.NewHandlerManager(serviceManager, authMiddleware, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("Shutting down server...", "signal", sig.String())
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
	return runErr
}
