package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fyp-labs/adaptive-learning-platform/internal/events"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/storage"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	AdminEmails []string
	JWTSecret   string
	JWTTTL      time.Duration

	DefaultTimeout time.Duration
}

// ServiceDependencies are the collaborators shared by every service
type ServiceDependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Store     storage.FileStore
	Publisher events.Publisher
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	authService       AuthService
	companyService    CompanyService
	topicService      TopicService
	fileService       FileService
	assessmentService AssessmentService
	attemptService    AttemptService
	gradingService    GradingService
	statsService      StatsService
	exportService     ExportService
	tokens            *TokenIssuer

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.deps.Repo == nil || sm.deps.Logger == nil || sm.deps.Validator == nil {
		return fmt.Errorf("service manager requires repository, logger and validator")
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.tokens = NewTokenIssuer(sm.config.JWTSecret, sm.config.JWTTTL)
	sm.gradingService = NewGradingService()
	sm.authService = NewAuthService(d.Repo, d.Logger, d.Validator, sm.tokens, d.Store, sm.config.AdminEmails)
	sm.companyService = NewCompanyService(d.Repo, d.Logger, d.Validator)
	sm.topicService = NewTopicService(d.Repo, d.Logger, d.Validator)
	sm.fileService = NewFileService(d.Repo, d.Logger, d.Validator, d.Store)
	sm.assessmentService = NewAssessmentService(d.Repo, d.Logger, d.Validator, d.Publisher)
	sm.attemptService = NewAttemptService(d.Repo, d.Logger, d.Validator, sm.gradingService, d.Publisher)
	sm.statsService = NewStatsService(d.Repo, d.Logger)
	sm.exportService = NewExportService(d.Repo, d.Logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Company() CompanyService {
	sm.mustBeInitialized()
	return sm.companyService
}

func (sm *serviceManager) Topic() TopicService {
	sm.mustBeInitialized()
	return sm.topicService
}

func (sm *serviceManager) File() FileService {
	sm.mustBeInitialized()
	return sm.fileService
}

func (sm *serviceManager) Assessment() AssessmentService {
	sm.mustBeInitialized()
	return sm.assessmentService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mustBeInitialized()
	return sm.attemptService
}

func (sm *serviceManager) Grading() GradingService {
	sm.mustBeInitialized()
	return sm.gradingService
}

func (sm *serviceManager) Stats() StatsService {
	sm.mustBeInitialized()
	return sm.statsService
}

func (sm *serviceManager) Export() ExportService {
	sm.mustBeInitialized()
	return sm.exportService
}

// Tokens exposes the issuer so the HTTP layer can verify what Auth signs
func (sm *serviceManager) Tokens() *TokenIssuer {
	sm.mustBeInitialized()
	return sm.tokens
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	ctx, cancel := context.WithTimeout(ctx, sm.config.DefaultTimeout)
	defer cancel()

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher. The repository is owned by its manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
