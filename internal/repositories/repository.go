package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrConditionFailed is returned when a guarded update matched no row
	ErrConditionFailed = errors.New("update condition not met")
)

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository aggregates all repository interfaces
type Repository interface {
	User() UserRepository
	Company() CompanyRepository
	Topic() TopicRepository
	File() FileRepository
	Assessment() AssessmentRepository
	Attempt() AttemptRepository

	// WithTransaction runs fn with repositories bound to one transaction
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
