package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
)

// Every method takes an optional tx; nil means the repository's default connection.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	// Upsert inserts or refreshes name, email and role of an externally managed user
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateResume(ctx context.Context, tx *gorm.DB, id string, resume *models.Resume) error
}

type CompanyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, company *models.Company) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Company, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Company, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type TopicRepository interface {
	Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Topic, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uint, userID string) ([]*models.Topic, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error)
	ListByTopic(ctx context.Context, tx *gorm.DB, topicID uint, userID string) ([]*models.File, error)
	// Delete removes the row and returns it so the caller can drop the blob
	Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error)
}

type AssessmentFilters struct {
	ActiveOnly bool
}

type AssessmentRepository interface {
	// Create inserts the assessment with its questions
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	// GetByID returns a live assessment with ordered questions
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	// GetByIDUnscoped also resolves soft deleted assessments
	GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.Assessment, error)
	// Update rewrites mutable fields and replaces the question list
	Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type AssessmentStats struct {
	AssessmentID      uint    `json:"assessment_id"`
	TotalAttempts     int64   `json:"total_attempts"`
	CompletedAttempts int64   `json:"completed_attempts"`
	PassedAttempts    int64   `json:"passed_attempts"`
	AverageScore      float64 `json:"average_score"`
	AveragePercentage float64 `json:"average_percentage"`
	PassRate          float64 `json:"pass_rate"`
}

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	// GetByID loads answers and the (possibly soft deleted) assessment
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Attempt, error)
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Attempt, error)
	// Complete writes the graded result only if the attempt is still in progress,
	// returning ErrConditionFailed otherwise
	Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	// Abandon moves an in-progress attempt to abandoned, returning ErrConditionFailed otherwise
	Abandon(ctx context.Context, tx *gorm.DB, id uint) error
	GetAssessmentStats(ctx context.Context, tx *gorm.DB, assessmentID uint) (*AssessmentStats, error)
}
