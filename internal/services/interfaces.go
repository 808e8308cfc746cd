package services

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

// Identity is the authenticated caller, passed explicitly into every operation
type Identity struct {
	UserID string
	Role   models.UserRole
	Email  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// ===== RESPONSE DTOs =====

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type StartAttemptResponse struct {
	AttemptID  uint               `json:"attempt_id"`
	StartedAt  time.Time          `json:"started_at"`
	Assessment *models.Assessment `json:"assessment"`
}

type SubmitAttemptResponse struct {
	AttemptID   uint               `json:"attempt_id"`
	TotalScore  float64            `json:"total_score"`
	TotalMarks  float64            `json:"total_marks"`
	Percentage  float64            `json:"percentage"`
	Passed      bool               `json:"passed"`
	TimeTaken   int                `json:"time_taken"`
	Performance models.Performance `json:"performance"`
	CompletedAt time.Time          `json:"completed_at"`
}

// GradeResult is the pure output of the grading engine
type GradeResult struct {
	Answers     []models.Answer
	TotalScore  float64
	Percentage  float64
	Passed      bool
	TimeTaken   int
	Performance models.Performance
}

type UserStats struct {
	TotalAttempts     int                     `json:"total_attempts"`
	CompletedAttempts int                     `json:"completed_attempts"`
	PassedAttempts    int                     `json:"passed_attempts"`
	AveragePercentage float64                 `json:"average_percentage"`
	BestPercentage    float64                 `json:"best_percentage"`
	Sections          []models.SectionSummary `json:"sections"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, identity Identity) (*models.User, error)
	UploadResume(ctx context.Context, identity Identity, originalName string, content io.Reader) (*models.User, error)
	// SyncExternalUser records a user authenticated by an external identity provider
	SyncExternalUser(ctx context.Context, user *models.User) (*models.User, error)
}

type CompanyService interface {
	Create(ctx context.Context, req *models.CompanyCreateRequest, identity Identity) (*models.Company, error)
	List(ctx context.Context, identity Identity) ([]*models.Company, error)
	Get(ctx context.Context, id uint, identity Identity) (*models.Company, error)
	Delete(ctx context.Context, id uint, identity Identity) error
}

type TopicService interface {
	Create(ctx context.Context, req *models.TopicCreateRequest, identity Identity) (*models.Topic, error)
	ListByCompany(ctx context.Context, companyID uint, identity Identity) ([]*models.Topic, error)
	Get(ctx context.Context, id uint, identity Identity) (*models.Topic, error)
	Delete(ctx context.Context, id uint, identity Identity) error
}

type FileService interface {
	Upload(ctx context.Context, req *models.FileUploadRequest, originalName string, content io.Reader, identity Identity) (*models.File, error)
	ListByTopic(ctx context.Context, topicID uint, identity Identity) ([]*models.File, error)
	// Open returns the metadata and an open handle the caller must close
	Open(ctx context.Context, id uint, identity Identity) (*models.File, *os.File, error)
	Delete(ctx context.Context, id uint, identity Identity) error
}

type AssessmentService interface {
	Create(ctx context.Context, req *models.AssessmentRequest, identity Identity) (*models.Assessment, error)
	// List returns active assessments, redacted for non-admins
	List(ctx context.Context, identity Identity) ([]*models.Assessment, error)
	// ListAll returns every live assessment unredacted; admin only
	ListAll(ctx context.Context, identity Identity) ([]*models.Assessment, error)
	Get(ctx context.Context, id uint, identity Identity) (*models.Assessment, error)
	Update(ctx context.Context, id uint, req *models.AssessmentRequest, identity Identity) (*models.Assessment, error)
	Delete(ctx context.Context, id uint, identity Identity) error
}

// GradingService is pure: no I/O, no persistence
type GradingService interface {
	Grade(assessment *models.Assessment, submitted []models.SubmittedAnswer) (*GradeResult, error)
	IsCorrect(question *models.Question, answer string) bool
}

type AttemptService interface {
	Start(ctx context.Context, assessmentID uint, identity Identity) (*StartAttemptResponse, error)
	Submit(ctx context.Context, assessmentID uint, req *models.SubmitAttemptRequest, identity Identity) (*SubmitAttemptResponse, error)
	ListMine(ctx context.Context, identity Identity) ([]*models.Attempt, error)
	Get(ctx context.Context, attemptID uint, identity Identity) (*models.Attempt, error)
	Abandon(ctx context.Context, attemptID uint, identity Identity) error
}

type StatsService interface {
	MyStats(ctx context.Context, identity Identity) (*UserStats, error)
	AssessmentStats(ctx context.Context, assessmentID uint, identity Identity) (*repositories.AssessmentStats, error)
}

type ExportService interface {
	ExportResults(ctx context.Context, assessmentID uint, identity Identity) (*ExportFile, error)
}

// ServiceManager owns service construction and lifecycle
type ServiceManager interface {
	Auth() AuthService
	Company() CompanyService
	Topic() TopicService
	File() FileService
	Assessment() AssessmentService
	Attempt() AttemptService
	Grading() GradingService
	Stats() StatsService
	Export() ExportService
	Tokens() *TokenIssuer

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
