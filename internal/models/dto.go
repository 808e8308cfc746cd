package models

import (
	"time"
)

// ===== AUTH DTOs =====

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ===== COMPANY / TOPIC DTOs =====

type CompanyCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type TopicCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CompanyID   uint    `json:"company_id" validate:"required"`
}

type FileUploadRequest struct {
	TopicID   uint  `form:"topicId" validate:"required"`
	CompanyID *uint `form:"companyId"`
}

// ===== ASSESSMENT DTOs =====

type QuestionRequest struct {
	// ID is optional; echoing an existing id on update keeps answers resolvable
	ID            string          `json:"id" validate:"omitempty,uuid"`
	Kind          QuestionKind    `json:"kind" validate:"required,question_kind"`
	Prompt        string          `json:"prompt" validate:"required,min=1,max=5000"`
	Options       []string        `json:"options" validate:"omitempty,max=10,dive,required,max=1000"`
	CorrectAnswer string          `json:"correct_answer" validate:"max=1000"`
	TestCases     []TestCase      `json:"test_cases" validate:"omitempty,max=50"`
	Section       Section         `json:"section" validate:"required,section"`
	Difficulty    DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	TimeLimit     int             `json:"time_limit" validate:"omitempty,min=1,max=3600"`
}

// AssessmentRequest is used for both create and full-replace update.
// Fields tagged copier:"-" need defaults or id handling and are mapped by hand.
type AssessmentRequest struct {
	Title        string            `json:"title" validate:"required,assessment_title"`
	Description  *string           `json:"description" validate:"omitempty,max=2000"`
	CompanyID    *uint             `json:"company_id"`
	TopicID      *uint             `json:"topic_id"`
	Duration     int               `json:"duration" validate:"omitempty,assessment_duration"`
	TotalMarks   float64           `json:"total_marks" validate:"omitempty,gt=0"`
	PassingMarks *float64          `json:"passing_marks" validate:"omitempty,passing_marks" copier:"-"`
	IsActive     *bool             `json:"is_active" copier:"-"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,max=200,dive" copier:"-"`
}

// ===== ATTEMPT DTOs =====

type SubmittedAnswer struct {
	QuestionID string `json:"question_id" validate:"required,max=64"`
	Answer     string `json:"answer" validate:"max=20000"`
	TimeTaken  int    `json:"time_taken" validate:"max=86400"` // seconds; negatives are clamped when graded
}

type SubmitAttemptRequest struct {
	AttemptID uint              `json:"attempt_id" validate:"required"`
	Answers   []SubmittedAnswer `json:"answers" validate:"max=500,dive"`
}

// ===== RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
