package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in-progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

type Attempt struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	UserID       string        `json:"user_id" gorm:"not null;index;size:255"`
	AssessmentID uint          `json:"assessment_id" gorm:"not null;index"`
	Status       AttemptStatus `json:"status" gorm:"not null;default:in-progress;index;size:20"`

	// Scoring, written once on submission
	TotalScore  float64                        `json:"total_score"`
	Percentage  float64                        `json:"percentage"`
	Passed      bool                           `json:"passed"`
	TimeTaken   int                            `json:"time_taken"` // seconds
	Performance datatypes.JSONType[Performance] `json:"performance" gorm:"type:jsonb"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Answers    []Answer    `json:"answers" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
	Assessment *Assessment `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
}

// Answer is scored by the grading engine only. IsCorrect stays nil for
// answers that could not be matched to a question.
type Answer struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	AttemptID     uint    `json:"attempt_id" gorm:"not null;index"`
	QuestionID    string  `json:"question_id" gorm:"not null;size:36;index"`
	Answer        string  `json:"answer" gorm:"type:text"`
	IsCorrect     *bool   `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained"`
	TimeTaken     int     `json:"time_taken"` // seconds, self-reported
}

type Performance struct {
	Accuracy    float64          `json:"accuracy"` // percent of submitted answers correct
	Speed       float64          `json:"speed"`    // average seconds per answer
	SectionWise []SectionSummary `json:"section_wise"`
}

type SectionSummary struct {
	Section Section `json:"section"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	AvgTime float64 `json:"avg_time"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (Answer) TableName() string {
	return "attempt_answers"
}

func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptInProgress
}
