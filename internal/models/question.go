package models

import (
	"gorm.io/datatypes"
)

type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple-choice"
	Coding         QuestionKind = "coding"
)

type Section string

const (
	SectionAptitude  Section = "aptitude"
	SectionReasoning Section = "reasoning"
	SectionVerbal    Section = "verbal"
	SectionCoding    Section = "coding"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// Question is owned by exactly one assessment. ID stays stable across
// assessment updates so stored answers keep resolving.
type Question struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	AssessmentID uint            `json:"-" gorm:"not null;index"`
	Position     int             `json:"-" gorm:"not null"`
	Kind         QuestionKind    `json:"kind" gorm:"not null;size:32"`
	Prompt       string          `json:"prompt" gorm:"type:text;not null"`
	Section      Section         `json:"section" gorm:"not null;size:32;index"`
	Difficulty   DifficultyLevel `json:"difficulty" gorm:"not null;default:medium;size:16"`
	TimeLimit    int             `json:"time_limit" gorm:"not null;default:60"` // seconds

	Options datatypes.JSONSlice[string] `json:"options,omitempty" gorm:"type:jsonb"`

	// Answer keys, stripped by Redact for non-admin callers
	CorrectAnswer string                        `json:"correct_answer,omitempty" gorm:"type:text"`
	TestCases     datatypes.JSONSlice[TestCase] `json:"test_cases,omitempty" gorm:"type:jsonb"`
}

func (Question) TableName() string {
	return "assessment_questions"
}

// Redact removes the answer key and test cases.
func (q *Question) Redact() {
	q.CorrectAnswer = ""
	q.TestCases = nil
}

func (q *Question) IsRedacted() bool {
	return q.CorrectAnswer == "" && len(q.TestCases) == 0
}
