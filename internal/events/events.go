package events

import (
	"time"
)

// Topics published by the platform
const (
	TopicAssessmentCreated = "assessment.created"
	TopicAssessmentUpdated = "assessment.updated"
	TopicAssessmentDeleted = "assessment.deleted"
	TopicAttemptStarted    = "attempt.started"
	TopicAttemptCompleted  = "attempt.completed"
	TopicAttemptAbandoned  = "attempt.abandoned"
)

type AssessmentEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	Title        string    `json:"title"`
	ActorID      string    `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type AttemptEvent struct {
	AttemptID    uint      `json:"attempt_id"`
	AssessmentID uint      `json:"assessment_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	TotalScore   float64   `json:"total_score,omitempty"`
	Percentage   float64   `json:"percentage,omitempty"`
	Passed       bool      `json:"passed"`
	OccurredAt   time.Time `json:"occurred_at"`
}
