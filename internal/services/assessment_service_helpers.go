package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
)

// ===== PERMISSION CHECKS =====

func requireAdmin(identity Identity, resource string, id interface{}, action string) error {
	if identity.IsAdmin() {
		return nil
	}
	return NewPermissionError(identity.UserID, resource, id, action)
}

// ===== REDACTION =====

// RedactAssessment strips answer keys and test cases from every question in
// place. Applying it twice is a no-op.
func RedactAssessment(assessment *models.Assessment) *models.Assessment {
	if assessment == nil {
		return nil
	}
	for i := range assessment.Questions {
		assessment.Questions[i].Redact()
	}
	return assessment
}

// viewAssessment returns the assessment as the caller may see it
func viewAssessment(assessment *models.Assessment, identity Identity) *models.Assessment {
	if assessment == nil {
		return nil
	}
	assessment.QuestionsCount = len(assessment.Questions)
	if identity.IsAdmin() {
		return assessment
	}
	return RedactAssessment(assessment)
}

// ===== VALIDATION =====

func (s *assessmentService) validateReferences(ctx context.Context, req *models.AssessmentRequest) error {
	if req.CompanyID != nil {
		ok, err := s.repo.Company().Exists(ctx, nil, *req.CompanyID)
		if err != nil {
			return storageError("failed to check company", err)
		}
		if !ok {
			return NewValidationError("company_id", "company does not exist", *req.CompanyID)
		}
	}
	if req.TopicID != nil {
		ok, err := s.repo.Topic().Exists(ctx, nil, *req.TopicID)
		if err != nil {
			return storageError("failed to check topic", err)
		}
		if !ok {
			return NewValidationError("topic_id", "topic does not exist", *req.TopicID)
		}
	}
	return nil
}

// ===== BUILDERS =====

// buildAssessment maps a request onto a model and applies defaults. keepIDs
// lists question ids that may be reused; any other id is replaced.
func buildAssessment(req *models.AssessmentRequest, keepIDs map[string]bool) (*models.Assessment, error) {
	assessment := &models.Assessment{}
	if err := copier.Copy(assessment, req); err != nil {
		return nil, err
	}

	assessment.Title = strings.TrimSpace(assessment.Title)
	if assessment.Duration == 0 {
		assessment.Duration = models.DefaultDuration
	}
	if assessment.TotalMarks == 0 {
		assessment.TotalMarks = models.DefaultTotalMarks
	}

	assessment.PassingMarks = models.DefaultPassingMarks
	if req.PassingMarks != nil {
		assessment.PassingMarks = *req.PassingMarks
	}
	assessment.IsActive = true
	if req.IsActive != nil {
		assessment.IsActive = *req.IsActive
	}

	assessment.Questions = buildQuestions(req.Questions, keepIDs)
	assessment.QuestionsCount = len(assessment.Questions)
	return assessment, nil
}

func buildQuestions(reqs []models.QuestionRequest, keepIDs map[string]bool) []models.Question {
	questions := make([]models.Question, 0, len(reqs))
	for i, req := range reqs {
		q := models.Question{
			ID:         req.ID,
			Position:   i,
			Kind:       req.Kind,
			Prompt:     strings.TrimSpace(req.Prompt),
			Section:    req.Section,
			Difficulty: req.Difficulty,
			TimeLimit:  req.TimeLimit,
		}
		if q.ID == "" || !keepIDs[q.ID] {
			q.ID = uuid.NewString()
		}
		if q.Difficulty == "" {
			q.Difficulty = models.DifficultyMedium
		}
		if q.TimeLimit == 0 {
			q.TimeLimit = models.DefaultTimeLimit
		}

		switch q.Kind {
		case models.MultipleChoice:
			q.Options = append([]string(nil), req.Options...)
			q.CorrectAnswer = req.CorrectAnswer
		case models.Coding:
			q.TestCases = append([]models.TestCase(nil), req.TestCases...)
		}
		questions = append(questions, q)
	}
	return questions
}

func questionIDs(assessment *models.Assessment) map[string]bool {
	ids := make(map[string]bool, len(assessment.Questions))
	for _, q := range assessment.Questions {
		ids[q.ID] = true
	}
	return ids
}
