package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/fyp-labs/adaptive-learning-platform/internal/events"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	grader    GradingService
	publisher events.Publisher
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, grader GradingService, publisher events.Publisher) AttemptService {
	if grader == nil {
		grader = NewGradingService()
	}
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		grader:    grader,
		publisher: publisher,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, assessmentID uint, identity Identity) (*StartAttemptResponse, error) {
	s.logger.Info("Starting assessment attempt",
		"assessment_id", assessmentID,
		"user_id", identity.UserID)

	assessment, err := s.repo.Assessment().GetByID(ctx, nil, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to get assessment", err)
	}

	if !assessment.IsActive {
		return nil, ErrAssessmentInactive
	}
	// An attempt that can never be graded is refused up front
	if len(assessment.Questions) == 0 || assessment.TotalMarks <= 0 {
		return nil, ErrDefinitionMismatch
	}

	now := time.Now()
	attempt := &models.Attempt{
		UserID:       identity.UserID,
		AssessmentID: assessment.ID,
		Status:       models.AttemptInProgress,
		StartedAt:    now,
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, storageError("failed to create attempt", err)
	}

	s.logger.Info("Assessment attempt started",
		"attempt_id", attempt.ID,
		"assessment_id", assessment.ID,
		"user_id", identity.UserID)

	events.PublishSafe(ctx, s.publisher, s.logger, events.TopicAttemptStarted, events.AttemptEvent{
		AttemptID:    attempt.ID,
		AssessmentID: assessment.ID,
		UserID:       identity.UserID,
		Status:       string(attempt.Status),
		OccurredAt:   now,
	})

	return &StartAttemptResponse{
		AttemptID:  attempt.ID,
		StartedAt:  attempt.StartedAt,
		Assessment: viewAssessment(assessment, identity),
	}, nil
}

// Submit grades the answers and finalizes the attempt. The in-progress check is
// repeated inside the conditional update so concurrent submissions cannot both win.
func (s *attemptService) Submit(ctx context.Context, assessmentID uint, req *models.SubmitAttemptRequest, identity Identity) (*SubmitAttemptResponse, error) {
	s.logger.Info("Submitting assessment attempt",
		"assessment_id", assessmentID,
		"attempt_id", req.AttemptID,
		"user_id", identity.UserID,
		"answers", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	var (
		attempt *models.Attempt
		result  *GradeResult
		def     *models.Assessment
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		attempt, err = tx.Attempt().GetByID(ctx, nil, req.AttemptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAttemptNotFound
			}
			return storageError("failed to get attempt", err)
		}

		if attempt.AssessmentID != assessmentID {
			return NewValidationError("attempt_id", "attempt does not belong to this assessment", req.AttemptID)
		}
		if attempt.UserID != identity.UserID {
			return NewPermissionError(identity.UserID, "attempt", attempt.ID, "submit")
		}
		if err := checkSubmittable(attempt); err != nil {
			return err
		}

		def, err = tx.Assessment().GetByID(ctx, nil, assessmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAssessmentNotFound
			}
			return storageError("failed to get assessment", err)
		}

		result, err = s.grader.Grade(def, req.Answers)
		if err != nil {
			return err
		}

		completedAt := time.Now()
		attempt.Status = models.AttemptCompleted
		attempt.TotalScore = result.TotalScore
		attempt.Percentage = result.Percentage
		attempt.Passed = result.Passed
		attempt.TimeTaken = result.TimeTaken
		attempt.Performance = datatypes.NewJSONType(result.Performance)
		attempt.CompletedAt = &completedAt
		attempt.Answers = result.Answers

		if err := tx.Attempt().Complete(ctx, nil, attempt); err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return ErrAttemptAlreadySubmitted
			}
			return storageError("failed to complete attempt", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Attempt submission rejected",
			"attempt_id", req.AttemptID,
			"user_id", identity.UserID,
			"error", err)
		return nil, err
	}

	s.logger.Info("Assessment attempt graded",
		"attempt_id", attempt.ID,
		"total_score", result.TotalScore,
		"percentage", result.Percentage,
		"passed", result.Passed)

	events.PublishSafe(ctx, s.publisher, s.logger, events.TopicAttemptCompleted, events.AttemptEvent{
		AttemptID:    attempt.ID,
		AssessmentID: attempt.AssessmentID,
		UserID:       attempt.UserID,
		Status:       string(attempt.Status),
		TotalScore:   result.TotalScore,
		Percentage:   result.Percentage,
		Passed:       result.Passed,
		OccurredAt:   *attempt.CompletedAt,
	})

	return &SubmitAttemptResponse{
		AttemptID:   attempt.ID,
		TotalScore:  result.TotalScore,
		TotalMarks:  def.TotalMarks,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		TimeTaken:   result.TimeTaken,
		Performance: result.Performance,
		CompletedAt: *attempt.CompletedAt,
	}, nil
}

func (s *attemptService) ListMine(ctx context.Context, identity Identity) ([]*models.Attempt, error) {
	attempts, err := s.repo.Attempt().ListByUser(ctx, nil, identity.UserID)
	if err != nil {
		return nil, storageError("failed to list attempts", err)
	}
	for _, attempt := range attempts {
		if attempt.Assessment != nil {
			viewAssessment(attempt.Assessment, identity)
		}
	}
	return attempts, nil
}

// Get returns an attempt to its owner or an admin. Answer keys of the embedded
// assessment are stripped for everyone else.
func (s *attemptService) Get(ctx context.Context, attemptID uint, identity Identity) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, storageError("failed to get attempt", err)
	}

	if attempt.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, NewPermissionError(identity.UserID, "attempt", attemptID, "view")
	}

	if attempt.Assessment != nil {
		viewAssessment(attempt.Assessment, identity)
	}
	return attempt, nil
}

func (s *attemptService) Abandon(ctx context.Context, attemptID uint, identity Identity) error {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return storageError("failed to get attempt", err)
	}

	if attempt.UserID != identity.UserID {
		return NewPermissionError(identity.UserID, "attempt", attemptID, "abandon")
	}
	if !attempt.IsInProgress() {
		return ErrAttemptNotInProgress
	}

	if err := s.repo.Attempt().Abandon(ctx, nil, attemptID); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return ErrAttemptNotInProgress
		}
		return storageError("failed to abandon attempt", err)
	}

	s.logger.Info("Assessment attempt abandoned", "attempt_id", attemptID, "user_id", identity.UserID)

	events.PublishSafe(ctx, s.publisher, s.logger, events.TopicAttemptAbandoned, events.AttemptEvent{
		AttemptID:    attemptID,
		AssessmentID: attempt.AssessmentID,
		UserID:       attempt.UserID,
		Status:       string(models.AttemptAbandoned),
		OccurredAt:   time.Now(),
	})
	return nil
}

func checkSubmittable(attempt *models.Attempt) error {
	switch attempt.Status {
	case models.AttemptInProgress:
		return nil
	case models.AttemptCompleted:
		return ErrAttemptAlreadySubmitted
	default:
		return ErrAttemptNotInProgress
	}
}
