package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fyp-labs/adaptive-learning-platform/internal/events"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

type assessmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewAssessmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) AssessmentService {
	return &assessmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *models.AssessmentRequest, identity Identity) (*models.Assessment, error) {
	s.logger.Info("Creating assessment", "creator_id", identity.UserID, "title", req.Title)

	if err := requireAdmin(identity, "assessment", 0, "create"); err != nil {
		return nil, err
	}

	// Validate request with business rules
	if err := s.validator.ValidateAssessment(req); err != nil {
		return nil, wrapValidation(err)
	}
	if err := s.validateReferences(ctx, req); err != nil {
		return nil, err
	}

	assessment, err := buildAssessment(req, nil)
	if err != nil {
		return nil, NewValidationError("assessment", err.Error(), nil)
	}
	assessment.CreatedBy = identity.UserID

	if err := s.repo.Assessment().Create(ctx, nil, assessment); err != nil {
		return nil, storageError("failed to create assessment", err)
	}

	s.logger.Info("Assessment created successfully",
		"assessment_id", assessment.ID,
		"questions", len(assessment.Questions))

	s.publish(ctx, events.TopicAssessmentCreated, assessment, identity)
	return assessment, nil
}

func (s *assessmentService) List(ctx context.Context, identity Identity) ([]*models.Assessment, error) {
	assessments, err := s.repo.Assessment().List(ctx, nil, repositories.AssessmentFilters{ActiveOnly: true})
	if err != nil {
		return nil, storageError("failed to list assessments", err)
	}
	for _, assessment := range assessments {
		viewAssessment(assessment, identity)
	}
	return assessments, nil
}

func (s *assessmentService) ListAll(ctx context.Context, identity Identity) ([]*models.Assessment, error) {
	if err := requireAdmin(identity, "assessment", "all", "list"); err != nil {
		return nil, err
	}

	assessments, err := s.repo.Assessment().List(ctx, nil, repositories.AssessmentFilters{})
	if err != nil {
		return nil, storageError("failed to list assessments", err)
	}
	return assessments, nil
}

// Get hides inactive assessments from non-admins as if they did not exist
func (s *assessmentService) Get(ctx context.Context, id uint, identity Identity) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to get assessment", err)
	}

	if !assessment.IsActive && !identity.IsAdmin() {
		return nil, ErrAssessmentNotFound
	}
	return viewAssessment(assessment, identity), nil
}

// Update fully replaces the definition. Question ids echoed from the current
// version are kept so completed attempts still resolve their answers.
func (s *assessmentService) Update(ctx context.Context, id uint, req *models.AssessmentRequest, identity Identity) (*models.Assessment, error) {
	s.logger.Info("Updating assessment", "assessment_id", id, "user_id", identity.UserID)

	if err := requireAdmin(identity, "assessment", id, "update"); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAssessment(req); err != nil {
		return nil, wrapValidation(err)
	}

	existing, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to get assessment", err)
	}
	if err := s.validateReferences(ctx, req); err != nil {
		return nil, err
	}

	assessment, err := buildAssessment(req, questionIDs(existing))
	if err != nil {
		return nil, NewValidationError("assessment", err.Error(), nil)
	}
	assessment.ID = existing.ID
	assessment.CreatedBy = existing.CreatedBy
	assessment.CreatedAt = existing.CreatedAt
	assessment.UpdatedAt = time.Now()

	if err := s.repo.Assessment().Update(ctx, nil, assessment); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to update assessment", err)
	}

	s.logger.Info("Assessment updated successfully", "assessment_id", id)

	s.publish(ctx, events.TopicAssessmentUpdated, assessment, identity)
	return assessment, nil
}

func (s *assessmentService) Delete(ctx context.Context, id uint, identity Identity) error {
	s.logger.Info("Deleting assessment", "assessment_id", id, "user_id", identity.UserID)

	if err := requireAdmin(identity, "assessment", id, "delete"); err != nil {
		return err
	}

	if err := s.repo.Assessment().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return storageError("failed to delete assessment", err)
	}

	s.logger.Info("Assessment deleted successfully", "assessment_id", id)

	s.publish(ctx, events.TopicAssessmentDeleted, &models.Assessment{ID: id}, identity)
	return nil
}

func (s *assessmentService) publish(ctx context.Context, topic string, assessment *models.Assessment, identity Identity) {
	events.PublishSafe(ctx, s.publisher, s.logger, topic, events.AssessmentEvent{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		ActorID:      identity.UserID,
		OccurredAt:   time.Now(),
	})
}
