package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

type topicService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTopicService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) TopicService {
	return &topicService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Create requires the parent company to belong to the caller
func (s *topicService) Create(ctx context.Context, req *models.TopicCreateRequest, identity Identity) (*models.Topic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	if _, err := s.repo.Company().GetByID(ctx, nil, req.CompanyID, identity.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, storageError("failed to get company", err)
	}

	topic := &models.Topic{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CompanyID:   req.CompanyID,
		UserID:      identity.UserID,
	}
	if err := s.repo.Topic().Create(ctx, nil, topic); err != nil {
		return nil, storageError("failed to create topic", err)
	}

	s.logger.Info("Topic created", "topic_id", topic.ID, "company_id", topic.CompanyID)
	return topic, nil
}

func (s *topicService) ListByCompany(ctx context.Context, companyID uint, identity Identity) ([]*models.Topic, error) {
	topics, err := s.repo.Topic().ListByCompany(ctx, nil, companyID, identity.UserID)
	if err != nil {
		return nil, storageError("failed to list topics", err)
	}
	return topics, nil
}

func (s *topicService) Get(ctx context.Context, id uint, identity Identity) (*models.Topic, error) {
	topic, err := s.repo.Topic().GetByID(ctx, nil, id, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, storageError("failed to get topic", err)
	}
	return topic, nil
}

func (s *topicService) Delete(ctx context.Context, id uint, identity Identity) error {
	if err := s.repo.Topic().Delete(ctx, nil, id, identity.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTopicNotFound
		}
		return storageError("failed to delete topic", err)
	}
	s.logger.Info("Topic deleted", "topic_id", id, "user_id", identity.UserID)
	return nil
}
