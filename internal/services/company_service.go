package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

type companyService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCompanyService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CompanyService {
	return &companyService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *companyService) Create(ctx context.Context, req *models.CompanyCreateRequest, identity Identity) (*models.Company, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	company := &models.Company{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UserID:      identity.UserID,
	}
	if err := s.repo.Company().Create(ctx, nil, company); err != nil {
		return nil, storageError("failed to create company", err)
	}

	s.logger.Info("Company created", "company_id", company.ID, "user_id", identity.UserID)
	return company, nil
}

func (s *companyService) List(ctx context.Context, identity Identity) ([]*models.Company, error) {
	companies, err := s.repo.Company().ListByUser(ctx, nil, identity.UserID)
	if err != nil {
		return nil, storageError("failed to list companies", err)
	}
	return companies, nil
}

// Get only resolves companies owned by the caller
func (s *companyService) Get(ctx context.Context, id uint, identity Identity) (*models.Company, error) {
	company, err := s.repo.Company().GetByID(ctx, nil, id, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, storageError("failed to get company", err)
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id uint, identity Identity) error {
	if err := s.repo.Company().Delete(ctx, nil, id, identity.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCompanyNotFound
		}
		return storageError("failed to delete company", err)
	}
	s.logger.Info("Company deleted", "company_id", id, "user_id", identity.UserID)
	return nil
}
