package services

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/storage"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

type fileService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	store     storage.FileStore
}

func NewFileService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, store storage.FileStore) FileService {
	return &fileService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		store:     store,
	}
}

// Upload stores a study file under a topic the caller owns. Any file type is accepted.
func (s *fileService) Upload(ctx context.Context, req *models.FileUploadRequest, originalName string, content io.Reader, identity Identity) (*models.File, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	topic, err := s.repo.Topic().GetByID(ctx, nil, req.TopicID, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, storageError("failed to get topic", err)
	}
	if req.CompanyID != nil && *req.CompanyID != topic.CompanyID {
		return nil, NewValidationError("company_id", "topic does not belong to this company", *req.CompanyID)
	}
	companyID := topic.CompanyID

	stored, err := s.store.Save(originalName, content, nil)
	if err != nil {
		return nil, uploadError("file", err)
	}

	file := &models.File{
		Name:         stored.Name,
		OriginalName: stored.OriginalName,
		Size:         stored.Size,
		MimeType:     stored.MimeType,
		Path:         stored.Path,
		TopicID:      topic.ID,
		CompanyID:    &companyID,
		UserID:       identity.UserID,
	}
	if err := s.repo.File().Create(ctx, nil, file); err != nil {
		if removeErr := s.store.Remove(stored.Path); removeErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", "path", stored.Path, "error", removeErr)
		}
		return nil, storageError("failed to create file", err)
	}

	s.logger.Info("File uploaded", "file_id", file.ID, "topic_id", file.TopicID, "size", file.Size)
	return file, nil
}

func (s *fileService) ListByTopic(ctx context.Context, topicID uint, identity Identity) ([]*models.File, error) {
	files, err := s.repo.File().ListByTopic(ctx, nil, topicID, identity.UserID)
	if err != nil {
		return nil, storageError("failed to list files", err)
	}
	return files, nil
}

func (s *fileService) Open(ctx context.Context, id uint, identity Identity) (*models.File, *os.File, error) {
	file, err := s.repo.File().GetByID(ctx, nil, id, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, storageError("failed to get file", err)
	}

	blob, err := s.store.Open(file.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("File blob missing", "file_id", id, "path", file.Path)
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, storageError("failed to open file", err)
	}
	return file, blob, nil
}

// Delete drops the row first; a blob left behind is only logged
func (s *fileService) Delete(ctx context.Context, id uint, identity Identity) error {
	file, err := s.repo.File().Delete(ctx, nil, id, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFileNotFound
		}
		return storageError("failed to delete file", err)
	}

	if err := s.store.Remove(file.Path); err != nil {
		s.logger.Warn("Failed to remove file blob", "file_id", id, "path", file.Path, "error", err)
	}
	s.logger.Info("File deleted", "file_id", id, "user_id", identity.UserID)
	return nil
}
