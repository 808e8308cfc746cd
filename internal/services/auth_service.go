package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/storage"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

// resumeMimeTypes are the accepted resume formats: pdf, doc and docx
var resumeMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type authService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	tokens      *TokenIssuer
	store       storage.FileStore
	adminEmails map[string]bool
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, tokens *TokenIssuer, store storage.FileStore, adminEmails []string) AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[normalizeEmail(email)] = true
	}
	return &authService{
		repo:        repo,
		logger:      logger,
		validator:   validator,
		tokens:      tokens,
		store:       store,
		adminEmails: admins,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	email := normalizeEmail(req.Email)
	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, storageError("failed to check email", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         s.roleFor(email),
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, storageError("failed to create user", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, wrapValidation(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("failed to get user", err)
	}

	// Externally managed users have no local password
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.authResponse(user)
}

func (s *authService) Me(ctx context.Context, identity Identity) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("failed to get user", err)
	}
	return user, nil
}

// UploadResume stores the new resume and then drops the previous blob
func (s *authService) UploadResume(ctx context.Context, identity Identity, originalName string, content io.Reader) (*models.User, error) {
	user, err := s.Me(ctx, identity)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Save(originalName, content, resumeMimeTypes)
	if err != nil {
		return nil, uploadError("resume", err)
	}

	uploadedAt := time.Now()
	resume := &models.Resume{
		FileName:     stored.Name,
		OriginalName: stored.OriginalName,
		Path:         stored.Path,
		Size:         stored.Size,
		MimeType:     stored.MimeType,
		UploadedAt:   &uploadedAt,
	}
	if err := s.repo.User().UpdateResume(ctx, nil, user.ID, resume); err != nil {
		if removeErr := s.store.Remove(stored.Path); removeErr != nil {
			s.logger.Warn("Failed to remove orphaned resume", "path", stored.Path, "error", removeErr)
		}
		return nil, storageError("failed to update resume", err)
	}

	if user.Resume != nil && user.Resume.FileName != "" {
		if err := s.store.Remove(s.store.Resolve(user.Resume.FileName)); err != nil {
			s.logger.Warn("Failed to remove previous resume", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("Resume uploaded", "user_id", user.ID, "size", stored.Size, "mime_type", stored.MimeType)

	user.Resume = resume
	return user, nil
}

// SyncExternalUser upserts a user authenticated elsewhere, applying the admin list
func (s *authService) SyncExternalUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		return nil, ErrUnauthorized
	}
	synced := *user
	synced.Email = normalizeEmail(user.Email)
	synced.Role = s.roleFor(synced.Email)
	if err := s.repo.User().Upsert(ctx, nil, &synced); err != nil {
		return nil, storageError("failed to sync user", err)
	}
	return &synced, nil
}

func (s *authService) roleFor(email string) models.UserRole {
	if s.adminEmails[normalizeEmail(email)] {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *authService) authResponse(user *models.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// uploadError maps storage rejections to field validation errors
func uploadError(field string, err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrUnsupportedType):
		return NewValidationError(field, err.Error(), nil)
	default:
		return storageError("failed to store "+field, err)
	}
}
