package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type FilePostgreSQL struct {
	db *gorm.DB
}

func NewFilePostgreSQL(db *gorm.DB) repositories.FileRepository {
	return &FilePostgreSQL{db: db}
}

func (f *FilePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}

func (f *FilePostgreSQL) Create(ctx context.Context, tx *gorm.DB, file *models.File) error {
	if err := f.getDB(tx).WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (f *FilePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error) {
	var file models.File
	err := f.getDB(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&file).Error
	if err != nil {
		return nil, translateError(err, "get file")
	}
	return &file, nil
}

func (f *FilePostgreSQL) ListByTopic(ctx context.Context, tx *gorm.DB, topicID uint, userID string) ([]*models.File, error) {
	var files []*models.File
	err := f.getDB(tx).WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (f *FilePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error) {
	var deleted []models.File
	result := f.getDB(tx).WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&deleted)
	if err := requireAffected(result, "delete file"); err != nil {
		return nil, err
	}
	return &deleted[0], nil
}
