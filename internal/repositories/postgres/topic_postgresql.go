package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t *TopicPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TopicPostgreSQL) Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	if err := t.getDB(tx).WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func (t *TopicPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Topic, error) {
	var topic models.Topic
	err := t.getDB(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&topic).Error
	if err != nil {
		return nil, translateError(err, "get topic")
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uint, userID string) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := t.getDB(tx).WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Order("created_at DESC").
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

func (t *TopicPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	result := t.getDB(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Topic{})
	return requireAffected(result, "delete topic")
}

func (t *TopicPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}
	return count > 0, nil
}
