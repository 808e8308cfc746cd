package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type CompanyPostgreSQL struct {
	db *gorm.DB
}

func NewCompanyPostgreSQL(db *gorm.DB) repositories.CompanyRepository {
	return &CompanyPostgreSQL{db: db}
}

func (c *CompanyPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CompanyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	if err := c.getDB(tx).WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (c *CompanyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Company, error) {
	var company models.Company
	err := c.getDB(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&company).Error
	if err != nil {
		return nil, translateError(err, "get company")
	}
	return &company, nil
}

func (c *CompanyPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Company, error) {
	var companies []*models.Company
	err := c.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

func (c *CompanyPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	result := c.getDB(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Company{})
	return requireAffected(result, "delete company")
}

func (c *CompanyPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return count > 0, nil
}
