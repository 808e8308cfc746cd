package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/cache"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AssessmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create inserts the assessment and its questions in one transaction
func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	err := a.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		questions := assessment.Questions
		if err := db.Omit("Questions", "Company", "Topic").Create(assessment).Error; err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		if err := a.insertQuestions(db, assessment.ID, questions); err != nil {
			return err
		}
		assessment.Questions = questions
		return nil
	})
	if err != nil {
		return err
	}

	cache.SafeInvalidatePattern(ctx, a.cacheManager.Assessment, "list:*")
	return nil
}

// GetByID retrieves a live assessment with caching
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var assessment models.Assessment

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		return a.load(ctx, a.getDB(tx), id)
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// GetByIDUnscoped bypasses the cache and the soft delete filter
func (a *AssessmentPostgreSQL) GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	return a.load(ctx, a.getDB(tx).Unscoped(), id)
}

func (a *AssessmentPostgreSQL) load(ctx context.Context, db *gorm.DB, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Preload("Company").
		Preload("Topic").
		First(&assessment, id).Error
	if err != nil {
		return nil, translateError(err, "get assessment")
	}
	assessment.QuestionsCount = len(assessment.Questions)
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	cacheKey := "list:all"
	if filters.ActiveOnly {
		cacheKey = "list:active"
	}

	var assessments []*models.Assessment
	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessments, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		var dbAssessments []*models.Assessment
		query := a.getDB(tx).WithContext(ctx).
			Preload("Questions", orderedQuestions).
			Preload("Company").
			Preload("Topic").
			Order("created_at DESC")
		if filters.ActiveOnly {
			query = query.Where("is_active = ?", true)
		}
		if err := query.Find(&dbAssessments).Error; err != nil {
			return nil, fmt.Errorf("failed to list assessments: %w", err)
		}
		for _, assessment := range dbAssessments {
			assessment.QuestionsCount = len(assessment.Questions)
		}
		return dbAssessments, nil
	})
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

// Update rewrites the mutable columns and swaps the question list atomically
func (a *AssessmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	err := a.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		result := db.Model(&models.Assessment{}).
			Where("id = ?", assessment.ID).
			Select("title", "description", "company_id", "topic_id", "duration",
				"total_marks", "passing_marks", "is_active", "updated_at").
			Updates(assessment)
		if err := requireAffected(result, "update assessment"); err != nil {
			return err
		}

		if err := db.Where("assessment_id = ?", assessment.ID).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}
		return a.insertQuestions(db, assessment.ID, assessment.Questions)
	})
	if err != nil {
		return err
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, assessment.ID)
	return nil
}

// Delete soft deletes the assessment; attempts keep referencing it
func (a *AssessmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := a.getDB(tx).WithContext(ctx).Delete(&models.Assessment{}, id)
	if err := requireAffected(result, "delete assessment"); err != nil {
		return err
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, id)
	return nil
}

func (a *AssessmentPostgreSQL) insertQuestions(db *gorm.DB, assessmentID uint, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].AssessmentID = assessmentID
		questions[i].Position = i
	}
	if err := db.Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}
	return nil
}
