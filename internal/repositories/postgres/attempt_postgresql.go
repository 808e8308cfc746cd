package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/cache"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	if err := a.getDB(tx).WithContext(ctx).Omit("Answers", "Assessment").Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	cache.SafeDelete(ctx, a.cacheManager.Stats, fmt.Sprintf("assessment:%d", attempt.AssessmentID))
	return nil
}

// GetByID serves completed attempts from cache; in-progress ones always hit the database
func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	cacheKey := fmt.Sprintf("id:%d", id)

	var cached models.Attempt
	err := a.cacheManager.Attempt.Get(ctx, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return nil, err
	}

	var attempt models.Attempt
	err = a.getDB(tx).WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("attempt_answers.id ASC") }).
		Preload("Assessment", unscopedAssessment).
		Preload("Assessment.Questions", orderedQuestions).
		First(&attempt, id).Error
	if err != nil {
		return nil, translateError(err, "get attempt")
	}

	if attempt.Status == models.AttemptCompleted {
		if err := a.cacheManager.Attempt.Set(ctx, cacheKey, &attempt, cache.AttemptCacheConfig.TTL); err != nil {
			slog.WarnContext(ctx, "Failed to cache attempt", "attempt_id", id, "error", err)
		}
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.getDB(tx).WithContext(ctx).
		Preload("Assessment", unscopedAssessment).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.getDB(tx).WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("id ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

// Complete stores the graded result guarded by status = in-progress, so two
// racing submissions cannot both win.
func (a *AttemptPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	err := a.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		result := db.Model(&models.Attempt{}).
			Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":       models.AttemptCompleted,
				"total_score":  attempt.TotalScore,
				"percentage":   attempt.Percentage,
				"passed":       attempt.Passed,
				"time_taken":   attempt.TimeTaken,
				"performance":  attempt.Performance,
				"completed_at": attempt.CompletedAt,
				"updated_at":   time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete attempt: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.ErrConditionFailed
		}

		if len(attempt.Answers) == 0 {
			return nil
		}
		for i := range attempt.Answers {
			attempt.Answers[i].AttemptID = attempt.ID
		}
		if err := db.Create(&attempt.Answers).Error; err != nil {
			return fmt.Errorf("failed to save answers: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	attempt.Status = models.AttemptCompleted
	cache.InvalidateAttemptCache(ctx, a.cacheManager, attempt.ID, attempt.AssessmentID)
	return nil
}

func (a *AttemptPostgreSQL) Abandon(ctx context.Context, tx *gorm.DB, id uint) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":     models.AttemptAbandoned,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to abandon attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrConditionFailed
	}
	return nil
}

// GetAssessmentStats aggregates attempts of one assessment, cached briefly
func (a *AttemptPostgreSQL) GetAssessmentStats(ctx context.Context, tx *gorm.DB, assessmentID uint) (*repositories.AssessmentStats, error) {
	cacheKey := fmt.Sprintf("assessment:%d", assessmentID)
	var stats repositories.AssessmentStats

	err := a.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := a.getDB(tx).WithContext(ctx)
		result := repositories.AssessmentStats{AssessmentID: assessmentID}

		if err := db.Model(&models.Attempt{}).
			Where("assessment_id = ?", assessmentID).
			Count(&result.TotalAttempts).Error; err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}

		var agg struct {
			Completed     int64
			Passed        int64
			AvgScore      float64
			AvgPercentage float64
		}
		if err := db.Model(&models.Attempt{}).
			Select("COUNT(*) AS completed, "+
				"COUNT(*) FILTER (WHERE passed) AS passed, "+
				"COALESCE(AVG(total_score), 0) AS avg_score, "+
				"COALESCE(AVG(percentage), 0) AS avg_percentage").
			Where("assessment_id = ? AND status = ?", assessmentID, models.AttemptCompleted).
			Scan(&agg).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate attempts: %w", err)
		}

		result.CompletedAttempts = agg.Completed
		result.PassedAttempts = agg.Passed
		result.AverageScore = agg.AvgScore
		result.AveragePercentage = agg.AvgPercentage
		if agg.Completed > 0 {
			result.PassRate = float64(agg.Passed) / float64(agg.Completed) * 100
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
