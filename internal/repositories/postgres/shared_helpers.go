package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

// translateError maps gorm's not-found to repositories.ErrNotFound and wraps the rest
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// requireAffected turns a zero-row write into ErrNotFound
func requireAffected(result *gorm.DB, action string) error {
	if result.Error != nil {
		return fmt.Errorf("failed to %s: %w", action, result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// orderedQuestions preloads questions in authoring order
func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("assessment_questions.position ASC")
}

// unscopedAssessment lets attempts resolve soft deleted assessments
func unscopedAssessment(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
