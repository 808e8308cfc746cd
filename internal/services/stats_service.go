package services

import (
	"context"
	"log/slog"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

type statsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewStatsService(repo repositories.Repository, logger *slog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger,
	}
}

// MyStats aggregates the caller's completed attempts
func (s *statsService) MyStats(ctx context.Context, identity Identity) (*UserStats, error) {
	s.logger.Info("Getting user stats", "user_id", identity.UserID)

	attempts, err := s.repo.Attempt().ListByUser(ctx, nil, identity.UserID)
	if err != nil {
		return nil, storageError("failed to list attempts", err)
	}
	return summarizeAttempts(attempts), nil
}

func (s *statsService) AssessmentStats(ctx context.Context, assessmentID uint, identity Identity) (*repositories.AssessmentStats, error) {
	if err := requireAdmin(identity, "assessment", assessmentID, "view stats"); err != nil {
		return nil, err
	}

	// Deleted assessments keep their history
	if _, err := s.repo.Assessment().GetByIDUnscoped(ctx, nil, assessmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to get assessment", err)
	}

	stats, err := s.repo.Attempt().GetAssessmentStats(ctx, nil, assessmentID)
	if err != nil {
		return nil, storageError("failed to get assessment stats", err)
	}

	stats.AverageScore = roundFloat(stats.AverageScore, 2)
	stats.AveragePercentage = roundFloat(stats.AveragePercentage, 2)
	stats.PassRate = roundFloat(stats.PassRate, 1)
	return stats, nil
}

func summarizeAttempts(attempts []*models.Attempt) *UserStats {
	stats := &UserStats{
		TotalAttempts: len(attempts),
		Sections:      []models.SectionSummary{},
	}

	var (
		percentageSum float64
		order         []models.Section
		sections      = map[models.Section]*sectionCounter{}
		sectionTime   = map[models.Section]float64{}
	)
	for _, attempt := range attempts {
		if attempt.Status != models.AttemptCompleted {
			continue
		}
		stats.CompletedAttempts++
		if attempt.Passed {
			stats.PassedAttempts++
		}
		percentageSum += attempt.Percentage
		stats.BestPercentage = max(stats.BestPercentage, attempt.Percentage)

		for _, summary := range attempt.Performance.Data().SectionWise {
			c, ok := sections[summary.Section]
			if !ok {
				c = &sectionCounter{}
				sections[summary.Section] = c
				order = append(order, summary.Section)
			}
			c.correct += summary.Correct
			c.total += summary.Total
			sectionTime[summary.Section] += summary.AvgTime * float64(summary.Total)
		}
	}

	if stats.CompletedAttempts > 0 {
		stats.AveragePercentage = roundFloat(percentageSum/float64(stats.CompletedAttempts), 2)
	}
	stats.BestPercentage = roundFloat(stats.BestPercentage, 2)

	for _, section := range order {
		c := sections[section]
		summary := models.SectionSummary{Section: section, Correct: c.correct, Total: c.total}
		if c.total > 0 {
			summary.AvgTime = roundFloat(sectionTime[section]/float64(c.total), 2)
		}
		stats.Sections = append(stats.Sections, summary)
	}
	return stats
}

// ===== HELPER FUNCTIONS =====

func roundFloat(val float64, precision int) float64 {
	ratio := 1.0
	for i := 0; i < precision; i++ {
		ratio *= 10
	}
	return float64(int(val*ratio+0.5)) / ratio
}
