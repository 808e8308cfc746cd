package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and only logs failures
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and only logs failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAssessmentCache drops the definition, the listings and the stats of an assessment
func InvalidateAssessmentCache(ctx context.Context, cm *CacheManager, assessmentID uint) {
	SafeDelete(ctx, cm.Assessment, fmt.Sprintf("id:%d", assessmentID))
	SafeInvalidatePattern(ctx, cm.Assessment, "list:*")
	SafeDelete(ctx, cm.Stats, fmt.Sprintf("assessment:%d", assessmentID))
}

// InvalidateAttemptCache drops an attempt and the stats it feeds
func InvalidateAttemptCache(ctx context.Context, cm *CacheManager, attemptID, assessmentID uint) {
	SafeDelete(ctx, cm.Attempt, fmt.Sprintf("id:%d", attemptID))
	SafeDelete(ctx, cm.Stats, fmt.Sprintf("assessment:%d", assessmentID))
}
