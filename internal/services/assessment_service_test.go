package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyp-labs/adaptive-learning-platform/internal/events"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
)

func TestCreateAssessment_AppliesDefaults(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), adminIdentity)
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Placement practice", created.Title)
	assert.Equal(t, models.DefaultDuration, created.Duration)
	assert.Equal(t, float64(models.DefaultTotalMarks), created.TotalMarks)
	assert.Equal(t, float64(models.DefaultPassingMarks), created.PassingMarks)
	assert.True(t, created.IsActive)
	assert.Equal(t, adminIdentity.UserID, created.CreatedBy)

	require.Len(t, created.Questions, 2)
	for _, q := range created.Questions {
		_, err := uuid.Parse(q.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.DifficultyMedium, q.Difficulty)
		assert.Equal(t, models.DefaultTimeLimit, q.TimeLimit)
	}
	assert.Equal(t, "4", created.Questions[0].CorrectAnswer)
	assert.Empty(t, created.Questions[1].Options)
	assert.Len(t, created.Questions[1].TestCases, 1)

	assert.Equal(t, []string{events.TopicAssessmentCreated}, ts.publisher.Topics())
}

func TestCreateAssessment_ExplicitValues(t *testing.T) {
	ts := newTestServices(t)
	req := sampleAssessmentRequest()
	passing := 0.0
	inactive := false
	req.Duration = 90
	req.TotalMarks = 20
	req.PassingMarks = &passing
	req.IsActive = &inactive

	created, err := ts.assessments.Create(context.Background(), req, adminIdentity)
	require.NoError(t, err)

	assert.Equal(t, 90, created.Duration)
	assert.Equal(t, 20.0, created.TotalMarks)
	assert.Zero(t, created.PassingMarks)
	assert.False(t, created.IsActive)
}

func TestCreateAssessment_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin", func(t *testing.T) {
		ts := newTestServices(t)
		_, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), studentIdentity)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("correct answer outside options", func(t *testing.T) {
		ts := newTestServices(t)
		req := sampleAssessmentRequest()
		req.Questions[0].CorrectAnswer = "7"

		_, err := ts.assessments.Create(ctx, req, adminIdentity)
		require.ErrorIs(t, err, ErrValidationFailed)

		var failure *ValidationFailure
		require.True(t, errors.As(err, &failure))
		require.Len(t, failure.Errors, 1)
		assert.Equal(t, "questions[0].correct_answer", failure.Errors[0].Field)
	})

	t.Run("no questions", func(t *testing.T) {
		ts := newTestServices(t)
		req := sampleAssessmentRequest()
		req.Questions = nil

		_, err := ts.assessments.Create(ctx, req, adminIdentity)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("passing marks above 100", func(t *testing.T) {
		ts := newTestServices(t)
		req := sampleAssessmentRequest()
		passing := 120.0
		req.PassingMarks = &passing

		_, err := ts.assessments.Create(ctx, req, adminIdentity)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown company", func(t *testing.T) {
		ts := newTestServices(t)
		req := sampleAssessmentRequest()
		companyID := uint(42)
		req.CompanyID = &companyID

		_, err := ts.assessments.Create(ctx, req, adminIdentity)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, ts.repo.assessments)
	})
}

func TestListAssessments_RedactionAndVisibility(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	active, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), adminIdentity)
	require.NoError(t, err)

	hiddenReq := sampleAssessmentRequest()
	inactive := false
	hiddenReq.IsActive = &inactive
	hidden, err := ts.assessments.Create(ctx, hiddenReq, adminIdentity)
	require.NoError(t, err)

	listed, err := ts.assessments.List(ctx, studentIdentity)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, active.ID, listed[0].ID)
	for _, q := range listed[0].Questions {
		assert.True(t, q.IsRedacted())
	}

	_, err = ts.assessments.ListAll(ctx, studentIdentity)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := ts.assessments.ListAll(ctx, adminIdentity)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = ts.assessments.Get(ctx, hidden.ID, studentIdentity)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	asAdmin, err := ts.assessments.Get(ctx, hidden.ID, adminIdentity)
	require.NoError(t, err)
	assert.Equal(t, "4", asAdmin.Questions[0].CorrectAnswer)
}

func TestUpdateAssessment_PreservesKnownQuestionIDs(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), adminIdentity)
	require.NoError(t, err)
	keptID := created.Questions[0].ID

	foreign := uuid.NewString()
	req := sampleAssessmentRequest()
	req.Title = "Placement practice v2"
	req.Questions[0].ID = keptID
	req.Questions[1].ID = foreign

	updated, err := ts.assessments.Update(ctx, created.ID, req, adminIdentity)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Placement practice v2", updated.Title)
	assert.Equal(t, keptID, updated.Questions[0].ID)
	assert.NotEqual(t, foreign, updated.Questions[1].ID)
	assert.Equal(t, adminIdentity.UserID, updated.CreatedBy)
	assert.False(t, updated.UpdatedAt.IsZero())

	assert.Contains(t, ts.publisher.Topics(), events.TopicAssessmentUpdated)
}

func TestUpdateAssessment_Rejections(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), adminIdentity)
	require.NoError(t, err)

	_, err = ts.assessments.Update(ctx, created.ID, sampleAssessmentRequest(), studentIdentity)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = ts.assessments.Update(ctx, 999, sampleAssessmentRequest(), adminIdentity)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestDeleteAssessment(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.assessments.Create(ctx, sampleAssessmentRequest(), adminIdentity)
	require.NoError(t, err)

	assert.ErrorIs(t, ts.assessments.Delete(ctx, created.ID, studentIdentity), ErrForbidden)
	require.NoError(t, ts.assessments.Delete(ctx, created.ID, adminIdentity))
	assert.ErrorIs(t, ts.assessments.Delete(ctx, created.ID, adminIdentity), ErrAssessmentNotFound)

	_, err = ts.assessments.Get(ctx, created.ID, adminIdentity)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = ts.attempts.Start(ctx, created.ID, studentIdentity)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}
