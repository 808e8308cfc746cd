package validator

import (
	"testing"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAssessment() *models.AssessmentRequest {
	passing := 50.0
	return &models.AssessmentRequest{
		Title:        "Placement drill",
		Duration:     30,
		TotalMarks:   100,
		PassingMarks: &passing,
		Questions: []models.QuestionRequest{
			{
				Kind:          models.MultipleChoice,
				Prompt:        "2 + 2?",
				Options:       []string{"3", "4"},
				CorrectAnswer: "4",
				Section:       models.SectionAptitude,
			},
			{
				Kind:      models.Coding,
				Prompt:    "Reverse a string",
				Section:   models.SectionCoding,
				TestCases: []models.TestCase{{Input: "ab", ExpectedOutput: "ba"}},
			},
		},
	}
}

func TestValidateAssessment(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		mutate    func(r *models.AssessmentRequest)
		wantRules []string
	}{
		{
			name:   "valid",
			mutate: func(r *models.AssessmentRequest) {},
		},
		{
			name:      "blank title",
			mutate:    func(r *models.AssessmentRequest) { r.Title = "   " },
			wantRules: []string{"assessment_title"},
		},
		{
			name: "passing marks above 100",
			mutate: func(r *models.AssessmentRequest) {
				p := 140.0
				r.PassingMarks = &p
			},
			wantRules: []string{"passing_marks"},
		},
		{
			name:      "no questions",
			mutate:    func(r *models.AssessmentRequest) { r.Questions = nil },
			wantRules: []string{"required"},
		},
		{
			name:      "unknown section",
			mutate:    func(r *models.AssessmentRequest) { r.Questions[0].Section = "history" },
			wantRules: []string{"section"},
		},
		{
			name:      "correct answer not among options",
			mutate:    func(r *models.AssessmentRequest) { r.Questions[0].CorrectAnswer = "5" },
			wantRules: []string{"mcq_correct_answer"},
		},
		{
			name:      "coding without test cases",
			mutate:    func(r *models.AssessmentRequest) { r.Questions[1].TestCases = nil },
			wantRules: []string{"coding_test_cases"},
		},
		{
			name: "duplicate question ids",
			mutate: func(r *models.AssessmentRequest) {
				r.Questions[0].ID = "7b0e3c52-8a47-4c59-9a55-0d7a4f0b5a11"
				r.Questions[1].ID = "7b0e3c52-8a47-4c59-9a55-0d7a4f0b5a11"
			},
			wantRules: []string{"unique_question_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAssessment()
			tt.mutate(req)

			err := v.ValidateAssessment(req)
			if len(tt.wantRules) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)

			rules := make([]string, 0, len(verrs))
			for _, e := range verrs {
				rules = append(rules, e.Rule)
			}
			for _, want := range tt.wantRules {
				assert.Contains(t, rules, want)
			}
		})
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)

	verrs := ToValidationErrors(err)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
}
