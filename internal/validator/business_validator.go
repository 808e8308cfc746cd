package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/go-playground/validator/v10"
)

func (v *Validator) registerBusinessRules() {
	// Assessment duration in minutes
	v.validate.RegisterValidation("assessment_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 1 && duration <= 600
	})

	// Passing marks is a percentage threshold
	v.validate.RegisterValidation("passing_marks", func(fl validator.FieldLevel) bool {
		marks := fl.Field().Float()
		return marks >= 0 && marks <= 100
	})

	v.validate.RegisterValidation("assessment_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	v.validate.RegisterValidation("question_kind", func(fl validator.FieldLevel) bool {
		kind := models.QuestionKind(fl.Field().String())
		return kind == models.MultipleChoice || kind == models.Coding
	})

	v.validate.RegisterValidation("section", func(fl validator.FieldLevel) bool {
		return slices.Contains([]models.Section{
			models.SectionAptitude,
			models.SectionReasoning,
			models.SectionVerbal,
			models.SectionCoding,
		}, models.Section(fl.Field().String()))
	})

	v.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		return slices.Contains([]models.DifficultyLevel{
			models.DifficultyEasy,
			models.DifficultyMedium,
			models.DifficultyHard,
		}, models.DifficultyLevel(fl.Field().String()))
	})
}

// ValidateAssessment runs struct rules plus the cross-field question rules.
func (v *Validator) ValidateAssessment(req *models.AssessmentRequest) error {
	var errs ValidationErrors
	if err := v.Validate(req); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}
	errs = append(errs, validateQuestions(req.Questions)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateQuestions(questions []models.QuestionRequest) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]struct{}, len(questions))

	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)

		if q.ID != "" {
			if _, dup := seen[q.ID]; dup {
				errs = append(errs, ValidationError{
					Field:   field + ".id",
					Message: "duplicates another question id",
					Value:   q.ID,
					Rule:    "unique_question_id",
				})
			}
			seen[q.ID] = struct{}{}
		}

		switch q.Kind {
		case models.MultipleChoice:
			if len(q.Options) < 2 {
				errs = append(errs, ValidationError{
					Field:   field + ".options",
					Message: "multiple-choice questions need at least 2 options",
					Value:   len(q.Options),
					Rule:    "mcq_options",
				})
			}
			if q.CorrectAnswer == "" || !slices.Contains(q.Options, q.CorrectAnswer) {
				errs = append(errs, ValidationError{
					Field:   field + ".correct_answer",
					Message: "must be one of the options",
					Value:   q.CorrectAnswer,
					Rule:    "mcq_correct_answer",
				})
			}
		case models.Coding:
			if len(q.TestCases) == 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".test_cases",
					Message: "coding questions need at least one test case",
					Rule:    "coding_test_cases",
				})
			}
		}
	}

	return errs
}
