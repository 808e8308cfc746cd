package services

import (
	"fmt"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
)

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

// Grade scores a submission against the assessment definition.
// Each question is worth TotalMarks / len(Questions). Answers referencing an
// unknown question, or repeating one already graded, are kept unscored.
func (s *gradingService) Grade(assessment *models.Assessment, submitted []models.SubmittedAnswer) (*GradeResult, error) {
	if assessment == nil || len(assessment.Questions) == 0 {
		return nil, fmt.Errorf("%w: assessment has no questions", ErrDefinitionMismatch)
	}
	if assessment.TotalMarks <= 0 {
		return nil, fmt.Errorf("%w: total marks must be positive", ErrDefinitionMismatch)
	}

	perQuestion := assessment.MarksPerQuestion()
	questions := assessment.QuestionByID()
	graded := make(map[string]bool, len(submitted))

	result := &GradeResult{Answers: make([]models.Answer, 0, len(submitted))}
	tally := newSectionTally()
	correct := 0

	for _, sub := range submitted {
		timeTaken := max(sub.TimeTaken, 0)
		result.TimeTaken += timeTaken

		answer := models.Answer{
			QuestionID: sub.QuestionID,
			Answer:     sub.Answer,
			TimeTaken:  timeTaken,
		}

		question, ok := questions[sub.QuestionID]
		if !ok || graded[sub.QuestionID] {
			result.Answers = append(result.Answers, answer)
			continue
		}
		graded[sub.QuestionID] = true

		isCorrect := s.IsCorrect(question, sub.Answer)
		answer.IsCorrect = &isCorrect
		if isCorrect {
			answer.MarksObtained = perQuestion
			result.TotalScore += perQuestion
			correct++
		}
		tally.add(question.Section, isCorrect, timeTaken)
		result.Answers = append(result.Answers, answer)
	}

	// Aggregates come from the correct count so k of n lands exactly on k/n
	questionCount := float64(len(assessment.Questions))
	result.TotalScore = float64(correct) * assessment.TotalMarks / questionCount
	result.Percentage = float64(correct) * 100 / questionCount
	result.Passed = result.Percentage >= assessment.PassingMarks

	if n := len(submitted); n > 0 {
		result.Performance.Accuracy = float64(correct) / float64(n) * 100
		result.Performance.Speed = float64(result.TimeTaken) / float64(n)
	}
	result.Performance.SectionWise = tally.summaries()

	return result, nil
}

// IsCorrect reports exact-match correctness. Coding answers are never auto-graded.
func (s *gradingService) IsCorrect(question *models.Question, answer string) bool {
	if question == nil {
		return false
	}
	switch question.Kind {
	case models.MultipleChoice:
		return question.CorrectAnswer != "" && answer == question.CorrectAnswer
	default:
		return false
	}
}

// sectionTally accumulates per-section counts in first-seen order
type sectionTally struct {
	order []models.Section
	byKey map[models.Section]*sectionCounter
}

type sectionCounter struct {
	correct   int
	total     int
	timeTaken int
}

func newSectionTally() *sectionTally {
	return &sectionTally{byKey: make(map[models.Section]*sectionCounter)}
}

func (t *sectionTally) add(section models.Section, correct bool, timeTaken int) {
	c, ok := t.byKey[section]
	if !ok {
		c = &sectionCounter{}
		t.byKey[section] = c
		t.order = append(t.order, section)
	}
	c.total++
	c.timeTaken += timeTaken
	if correct {
		c.correct++
	}
}

func (t *sectionTally) summaries() []models.SectionSummary {
	out := make([]models.SectionSummary, 0, len(t.order))
	for _, section := range t.order {
		c := t.byKey[section]
		out = append(out, models.SectionSummary{
			Section: section,
			Correct: c.correct,
			Total:   c.total,
			AvgTime: float64(c.timeTaken) / float64(c.total),
		})
	}
	return out
}
