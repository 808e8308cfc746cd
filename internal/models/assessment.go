package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DefaultDuration     = 60
	DefaultTotalMarks   = 100
	DefaultPassingMarks = 40
	DefaultTimeLimit    = 60
)

type Assessment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index"`
	Description *string `json:"description" gorm:"type:text"`
	CompanyID   *uint   `json:"company_id" gorm:"index"`
	TopicID     *uint   `json:"topic_id" gorm:"index"`

	Duration   int     `json:"duration" gorm:"not null;default:60"` // minutes
	TotalMarks float64 `json:"total_marks" gorm:"not null;default:100"`
	// PassingMarks is a percentage threshold (0..100), not a raw mark count
	PassingMarks float64 `json:"passing_marks" gorm:"not null;default:40"`
	IsActive     bool    `json:"is_active" gorm:"not null;default:true;index"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE"`
	// Deleting a company or topic detaches the assessments that reference it
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	Topic   *Topic   `json:"topic,omitempty" gorm:"foreignKey:TopicID;constraint:OnDelete:SET NULL"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// MarksPerQuestion is the uniform weight of a correct answer.
func (a *Assessment) MarksPerQuestion() float64 {
	if len(a.Questions) == 0 {
		return 0
	}
	return a.TotalMarks / float64(len(a.Questions))
}

// QuestionByID indexes questions by their id.
func (a *Assessment) QuestionByID() map[string]*Question {
	index := make(map[string]*Question, len(a.Questions))
	for i := range a.Questions {
		index[a.Questions[i].ID] = &a.Questions[i]
	}
	return index
}
