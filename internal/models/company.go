package models

import "time"

// Company is the top of the learning material hierarchy: Company -> Topic -> File.
type Company struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:200"`
	Description *string   `json:"description" gorm:"type:text"`
	UserID      string    `json:"user_id" gorm:"not null;index;size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Topic struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:200"`
	Description *string   `json:"description" gorm:"type:text"`
	CompanyID   uint      `json:"company_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"not null;index;size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type File struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:255"` // stored name
	OriginalName string    `json:"original_name" gorm:"not null;size:255"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type" gorm:"size:100"`
	Path         string    `json:"-" gorm:"not null;size:500"`
	TopicID      uint      `json:"topic_id" gorm:"not null;index"`
	CompanyID    *uint     `json:"company_id" gorm:"index"`
	UserID       string    `json:"user_id" gorm:"not null;index;size:255"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

func (Topic) TableName() string {
	return "topics"
}

func (File) TableName() string {
	return "files"
}
