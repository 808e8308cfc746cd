package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:255"`
	Name         string   `json:"name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"size:255"`
	Role         UserRole `json:"role" gorm:"not null;default:user;size:20"`

	// Resume is replaced on every upload
	Resume *Resume `json:"resume,omitempty" gorm:"embedded;embeddedPrefix:resume_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Resume struct {
	FileName     string     `json:"file_name" gorm:"size:255"`
	OriginalName string     `json:"original_name" gorm:"size:255"`
	Path         string     `json:"-" gorm:"size:500"`
	Size         int64      `json:"size"`
	MimeType     string     `json:"mime_type" gorm:"size:100"`
	UploadedAt   *time.Time `json:"uploaded_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
