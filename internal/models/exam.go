package models

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Title           string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description     *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         time.Time  `json:"end_time" gorm:"not null"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;default:60" validate:"required,min=5,max=300"`
	IsActive        bool       `json:"is_active" gorm:"default:false;index"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sections []Section     `json:"sections" gorm:"foreignKey:ExamID"`
	Attempts []ExamAttempt `json:"-" gorm:"foreignKey:ExamID"`
	Creator  User          `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Exam) TableName() string {
	return "exams"
}
