package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
)

// Terminal reports whether the status admits no further mutation.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptExpired
}

type ExamAttempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_attempts_exam_student"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_attempts_exam_student"`

	StartTime time.Time  `json:"start_time" gorm:"not null"`
	EndTime   *time.Time `json:"end_time"`

	Status      AttemptStatus `json:"status" gorm:"not null;default:in_progress;index"`
	IsCompleted bool          `json:"is_completed" gorm:"default:false"`

	// Index into SectionOrder of the section the student is currently
	// taking. Only ever increases.
	CurrentSectionIndex int `json:"current_section_index" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam        *Exam            `json:"-" gorm:"foreignKey:ExamID"`
	Student     *User            `json:"-" gorm:"foreignKey:StudentID"`
	Answers     []StudentAnswer  `json:"-" gorm:"foreignKey:AttemptID"`
	FocusEvents []FocusLossEvent `json:"-" gorm:"foreignKey:AttemptID"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// CurrentSectionType returns the section type the attempt is in, or
// false once every section has been submitted.
func (a *ExamAttempt) CurrentSectionType() (SectionType, bool) {
	return SectionTypeAt(a.CurrentSectionIndex)
}

// StudentAnswer records one student's answer to one question. Exactly
// one row exists per (attempt, question); resubmission is rejected
// rather than overwritten.
type StudentAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`

	SelectedOptionIDs datatypes.JSON `json:"selected_option_ids" gorm:"type:jsonb"`
	FreeText          *string        `json:"free_text" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Attempt  *ExamAttempt `json:"-" gorm:"foreignKey:AttemptID"`
	Question *Question    `json:"-" gorm:"foreignKey:QuestionID"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}

// SelectedIDs decodes the selected option ids. A missing or null column
// decodes to an empty set.
func (sa *StudentAnswer) SelectedIDs() []uint {
	if len(sa.SelectedOptionIDs) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(sa.SelectedOptionIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeSelectedIDs sets the selected option ids column.
func (sa *StudentAnswer) EncodeSelectedIDs(ids []uint) error {
	if len(ids) == 0 {
		sa.SelectedOptionIDs = nil
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	sa.SelectedOptionIDs = raw
	return nil
}
