package models

import "time"

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	TrueFalse    QuestionType = "true_false"
	ShortAnswer  QuestionType = "short_answer"
	Code         QuestionType = "code"
)

// IsChoice reports whether answers to this question type are option
// selections (as opposed to free text).
func (t QuestionType) IsChoice() bool {
	switch t {
	case SingleChoice, MultiChoice, TrueFalse:
		return true
	}
	return false
}

// IsFreeText reports whether answers to this question type are free
// text. Free-text answers are outside automated scoring.
func (t QuestionType) IsFreeText() bool {
	switch t {
	case ShortAnswer, Code:
		return true
	}
	return false
}

func (t QuestionType) Valid() bool {
	return t.IsChoice() || t.IsFreeText()
}

type Question struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	SectionID uint         `json:"section_id" gorm:"not null;index"`
	Text      string       `json:"question_text" gorm:"column:question_text;type:text;not null" validate:"required"`
	Type      QuestionType `json:"question_type" gorm:"column:question_type;not null;size:30" validate:"required,question_type"`
	Marks     int          `json:"marks" gorm:"not null;default:1" validate:"min=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Section *Section         `json:"-" gorm:"foreignKey:SectionID"`
	Options []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs returns the ids of the options flagged correct.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// HasOption reports whether the given option id belongs to this question.
func (q *Question) HasOption(optionID uint) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionOption is a selectable answer option. IsCorrect is never
// serialized; student-facing views must only expose id and text.
type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"option_text" gorm:"column:option_text;type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"-" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
