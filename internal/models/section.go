package models

import "time"

type SectionType string

const (
	SectionAptitude  SectionType = "APTITUDE"
	SectionReasoning SectionType = "REASONING"
	SectionCoding    SectionType = "CODING"
)

// SectionOrder is the fixed progression order for every exam. An attempt
// moves through sections strictly in this order and never backwards.
var SectionOrder = []SectionType{SectionAptitude, SectionReasoning, SectionCoding}

// Index returns the position of the section type in the fixed order,
// or -1 for an unknown type.
func (t SectionType) Index() int {
	for i, s := range SectionOrder {
		if s == t {
			return i
		}
	}
	return -1
}

func (t SectionType) Valid() bool {
	return t.Index() >= 0
}

// SectionTypeAt returns the section type at the given progression index.
func SectionTypeAt(index int) (SectionType, bool) {
	if index < 0 || index >= len(SectionOrder) {
		return "", false
	}
	return SectionOrder[index], true
}

// NextSectionType returns the section type following the given
// progression index, or false when the index points at the last section.
func NextSectionType(index int) (SectionType, bool) {
	return SectionTypeAt(index + 1)
}

// RemainingSectionTypes returns the section types still ahead of the
// given progression index, in order. The section at the index itself is
// not included.
func RemainingSectionTypes(index int) []SectionType {
	if index+1 >= len(SectionOrder) {
		return []SectionType{}
	}
	remaining := make([]SectionType, len(SectionOrder)-index-1)
	copy(remaining, SectionOrder[index+1:])
	return remaining
}

type Section struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	ExamID       uint        `json:"exam_id" gorm:"not null;index;uniqueIndex:idx_sections_exam_type"`
	Type         SectionType `json:"section_type" gorm:"column:section_type;not null;size:20;uniqueIndex:idx_sections_exam_type" validate:"required,section_type"`
	Title        string      `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description  *string     `json:"description" gorm:"type:text"`
	PassingMarks int         `json:"passing_marks" gorm:"not null;default:0" validate:"min=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam      *Exam      `json:"-" gorm:"foreignKey:ExamID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SectionID"`
}

func (Section) TableName() string {
	return "sections"
}
