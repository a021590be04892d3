package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamReport is a derived, regenerable pass/fail summary for one exam.
// Criteria, per-student rows and aggregate statistics are stored as
// JSON so the report can be re-rendered without recomputation.
type ExamReport struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExamID      uint      `json:"exam_id" gorm:"not null;index"`
	GeneratedBy string    `json:"generated_by" gorm:"not null;size:255"`
	GeneratedAt time.Time `json:"generated_at" gorm:"not null"`

	// Passing marks per section type used for this report run.
	PassingCriteria datatypes.JSON `json:"passing_criteria" gorm:"type:jsonb"`

	TotalStudents   int `json:"total_students"`
	PassedCount     int `json:"passed_count"`
	FailedCount     int `json:"failed_count"`
	IncompleteCount int `json:"incomplete_count"`

	Rows       datatypes.JSON `json:"rows" gorm:"type:jsonb"`
	Statistics datatypes.JSON `json:"statistics" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Exam      *Exam `json:"-" gorm:"foreignKey:ExamID"`
	Generator *User `json:"-" gorm:"foreignKey:GeneratedBy"`
}

func (ExamReport) TableName() string {
	return "exam_reports"
}

// StudentResult is one row of a report: a single student's scored attempt.
type StudentResult struct {
	StudentID     string               `json:"student_id"`
	FullName      string               `json:"full_name"`
	Branch        string               `json:"branch"`
	AcademicYear  string               `json:"academic_year"`
	SectionScores map[SectionType]int  `json:"section_scores"`
	SectionPassed map[SectionType]bool `json:"section_passed"`
	TotalScore    int                  `json:"total_score"`
	PendingManual int                  `json:"pending_manual"`
	Passed        bool                 `json:"passed"`
}

// ReportStatistics are the optional aggregates over all scored rows.
type ReportStatistics struct {
	AverageScore float64 `json:"average_score"`
	HighestScore int     `json:"highest_score"`
	LowestScore  int     `json:"lowest_score"`
	PassRate     float64 `json:"pass_rate"`
}
