package services

import (
	"time"

	"github.com/examind/exam-service/internal/models"
)

// ===== EXAM AUTHORING =====

type CreateExamRequest struct {
	Title           string                 `json:"title" validate:"required,min=1,max=200"`
	Description     *string                `json:"description" validate:"omitempty,max=1000"`
	StartTime       time.Time              `json:"start_time" validate:"required"`
	EndTime         time.Time              `json:"end_time" validate:"required,gtfield=StartTime"`
	DurationMinutes int                    `json:"duration_minutes" validate:"required,min=5,max=300"`
	IsActive        bool                   `json:"is_active"`
	Sections        []CreateSectionRequest `json:"sections" validate:"required,min=1,max=3,dive"`
}

type CreateSectionRequest struct {
	Type         models.SectionType `json:"section_type" validate:"required,section_type"`
	Title        string             `json:"title" validate:"required,min=1,max=200"`
	Description  *string            `json:"description"`
	PassingMarks int                `json:"passing_marks" validate:"min=0"`
}

type AddQuestionsRequest struct {
	Questions []QuestionCreationRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuestionCreationRequest struct {
	Text    string                  `json:"question_text" validate:"required"`
	Type    models.QuestionType     `json:"question_type" validate:"required,question_type"`
	Marks   int                     `json:"marks" validate:"required,min=1"`
	Options []OptionCreationRequest `json:"options" validate:"omitempty,dive"`
}

type OptionCreationRequest struct {
	Text      string `json:"option_text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type ExamSummary struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	SectionCount    int       `json:"section_count"`
}

type ExamListResponse struct {
	Exams []ExamSummary `json:"exams"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// ===== ATTEMPT LIFECYCLE =====

type StartAttemptRequest struct {
	ExamID uint `json:"exam_id" validate:"required,min=1"`
}

type StartAttemptResponse struct {
	AttemptID       uint               `json:"attempt_id"`
	ExamID          uint               `json:"exam_id"`
	Title           string             `json:"title"`
	StartTime       time.Time          `json:"start_time"`
	DurationMinutes int                `json:"duration_minutes"`
	Deadline        time.Time          `json:"deadline"`
	FirstSection    models.SectionType `json:"first_section"`
}

// QuestionView is a question as shown to the student mid-attempt. It
// never carries correctness flags.
type QuestionView struct {
	ID      uint                `json:"id"`
	Text    string              `json:"question_text"`
	Type    models.QuestionType `json:"question_type"`
	Marks   int                 `json:"marks"`
	Options []OptionView        `json:"options,omitempty"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"option_text"`
}

type SectionQuestionsResponse struct {
	AttemptID        uint               `json:"attempt_id"`
	SectionType      models.SectionType `json:"section_type"`
	SectionTitle     string             `json:"section_title"`
	TotalQuestions   int                `json:"total_questions"`
	Questions        []QuestionView     `json:"questions"`
	Deadline         time.Time          `json:"deadline"`
	RemainingSeconds int                `json:"remaining_seconds"`
}

type SubmitSectionRequest struct {
	SectionType models.SectionType `json:"section_type" validate:"required,section_type"`
	Answers     []AnswerSubmission `json:"answers" validate:"dive"`
}

type AnswerSubmission struct {
	QuestionID        uint    `json:"question_id" validate:"required,min=1"`
	SelectedOptionIDs []uint  `json:"selected_option_ids"`
	FreeText          *string `json:"free_text"`
}

type SubmitSectionResponse struct {
	AttemptID         uint                 `json:"attempt_id"`
	SubmittedSection  models.SectionType   `json:"submitted_section"`
	AnswersRecorded   int                  `json:"answers_recorded"`
	NextSection       *models.SectionType  `json:"next_section"`
	RemainingSections []models.SectionType `json:"remaining_sections"`
}

// SectionResultView is one section's outcome in a student-facing
// result, without the per-question correctness detail.
type SectionResultView struct {
	Type          models.SectionType `json:"type"`
	Score         int                `json:"score"`
	PassingMarks  int                `json:"passing_marks"`
	Passed        bool               `json:"passed"`
	PendingManual int                `json:"pending_manual"`
}

type AttemptResultResponse struct {
	AttemptID     uint                 `json:"attempt_id"`
	ExamID        uint                 `json:"exam_id"`
	ExamTitle     string               `json:"exam_title"`
	StudentID     string               `json:"student_id"`
	StudentName   string               `json:"student_name,omitempty"`
	Status        models.AttemptStatus `json:"status"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       *time.Time           `json:"end_time,omitempty"`
	Sections      []SectionResultView  `json:"sections"`
	TotalScore    int                  `json:"total_score"`
	PendingManual int                  `json:"pending_manual"`
	Passed        bool                 `json:"passed"`
}

type CompleteAttemptResponse struct {
	AttemptID   uint                 `json:"attempt_id"`
	ExamID      uint                 `json:"exam_id"`
	Status      models.AttemptStatus `json:"status"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	IsCompleted bool                 `json:"is_completed"`
}

// ===== INTEGRITY =====

type FocusLossRequest struct {
	EventType       models.FocusEventType `json:"event_type" validate:"required,focus_event_type"`
	DurationSeconds int                   `json:"duration_seconds" validate:"min=0"`
}

type FocusLossResponse struct {
	AttemptID uint                  `json:"attempt_id"`
	EventType models.FocusEventType `json:"event_type"`
	Recorded  bool                  `json:"recorded"`
	Severity  models.Severity       `json:"severity"`
}

// ===== REPORTING =====

type GenerateReportRequest struct {
	PassingCriteria   map[models.SectionType]int `json:"passing_criteria" validate:"omitempty"`
	IncludeStatistics bool                       `json:"include_statistics"`
}

type ReportResponse struct {
	ReportID        uint                       `json:"report_id"`
	ExamID          uint                       `json:"exam_id"`
	ExamTitle       string                     `json:"exam_title"`
	GeneratedBy     string                     `json:"generated_by"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	PassingCriteria map[models.SectionType]int `json:"passing_criteria"`
	TotalStudents   int                        `json:"total_students"`
	PassedCount     int                        `json:"passed_count"`
	FailedCount     int                        `json:"failed_count"`
	IncompleteCount int                        `json:"incomplete_count"`
	Rows            []models.StudentResult     `json:"rows"`
	Statistics      *models.ReportStatistics   `json:"statistics,omitempty"`
}
