package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/examind/exam-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	IsActive  *bool      `json:"is_active"`
	CreatedBy *string    `json:"created_by"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title", "start_time"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Status    models.AttemptStatus `json:"status"`
	StudentID *string              `json:"student_id"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	// GetByIDWithSections loads the full aggregate: sections with their
	// questions and options, as a unit.
	GetByIDWithSections(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	// ListAvailable returns active exams whose window has not closed.
	ListAvailable(ctx context.Context, now time.Time) ([]*models.Exam, error)
}

type SectionRepository interface {
	CreateBatch(ctx context.Context, sections []*models.Section) error
	GetByID(ctx context.Context, id uint) (*models.Section, error)
	GetByExamAndType(ctx context.Context, examID uint, sectionType models.SectionType) (*models.Section, error)
	ListByExam(ctx context.Context, examID uint) ([]*models.Section, error)
}

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*models.Question) error
	// ListBySection returns the section's questions with options preloaded.
	ListBySection(ctx context.Context, sectionID uint) ([]*models.Question, error)
	CountBySection(ctx context.Context, sectionID uint) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error)
	// GetByIDForUpdate loads the attempt row under a row-level lock.
	// Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.ExamAttempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.ExamAttempt, error)
	Update(ctx context.Context, attempt *models.ExamAttempt) error
	ExistsByExamAndStudent(ctx context.Context, examID uint, studentID string) (bool, error)
	// ListByExam returns attempts with answers preloaded, for report
	// aggregation. Student rows are resolved through UserRepository.
	ListByExam(ctx context.Context, examID uint, filters AttemptFilters) ([]*models.ExamAttempt, error)
}

type AnswerRepository interface {
	CreateBatch(ctx context.Context, answers []*models.StudentAnswer) error
	ListByAttempt(ctx context.Context, attemptID uint) ([]*models.StudentAnswer, error)
}

type FocusEventRepository interface {
	Create(ctx context.Context, event *models.FocusLossEvent) error
	ListByAttempt(ctx context.Context, attemptID uint) ([]*models.FocusLossEvent, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.ExamReport) error
	GetByID(ctx context.Context, id uint) (*models.ExamReport, error)
	ListByExam(ctx context.Context, examID uint) ([]*models.ExamReport, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

// Repository aggregates all entity repositories behind one handle.
type Repository interface {
	Exam() ExamRepository
	Section() SectionRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
	FocusEvent() FocusEventRepository
	Report() ReportRepository
	User() UserRepository

	// WithTx runs fn inside a single transaction. Every repository call
	// made through the Repository passed to fn shares that transaction;
	// returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is the storage layer's record-missing error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
