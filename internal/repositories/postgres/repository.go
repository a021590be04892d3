package postgres

import (
	"context"

	"github.com/examind/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of repositories.Repository.
type Repository struct {
	db *gorm.DB

	exam       repositories.ExamRepository
	section    repositories.SectionRepository
	question   repositories.QuestionRepository
	attempt    repositories.AttemptRepository
	answer     repositories.AnswerRepository
	focusEvent repositories.FocusEventRepository
	report     repositories.ReportRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		exam:       NewExamPostgreSQL(db),
		section:    NewSectionPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		answer:     NewAnswerPostgreSQL(db),
		focusEvent: NewFocusEventPostgreSQL(db),
		report:     NewReportPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *Repository) Exam() repositories.ExamRepository             { return r.exam }
func (r *Repository) Section() repositories.SectionRepository       { return r.section }
func (r *Repository) Question() repositories.QuestionRepository     { return r.question }
func (r *Repository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *Repository) Answer() repositories.AnswerRepository         { return r.answer }
func (r *Repository) FocusEvent() repositories.FocusEventRepository { return r.focusEvent }
func (r *Repository) Report() repositories.ReportRepository         { return r.report }
func (r *Repository) User() repositories.UserRepository             { return r.user }

// WithTx runs fn with a Repository bound to a single gorm transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
