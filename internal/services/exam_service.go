package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/examind/exam-service/internal/cache"
	apperrors "github.com/examind/exam-service/internal/errors"
	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"github.com/examind/exam-service/internal/utils"
)

const (
	availableExamsCacheKey = "exams:available"
	availableExamsCacheTTL = time.Minute
)

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, createdBy string) (*models.Exam, error)
	AddQuestions(ctx context.Context, examID uint, sectionType models.SectionType, req *AddQuestionsRequest, requesterID string, requesterRole models.UserRole) (*models.Section, error)
	GetByID(ctx context.Context, examID uint) (*models.Exam, error)
	List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error)
	ListAvailable(ctx context.Context) ([]ExamSummary, error)
}

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	cache     cache.CacheService
	now       func() time.Time
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, cacheService cache.CacheService) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
		now:       time.Now,
	}
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, createdBy string) (*models.Exam, error) {
	s.logger.Info("Creating exam", "title", req.Title, "created_by", createdBy)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateSectionSet(req.Sections); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
		CreatedBy:       createdBy,
	}

	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := tx.Exam().Create(ctx, exam); err != nil {
			return fmt.Errorf("failed to create exam: %w", err)
		}
		sections := make([]*models.Section, 0, len(req.Sections))
		for _, sr := range req.Sections {
			sections = append(sections, &models.Section{
				ExamID:       exam.ID,
				Type:         sr.Type,
				Title:        sr.Title,
				Description:  sr.Description,
				PassingMarks: sr.PassingMarks,
			})
		}
		if err := tx.Section().CreateBatch(ctx, sections); err != nil {
			return fmt.Errorf("failed to create sections: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateExamCache(ctx)

	s.logger.Info("Exam created", "exam_id", exam.ID, "sections", len(req.Sections))
	return s.GetByID(ctx, exam.ID)
}

func (s *examService) AddQuestions(ctx context.Context, examID uint, sectionType models.SectionType, req *AddQuestionsRequest, requesterID string, requesterRole models.UserRole) (*models.Section, error) {
	s.logger.Info("Adding questions to section",
		"exam_id", examID,
		"section_type", sectionType,
		"count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !sectionType.Valid() {
		return nil, apperrors.NewValidationError("section_type", "Section type must be one of APTITUDE, REASONING, CODING", sectionType)
	}
	for i, q := range req.Questions {
		if err := validateQuestionOptions(i, q); err != nil {
			return nil, err
		}
	}

	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if requesterRole != models.RoleAdmin && exam.CreatedBy != requesterID {
		return nil, NewPermissionError(requesterID, examID, "exam", "add_questions", "only the exam creator can add questions")
	}

	section, err := s.repo.Section().GetByExamAndType(ctx, examID, sectionType)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}

	questions := make([]*models.Question, 0, len(req.Questions))
	for _, qr := range req.Questions {
		q := &models.Question{
			SectionID: section.ID,
			Text:      qr.Text,
			Type:      qr.Type,
			Marks:     qr.Marks,
		}
		for _, or := range qr.Options {
			q.Options = append(q.Options, models.QuestionOption{
				Text:      or.Text,
				IsCorrect: or.IsCorrect,
			})
		}
		questions = append(questions, q)
	}

	if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to create questions: %w", err)
	}

	s.invalidateExamCache(ctx)

	// Reload explicitly so the response carries the full question set
	// regardless of how the section row itself was fetched.
	loaded, err := s.repo.Question().ListBySection(ctx, section.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload questions: %w", err)
	}
	section.Questions = make([]models.Question, 0, len(loaded))
	for _, q := range loaded {
		section.Questions = append(section.Questions, *q)
	}

	total, err := s.repo.Question().CountBySection(ctx, section.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	s.logger.Info("Questions added",
		"exam_id", examID,
		"section_id", section.ID,
		"added", len(questions),
		"section_total", total)

	return section, nil
}

func (s *examService) GetByID(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithSections(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error) {
	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	page := 1
	size := filters.Limit
	if size <= 0 {
		size = len(exams)
	} else if filters.Offset > 0 {
		page = filters.Offset/size + 1
	}

	return &ExamListResponse{
		Exams: examSummaries(exams),
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// ListAvailable returns active exams whose window is still open,
// served from cache when possible. Staleness is bounded by the cache
// TTL and by invalidation on every exam write.
func (s *examService) ListAvailable(ctx context.Context) ([]ExamSummary, error) {
	var cached []ExamSummary
	err := s.cache.Get(ctx, availableExamsCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Exam cache read failed, falling back to database", "error", err)
	}

	exams, err := s.repo.Exam().ListAvailable(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list available exams: %w", err)
	}
	summaries := examSummaries(exams)

	if err := s.cache.Set(ctx, availableExamsCacheKey, summaries, availableExamsCacheTTL); err != nil {
		s.logger.Warn("Exam cache write failed", "error", err)
	}
	return summaries, nil
}

func (s *examService) invalidateExamCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "exams:*"); err != nil {
		s.logger.Warn("Exam cache invalidation failed", "error", err)
	}
}

// ===== AUTHORING VALIDATION =====

func validateSectionSet(sections []CreateSectionRequest) error {
	seen := make(map[models.SectionType]bool, len(sections))
	for _, sr := range sections {
		if seen[sr.Type] {
			return apperrors.NewValidationError("sections", "Each section type can appear at most once", sr.Type)
		}
		seen[sr.Type] = true
	}
	return nil
}

// validateQuestionOptions enforces the option shape per question type:
// choice questions need at least two options with the right number of
// correct ones, free-text questions take none.
func validateQuestionOptions(index int, q QuestionCreationRequest) error {
	field := fmt.Sprintf("questions[%d].options", index)

	if q.Type.IsFreeText() {
		if len(q.Options) > 0 {
			return apperrors.NewValidationError(field, "Free-text questions cannot have options", len(q.Options))
		}
		return nil
	}

	if q.Type == models.TrueFalse {
		if len(q.Options) != 2 {
			return apperrors.NewValidationError(field, "True/false questions need exactly two options", len(q.Options))
		}
	} else if len(q.Options) < 2 {
		return apperrors.NewValidationError(field, "Choice questions need at least two options", len(q.Options))
	}

	correct := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	switch q.Type {
	case models.SingleChoice, models.TrueFalse:
		if correct != 1 {
			return apperrors.NewValidationError(field, "Question needs exactly one correct option", correct)
		}
	case models.MultiChoice:
		if correct < 1 {
			return apperrors.NewValidationError(field, "Question needs at least one correct option", correct)
		}
	}
	return nil
}

func examSummaries(exams []*models.Exam) []ExamSummary {
	summaries := make([]ExamSummary, 0, len(exams))
	for _, exam := range exams {
		summaries = append(summaries, ExamSummary{
			ID:              exam.ID,
			Title:           exam.Title,
			Description:     exam.Description,
			StartTime:       exam.StartTime,
			EndTime:         exam.EndTime,
			DurationMinutes: exam.DurationMinutes,
			IsActive:        exam.IsActive,
			SectionCount:    len(exam.Sections),
		})
	}
	return summaries
}
