package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/examind/exam-service/internal/errors"
	"github.com/examind/exam-service/internal/events"
	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"github.com/examind/exam-service/internal/utils"
)

type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, studentID string) (*StartAttemptResponse, error)
	GetSectionQuestions(ctx context.Context, attemptID uint, sectionType models.SectionType, studentID string) (*SectionQuestionsResponse, error)
	SubmitSection(ctx context.Context, attemptID uint, req *SubmitSectionRequest, studentID string) (*SubmitSectionResponse, error)
	Complete(ctx context.Context, attemptID uint, studentID string) (*CompleteAttemptResponse, error)
	GetResult(ctx context.Context, attemptID uint, requesterID string, requesterRole models.UserRole) (*AttemptResultResponse, error)
}

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, studentID string) (*StartAttemptResponse, error) {
	s.logger.Info("Starting exam attempt",
		"exam_id", req.ExamID,
		"student_id", studentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()

	exam, err := s.repo.Exam().GetByID(ctx, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if !IsExamOpen(exam, now) {
		return nil, ErrExamNotAvailable
	}

	attempt := &models.ExamAttempt{
		ExamID:              exam.ID,
		StudentID:           studentID,
		StartTime:           now,
		Status:              models.AttemptInProgress,
		CurrentSectionIndex: 0,
	}

	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		exists, err := tx.Attempt().ExistsByExamAndStudent(ctx, exam.ID, studentID)
		if err != nil {
			return fmt.Errorf("failed to check existing attempt: %w", err)
		}
		if exists {
			return ErrAttemptAlreadyExists
		}
		if err := tx.Attempt().Create(ctx, attempt); err != nil {
			// The unique index on (exam_id, student_id) closes the race
			// between the existence check and the insert.
			if repositories.IsDuplicateError(err) {
				return ErrAttemptAlreadyExists
			}
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventAttemptStarted, attempt, map[string]interface{}{
		"deadline": AttemptDeadline(attempt, exam),
	})

	s.logger.Info("Exam attempt started",
		"attempt_id", attempt.ID,
		"exam_id", exam.ID,
		"student_id", studentID)

	return &StartAttemptResponse{
		AttemptID:       attempt.ID,
		ExamID:          exam.ID,
		Title:           exam.Title,
		StartTime:       attempt.StartTime,
		DurationMinutes: exam.DurationMinutes,
		Deadline:        AttemptDeadline(attempt, exam),
		FirstSection:    models.SectionOrder[0],
	}, nil
}

func (s *attemptService) GetSectionQuestions(ctx context.Context, attemptID uint, sectionType models.SectionType, studentID string) (*SectionQuestionsResponse, error) {
	if !sectionType.Valid() {
		return nil, apperrors.NewValidationError("section_type", "Section type must be one of APTITUDE, REASONING, CODING", sectionType)
	}

	now := s.now()
	var resp *SectionQuestionsResponse
	var guard attemptGuard

	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := lockAttempt(ctx, tx, &guard, attemptID, studentID, "read", now); err != nil {
			return err
		}
		if guard.expired {
			return nil
		}

		current, ok := guard.attempt.CurrentSectionType()
		if !ok || current != sectionType {
			return ErrSectionOrderConflict
		}

		section := findSection(guard.exam, sectionType)
		if section == nil {
			return ErrSectionNotFound
		}

		deadline := AttemptDeadline(guard.attempt, guard.exam)
		resp = &SectionQuestionsResponse{
			AttemptID:        guard.attempt.ID,
			SectionType:      section.Type,
			SectionTitle:     section.Title,
			TotalQuestions:   len(section.Questions),
			Questions:        questionViews(section.Questions),
			Deadline:         deadline,
			RemainingSeconds: int(deadline.Sub(now).Seconds()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if guard.expired {
		return nil, finishExpiry(ctx, s.logger, s.publisher, &guard)
	}
	return resp, nil
}

func (s *attemptService) SubmitSection(ctx context.Context, attemptID uint, req *SubmitSectionRequest, studentID string) (*SubmitSectionResponse, error) {
	s.logger.Info("Submitting section answers",
		"attempt_id", attemptID,
		"section_type", req.SectionType,
		"student_id", studentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	var resp *SubmitSectionResponse
	var guard attemptGuard

	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := lockAttempt(ctx, tx, &guard, attemptID, studentID, "submit", now); err != nil {
			return err
		}
		if guard.expired {
			return nil
		}
		attempt := guard.attempt

		current, ok := attempt.CurrentSectionType()
		if !ok || current != req.SectionType {
			return ErrSectionOrderConflict
		}

		section := findSection(guard.exam, req.SectionType)
		if section == nil {
			return ErrSectionNotFound
		}

		answers, err := buildAnswers(attempt, section, req.Answers)
		if err != nil {
			return err
		}

		existing, err := tx.Answer().ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return fmt.Errorf("failed to load recorded answers: %w", err)
		}
		answered := make(map[uint]bool, len(existing))
		for _, a := range existing {
			answered[a.QuestionID] = true
		}
		for _, a := range answers {
			if answered[a.QuestionID] {
				return ErrAnswerAlreadySubmitted
			}
		}

		if len(answers) > 0 {
			if err := tx.Answer().CreateBatch(ctx, answers); err != nil {
				if repositories.IsDuplicateError(err) {
					return ErrAnswerAlreadySubmitted
				}
				return fmt.Errorf("failed to record answers: %w", err)
			}
		}

		attempt.CurrentSectionIndex++
		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to advance attempt: %w", err)
		}

		next, hasNext := models.SectionTypeAt(attempt.CurrentSectionIndex)
		resp = &SubmitSectionResponse{
			AttemptID:         attempt.ID,
			SubmittedSection:  req.SectionType,
			AnswersRecorded:   len(answers),
			RemainingSections: models.RemainingSectionTypes(attempt.CurrentSectionIndex - 1),
		}
		if hasNext {
			resp.NextSection = &next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if guard.expired {
		return nil, finishExpiry(ctx, s.logger, s.publisher, &guard)
	}

	s.publishEvent(ctx, events.EventSectionSubmitted, guard.attempt, map[string]interface{}{
		"section_type":     req.SectionType,
		"answers_recorded": resp.AnswersRecorded,
	})

	return resp, nil
}

func (s *attemptService) Complete(ctx context.Context, attemptID uint, studentID string) (*CompleteAttemptResponse, error) {
	s.logger.Info("Completing exam attempt",
		"attempt_id", attemptID,
		"student_id", studentID)

	now := s.now()
	var resp *CompleteAttemptResponse
	var guard attemptGuard

	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := lockAttempt(ctx, tx, &guard, attemptID, studentID, "complete", now); err != nil {
			return err
		}
		if guard.expired {
			return nil
		}
		attempt := guard.attempt

		endTime := now
		attempt.Status = models.AttemptCompleted
		attempt.IsCompleted = true
		attempt.EndTime = &endTime
		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to complete attempt: %w", err)
		}

		resp = &CompleteAttemptResponse{
			AttemptID:   attempt.ID,
			ExamID:      attempt.ExamID,
			Status:      attempt.Status,
			StartTime:   attempt.StartTime,
			EndTime:     endTime,
			IsCompleted: true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if guard.expired {
		return nil, finishExpiry(ctx, s.logger, s.publisher, &guard)
	}

	s.publishEvent(ctx, events.EventAttemptCompleted, guard.attempt, map[string]interface{}{
		"completed_at": *guard.attempt.EndTime,
	})

	s.logger.Info("Exam attempt completed",
		"attempt_id", attemptID,
		"student_id", studentID)

	return resp, nil
}

// GetResult scores a completed attempt for its owner or an admin. The
// per-question correctness detail stays inside the service; only the
// section outcomes leave it.
func (s *attemptService) GetResult(ctx context.Context, attemptID uint, requesterID string, requesterRole models.UserRole) (*AttemptResultResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if requesterRole != models.RoleAdmin && attempt.StudentID != requesterID {
		return nil, NewPermissionError(requesterID, attemptID, "attempt", "get_result", "attempt belongs to another student")
	}

	exam, err := s.repo.Exam().GetByIDWithSections(ctx, attempt.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	score, err := ScoreAttempt(exam, attempt, nil)
	if err != nil {
		return nil, err
	}

	resp := &AttemptResultResponse{
		AttemptID:     attempt.ID,
		ExamID:        exam.ID,
		ExamTitle:     exam.Title,
		StudentID:     attempt.StudentID,
		Status:        attempt.Status,
		StartTime:     attempt.StartTime,
		EndTime:       attempt.EndTime,
		Sections:      make([]SectionResultView, 0, len(score.Sections)),
		TotalScore:    score.TotalScore,
		PendingManual: score.PendingManual,
		Passed:        score.Passed,
	}

	student, err := s.repo.User().GetByID(ctx, attempt.StudentID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student != nil {
		resp.StudentName = student.FullName
	}

	for _, sectionType := range models.SectionOrder {
		ss, ok := score.Sections[sectionType]
		if !ok {
			continue
		}
		resp.Sections = append(resp.Sections, SectionResultView{
			Type:          ss.Type,
			Score:         ss.Score,
			PassingMarks:  ss.PassingMarks,
			Passed:        ss.Passed,
			PendingManual: ss.PendingManual,
		})
	}

	return resp, nil
}

// ===== ATTEMPT GUARDS =====

// attemptGuard carries the locked attempt and its exam across the
// transaction boundary. When the deadline passed during the operation
// the expiry is committed first and the caller reports it afterwards,
// so a rolled-back request can never undo the expiry.
type attemptGuard struct {
	attempt *models.ExamAttempt
	exam    *models.Exam
	expired bool
}

// lockAttempt loads the attempt under a row lock, checks ownership and
// liveness, and finalizes an overdue attempt in place. Every operation
// that touches an attempt goes through here, so expiry is always
// detected on the next access whichever service makes it. Callers must
// check guard.expired before touching the attempt.
func lockAttempt(ctx context.Context, tx repositories.Repository, guard *attemptGuard, attemptID uint, studentID, action string, now time.Time) error {
	attempt, err := tx.Attempt().GetByIDForUpdate(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to lock attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return NewPermissionError(studentID, attemptID, "attempt", action, "attempt belongs to another student")
	}

	exam, err := tx.Exam().GetByIDWithSections(ctx, attempt.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	guard.attempt = attempt
	guard.exam = exam

	switch attempt.Status {
	case models.AttemptCompleted:
		return ErrAttemptAlreadyCompleted
	case models.AttemptExpired:
		return ErrAttemptExpired
	}

	if IsAttemptExpired(attempt, exam, now) {
		attempt.Status = models.AttemptExpired
		attempt.EndTime = &now
		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to expire attempt: %w", err)
		}
		guard.expired = true
	}
	return nil
}

// finishExpiry publishes the expiry event once the finalization has
// committed and surfaces the terminal condition to the caller.
func finishExpiry(ctx context.Context, logger *slog.Logger, publisher events.EventPublisher, guard *attemptGuard) error {
	logger.Info("Attempt expired past deadline",
		"attempt_id", guard.attempt.ID,
		"exam_id", guard.attempt.ExamID,
		"deadline", AttemptDeadline(guard.attempt, guard.exam))

	event := events.NewAttemptEvent(events.EventAttemptExpired, guard.attempt, map[string]interface{}{
		"deadline": AttemptDeadline(guard.attempt, guard.exam),
	})
	if err := publisher.PublishAttemptEvent(ctx, event); err != nil {
		logger.Error("Failed to publish attempt event",
			"event_type", events.EventAttemptExpired,
			"attempt_id", guard.attempt.ID,
			"error", err)
	}
	return ErrAttemptExpired
}

func (s *attemptService) publishEvent(ctx context.Context, eventType events.EventType, attempt *models.ExamAttempt, data map[string]interface{}) {
	event := events.NewAttemptEvent(eventType, attempt, data)
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", eventType,
			"attempt_id", attempt.ID,
			"error", err)
	}
}

// ===== HELPERS =====

func findSection(exam *models.Exam, sectionType models.SectionType) *models.Section {
	for i := range exam.Sections {
		if exam.Sections[i].Type == sectionType {
			return &exam.Sections[i]
		}
	}
	return nil
}

func questionViews(questions []models.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		view := QuestionView{
			ID:    q.ID,
			Text:  q.Text,
			Type:  q.Type,
			Marks: q.Marks,
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		views = append(views, view)
	}
	return views
}

// buildAnswers validates each submission against its question and
// converts the batch to answer rows. Payloads must match the question
// type: choice questions take option ids from the question's own
// options, free-text questions take non-empty text.
func buildAnswers(attempt *models.ExamAttempt, section *models.Section, submissions []AnswerSubmission) ([]*models.StudentAnswer, error) {
	questionsByID := make(map[uint]*models.Question, len(section.Questions))
	for i := range section.Questions {
		questionsByID[section.Questions[i].ID] = &section.Questions[i]
	}

	answers := make([]*models.StudentAnswer, 0, len(submissions))
	seen := make(map[uint]bool, len(submissions))
	for _, sub := range submissions {
		if seen[sub.QuestionID] {
			return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Question answered more than once in the same submission", nil)
		}
		seen[sub.QuestionID] = true

		q, ok := questionsByID[sub.QuestionID]
		if !ok {
			return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Question does not belong to the submitted section", nil)
		}

		answer := &models.StudentAnswer{
			AttemptID:  attempt.ID,
			QuestionID: sub.QuestionID,
		}

		if q.Type.IsFreeText() {
			if len(sub.SelectedOptionIDs) > 0 {
				return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Free-text question cannot take selected options", sub.SelectedOptionIDs)
			}
			if sub.FreeText == nil || *sub.FreeText == "" {
				return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Free-text answer cannot be empty", nil)
			}
			answer.FreeText = sub.FreeText
		} else {
			if sub.FreeText != nil {
				return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Choice question cannot take free text", nil)
			}
			if len(sub.SelectedOptionIDs) == 0 {
				return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Choice answer must select at least one option", nil)
			}
			if q.Type == models.SingleChoice || q.Type == models.TrueFalse {
				if len(sub.SelectedOptionIDs) != 1 {
					return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Question takes exactly one selected option", sub.SelectedOptionIDs)
				}
			}
			optionSeen := make(map[uint]bool, len(sub.SelectedOptionIDs))
			for _, optID := range sub.SelectedOptionIDs {
				if optionSeen[optID] {
					return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Selected options must be distinct", sub.SelectedOptionIDs)
				}
				optionSeen[optID] = true
				if !q.HasOption(optID) {
					return nil, apperrors.NewQuestionValidationError(sub.QuestionID, "Selected option does not belong to the question", optID)
				}
			}
			if err := answer.EncodeSelectedIDs(sub.SelectedOptionIDs); err != nil {
				return nil, fmt.Errorf("failed to encode selected options: %w", err)
			}
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
