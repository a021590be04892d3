package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"github.com/examind/exam-service/internal/utils"
)

// ReportRenderer turns a generated report into a downloadable document.
type ReportRenderer interface {
	Render(report *ReportResponse) ([]byte, string, error)
}

type ReportService interface {
	Generate(ctx context.Context, examID uint, req *GenerateReportRequest, generatedBy string) (*ReportResponse, error)
	GetByID(ctx context.Context, reportID uint) (*ReportResponse, error)
	ListByExam(ctx context.Context, examID uint) ([]*ReportResponse, error)
	Download(ctx context.Context, reportID uint) ([]byte, string, error)
}

type reportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	renderer  ReportRenderer
	now       func() time.Time
}

func NewReportService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, renderer ReportRenderer) ReportService {
	return &reportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		renderer:  renderer,
		now:       time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, examID uint, req *GenerateReportRequest, generatedBy string) (*ReportResponse, error) {
	s.logger.Info("Generating exam report",
		"exam_id", examID,
		"generated_by", generatedBy)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	for sectionType := range req.PassingCriteria {
		if !sectionType.Valid() {
			return nil, fmt.Errorf("%w: unknown section type %q in passing criteria", ErrSectionNotFound, sectionType)
		}
	}

	exam, err := s.repo.Exam().GetByIDWithSections(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	// Effective criteria: stored passing marks overlaid with the
	// request's per-section overrides.
	criteria := make(map[models.SectionType]int, len(exam.Sections))
	for i := range exam.Sections {
		criteria[exam.Sections[i].Type] = exam.Sections[i].PassingMarks
	}
	for sectionType, marks := range req.PassingCriteria {
		criteria[sectionType] = marks
	}

	// Ordered by student id, so identical inputs produce identical rows.
	attempts, err := s.repo.Attempt().ListByExam(ctx, examID, repositories.AttemptFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	studentIDs := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		studentIDs = append(studentIDs, attempt.StudentID)
	}
	studentRows, err := s.repo.User().ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	students := make(map[string]*models.User, len(studentRows))
	for _, u := range studentRows {
		students[u.ID] = u
	}

	resp := &ReportResponse{
		ExamID:          examID,
		ExamTitle:       exam.Title,
		GeneratedBy:     generatedBy,
		GeneratedAt:     s.now(),
		PassingCriteria: criteria,
		TotalStudents:   len(attempts),
		Rows:            make([]models.StudentResult, 0, len(attempts)),
	}

	for _, attempt := range attempts {
		// In-progress and expired attempts never contribute scores.
		if !attempt.IsCompleted {
			resp.IncompleteCount++
			continue
		}

		score, err := ScoreAttempt(exam, attempt, req.PassingCriteria)
		if err != nil {
			return nil, fmt.Errorf("failed to score attempt %d: %w", attempt.ID, err)
		}

		row := models.StudentResult{
			StudentID:     attempt.StudentID,
			SectionScores: make(map[models.SectionType]int, len(score.Sections)),
			SectionPassed: make(map[models.SectionType]bool, len(score.Sections)),
			TotalScore:    score.TotalScore,
			PendingManual: score.PendingManual,
			Passed:        score.Passed,
		}
		if student := students[attempt.StudentID]; student != nil {
			row.FullName = student.FullName
			if student.Branch != nil {
				row.Branch = *student.Branch
			}
			if student.AcademicYear != nil {
				row.AcademicYear = *student.AcademicYear
			}
		}
		for sectionType, ss := range score.Sections {
			row.SectionScores[sectionType] = ss.Score
			row.SectionPassed[sectionType] = ss.Passed
		}

		if score.Passed {
			resp.PassedCount++
		} else {
			resp.FailedCount++
		}
		resp.Rows = append(resp.Rows, row)
	}

	if req.IncludeStatistics {
		resp.Statistics = computeStatistics(resp.Rows)
	}

	report, err := s.persist(ctx, resp)
	if err != nil {
		return nil, err
	}
	resp.ReportID = report.ID

	s.logger.Info("Exam report generated",
		"report_id", report.ID,
		"exam_id", examID,
		"total_students", resp.TotalStudents,
		"passed", resp.PassedCount,
		"failed", resp.FailedCount,
		"incomplete", resp.IncompleteCount)

	return resp, nil
}

func (s *reportService) GetByID(ctx context.Context, reportID uint) (*ReportResponse, error) {
	report, err := s.repo.Report().GetByID(ctx, reportID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return s.toResponse(ctx, report)
}

func (s *reportService) ListByExam(ctx context.Context, examID uint) ([]*ReportResponse, error) {
	reports, err := s.repo.Report().ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	responses := make([]*ReportResponse, 0, len(reports))
	for _, report := range reports {
		resp, err := s.toResponse(ctx, report)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *reportService) Download(ctx context.Context, reportID uint) ([]byte, string, error) {
	resp, err := s.GetByID(ctx, reportID)
	if err != nil {
		return nil, "", err
	}
	content, filename, err := s.renderer.Render(resp)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render report: %w", err)
	}
	return content, filename, nil
}

func (s *reportService) persist(ctx context.Context, resp *ReportResponse) (*models.ExamReport, error) {
	criteriaJSON, err := json.Marshal(resp.PassingCriteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode passing criteria: %w", err)
	}
	rowsJSON, err := json.Marshal(resp.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report rows: %w", err)
	}

	report := &models.ExamReport{
		ExamID:          resp.ExamID,
		GeneratedBy:     resp.GeneratedBy,
		GeneratedAt:     resp.GeneratedAt,
		PassingCriteria: criteriaJSON,
		TotalStudents:   resp.TotalStudents,
		PassedCount:     resp.PassedCount,
		FailedCount:     resp.FailedCount,
		IncompleteCount: resp.IncompleteCount,
		Rows:            rowsJSON,
	}
	if resp.Statistics != nil {
		statsJSON, err := json.Marshal(resp.Statistics)
		if err != nil {
			return nil, fmt.Errorf("failed to encode statistics: %w", err)
		}
		report.Statistics = statsJSON
	}

	if err := s.repo.Report().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}
	return report, nil
}

func (s *reportService) toResponse(ctx context.Context, report *models.ExamReport) (*ReportResponse, error) {
	resp := &ReportResponse{
		ReportID:        report.ID,
		ExamID:          report.ExamID,
		GeneratedBy:     report.GeneratedBy,
		GeneratedAt:     report.GeneratedAt,
		TotalStudents:   report.TotalStudents,
		PassedCount:     report.PassedCount,
		FailedCount:     report.FailedCount,
		IncompleteCount: report.IncompleteCount,
	}

	if exam, err := s.repo.Exam().GetByID(ctx, report.ExamID); err == nil {
		resp.ExamTitle = exam.Title
	}

	if len(report.PassingCriteria) > 0 {
		if err := json.Unmarshal(report.PassingCriteria, &resp.PassingCriteria); err != nil {
			return nil, fmt.Errorf("failed to decode passing criteria: %w", err)
		}
	}
	if len(report.Rows) > 0 {
		if err := json.Unmarshal(report.Rows, &resp.Rows); err != nil {
			return nil, fmt.Errorf("failed to decode report rows: %w", err)
		}
	}
	if len(report.Statistics) > 0 {
		var stats models.ReportStatistics
		if err := json.Unmarshal(report.Statistics, &stats); err != nil {
			return nil, fmt.Errorf("failed to decode statistics: %w", err)
		}
		resp.Statistics = &stats
	}
	return resp, nil
}

// computeStatistics aggregates over scored rows only. Incomplete
// attempts are outside the population.
func computeStatistics(rows []models.StudentResult) *models.ReportStatistics {
	stats := &models.ReportStatistics{}
	if len(rows) == 0 {
		return stats
	}

	total := 0
	passed := 0
	stats.HighestScore = rows[0].TotalScore
	stats.LowestScore = rows[0].TotalScore
	for _, row := range rows {
		total += row.TotalScore
		if row.TotalScore > stats.HighestScore {
			stats.HighestScore = row.TotalScore
		}
		if row.TotalScore < stats.LowestScore {
			stats.LowestScore = row.TotalScore
		}
		if row.Passed {
			passed++
		}
	}
	stats.AverageScore = float64(total) / float64(len(rows))
	stats.PassRate = float64(passed) / float64(len(rows)) * 100
	return stats
}
