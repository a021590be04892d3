package postgres

import (
	"context"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{db: db}
}

func (r ReportPostgreSQL) Create(ctx context.Context, report *models.ExamReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r ReportPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ExamReport, error) {
	var report models.ExamReport
	if err := r.db.WithContext(ctx).Preload("Exam").First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r ReportPostgreSQL) ListByExam(ctx context.Context, examID uint) ([]*models.ExamReport, error) {
	var reports []*models.ExamReport
	if err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("generated_at desc").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
