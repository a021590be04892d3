package postgres

import (
	"context"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type SectionPostgreSQL struct {
	db *gorm.DB
}

func NewSectionPostgreSQL(db *gorm.DB) repositories.SectionRepository {
	return &SectionPostgreSQL{db: db}
}

func (s SectionPostgreSQL) CreateBatch(ctx context.Context, sections []*models.Section) error {
	if len(sections) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(sections).Error
}

func (s SectionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (s SectionPostgreSQL) GetByExamAndType(ctx context.Context, examID uint, sectionType models.SectionType) (*models.Section, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).
		Where("exam_id = ? AND section_type = ?", examID, sectionType).
		First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (s SectionPostgreSQL) ListByExam(ctx context.Context, examID uint) ([]*models.Section, error) {
	var sections []*models.Section
	if err := s.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}
