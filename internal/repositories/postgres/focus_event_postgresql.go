package postgres

import (
	"context"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type FocusEventPostgreSQL struct {
	db *gorm.DB
}

func NewFocusEventPostgreSQL(db *gorm.DB) repositories.FocusEventRepository {
	return &FocusEventPostgreSQL{db: db}
}

func (f FocusEventPostgreSQL) Create(ctx context.Context, event *models.FocusLossEvent) error {
	return f.db.WithContext(ctx).Create(event).Error
}

func (f FocusEventPostgreSQL) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.FocusLossEvent, error) {
	var events []*models.FocusLossEvent
	if err := f.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("event_time asc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
