package pkg

import (
	"fmt"

	"github.com/examind/exam-service/internal/config"
	"github.com/examind/exam-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Map driver errors onto gorm.ErrDuplicatedKey and friends so
		// the repositories can classify them.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Exam{},
		&models.Section{},
		&models.Question{},
		&models.QuestionOption{},
		&models.ExamAttempt{},
		&models.StudentAnswer{},
		&models.FocusLossEvent{},
		&models.ExamReport{},
	)
}
