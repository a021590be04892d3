package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/examind/exam-service/internal/config"
	"github.com/examind/exam-service/internal/events"
	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"github.com/examind/exam-service/internal/utils"
)

type IntegrityService interface {
	RecordFocusLoss(ctx context.Context, attemptID uint, req *FocusLossRequest, studentID string) (*FocusLossResponse, error)
	ListFocusEvents(ctx context.Context, attemptID uint, requesterID string, requesterRole models.UserRole) ([]*models.FocusLossEvent, error)
}

type integrityService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	policy    config.IntegrityPolicy
	now       func() time.Time
}

func NewIntegrityService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, policy config.IntegrityPolicy) IntegrityService {
	return &integrityService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}

// Classify maps a focus-loss duration to a severity under the given
// policy thresholds.
func Classify(policy config.IntegrityPolicy, durationSeconds int) models.Severity {
	switch {
	case durationSeconds < policy.LowMaxSeconds:
		return models.SeverityLow
	case durationSeconds <= policy.MediumMaxSeconds:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

func (s *integrityService) RecordFocusLoss(ctx context.Context, attemptID uint, req *FocusLossRequest, studentID string) (*FocusLossResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	severity := Classify(s.policy, req.DurationSeconds)

	event := &models.FocusLossEvent{
		AttemptID:       attemptID,
		EventTime:       now,
		EventType:       req.EventType,
		DurationSeconds: req.DurationSeconds,
		Severity:        severity,
	}

	var guard attemptGuard
	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := lockAttempt(ctx, tx, &guard, attemptID, studentID, "record_focus_loss", now); err != nil {
			// A completed attempt no longer accepts integrity events.
			if errors.Is(err, ErrAttemptAlreadyCompleted) {
				return ErrAttemptNotActive
			}
			return err
		}
		if guard.expired {
			return nil
		}

		if err := tx.FocusEvent().Create(ctx, event); err != nil {
			return fmt.Errorf("failed to record focus event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if guard.expired {
		return nil, finishExpiry(ctx, s.logger, s.publisher, &guard)
	}

	s.logger.Info("Focus loss recorded",
		"attempt_id", attemptID,
		"event_type", req.EventType,
		"duration_seconds", req.DurationSeconds,
		"severity", severity)

	if severity == models.SeverityHigh {
		flagged := events.NewAttemptEvent(events.EventIntegrityFlagged, guard.attempt, map[string]interface{}{
			"event_type":       req.EventType,
			"duration_seconds": req.DurationSeconds,
			"severity":         severity,
		})
		if err := s.publisher.PublishAttemptEvent(ctx, flagged); err != nil {
			s.logger.Error("Failed to publish integrity event",
				"attempt_id", attemptID,
				"error", err)
		}
	}

	return &FocusLossResponse{
		AttemptID: attemptID,
		EventType: req.EventType,
		Recorded:  true,
		Severity:  severity,
	}, nil
}

func (s *integrityService) ListFocusEvents(ctx context.Context, attemptID uint, requesterID string, requesterRole models.UserRole) ([]*models.FocusLossEvent, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if requesterRole != models.RoleAdmin && attempt.StudentID != requesterID {
		return nil, NewPermissionError(requesterID, attemptID, "attempt", "list_focus_events", "attempt belongs to another student")
	}

	eventsList, err := s.repo.FocusEvent().ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus events: %w", err)
	}
	return eventsList, nil
}
