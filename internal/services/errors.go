package services

import (
	"errors"
	"fmt"

	apperrors "github.com/examind/exam-service/internal/errors"
)

// ===== SERVICE ERRORS =====

var (
	// Not found
	ErrExamNotFound     = errors.New("exam not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrReportNotFound   = errors.New("report not found")
	ErrUserNotFound     = errors.New("user not found")

	// Conflict
	ErrAttemptAlreadyExists    = errors.New("student has already attempted this exam")
	ErrAttemptAlreadyCompleted = errors.New("attempt is already completed")
	ErrSectionOrderConflict    = errors.New("section is not the attempt's current section")
	ErrAnswerAlreadySubmitted  = errors.New("section answers were already submitted")
	ErrAttemptNotActive        = errors.New("attempt is not in progress")
	ErrSectionMismatch         = errors.New("section does not belong to the exam")

	// Expired
	ErrExamNotAvailable = errors.New("exam is not available at this time")
	ErrAttemptExpired   = errors.New("attempt deadline has passed")

	// Scoring preconditions
	ErrAttemptNotCompleted = errors.New("attempt is not completed, cannot be scored")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError reports a principal/resource mismatch.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR CLASSIFIERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadyExists) ||
		errors.Is(err, ErrAttemptAlreadyCompleted) ||
		errors.Is(err, ErrSectionOrderConflict) ||
		errors.Is(err, ErrAnswerAlreadySubmitted) ||
		errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrSectionMismatch) ||
		errors.Is(err, ErrAttemptNotCompleted)
}

func IsExpired(err error) bool {
	return errors.Is(err, ErrExamNotAvailable) ||
		errors.Is(err, ErrAttemptExpired)
}

func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}
