package events

import (
	"time"

	"github.com/examind/exam-service/internal/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventSectionSubmitted EventType = "attempt.section_submitted"
	EventAttemptCompleted EventType = "attempt.completed"
	EventAttemptExpired   EventType = "attempt.expired"
	EventIntegrityFlagged EventType = "attempt.integrity_flagged"
)

const eventSource = "exam-service"

// AttemptEvent is the envelope published for every attempt lifecycle
// transition and for high-severity integrity events.
type AttemptEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	AttemptID uint   `json:"attempt_id"`
	ExamID    uint   `json:"exam_id"`
	StudentID string `json:"student_id"`

	Data map[string]interface{} `json:"data,omitempty"`
}

func NewAttemptEvent(eventType EventType, attempt *models.ExamAttempt, data map[string]interface{}) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		AttemptID: attempt.ID,
		ExamID:    attempt.ExamID,
		StudentID: attempt.StudentID,
		Data:      data,
	}
}
