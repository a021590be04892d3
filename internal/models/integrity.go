package models

import "time"

type FocusEventType string

const (
	EventTabSwitch      FocusEventType = "tab_switch"
	EventWindowBlur     FocusEventType = "window_blur"
	EventVisibilityHide FocusEventType = "visibility_hide"
	EventFullscreenExit FocusEventType = "fullscreen_exit"
)

func (t FocusEventType) Valid() bool {
	switch t {
	case EventTabSwitch, EventWindowBlur, EventVisibilityHide, EventFullscreenExit:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// FocusLossEvent is an append-only integrity log entry for an attempt.
// Events are never mutated after creation and do not affect scores.
type FocusLossEvent struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;index"`

	EventTime       time.Time      `json:"event_time" gorm:"not null;index"`
	EventType       FocusEventType `json:"event_type" gorm:"not null;size:30"`
	DurationSeconds int            `json:"duration_seconds" gorm:"not null;default:0"`
	Severity        Severity       `json:"severity" gorm:"not null;size:10"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Attempt *ExamAttempt `json:"-" gorm:"foreignKey:AttemptID"`
}

func (FocusLossEvent) TableName() string {
	return "focus_loss_events"
}
