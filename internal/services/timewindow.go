package services

import (
	"time"

	"github.com/examind/exam-service/internal/models"
)

// Time window guard. Pure functions, no I/O; every lifecycle operation
// consults these before mutating state.

// IsExamOpen reports whether the exam accepts new attempts at the given
// instant: the exam is active and now lies within [start, end].
func IsExamOpen(exam *models.Exam, now time.Time) bool {
	return exam.IsActive && !now.Before(exam.StartTime) && !now.After(exam.EndTime)
}

// AttemptDeadline is the instant the attempt's allotted time runs out.
// It depends only on when the attempt started and the exam's duration,
// not on the exam's own end time: a student who starts near the exam's
// closing boundary still gets the full duration.
func AttemptDeadline(attempt *models.ExamAttempt, exam *models.Exam) time.Time {
	return attempt.StartTime.Add(time.Duration(exam.DurationMinutes) * time.Minute)
}

// IsAttemptExpired reports whether the attempt's deadline has passed.
// The deadline instant itself is still valid.
func IsAttemptExpired(attempt *models.ExamAttempt, exam *models.Exam, now time.Time) bool {
	return now.After(AttemptDeadline(attempt, exam))
}
