package services

import (
	"context"
	"testing"
	"time"

	"github.com/examind/exam-service/internal/config"
	"github.com/examind/exam-service/internal/events"
	"github.com/examind/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	policy := config.DefaultIntegrityPolicy()

	tests := []struct {
		name            string
		durationSeconds int
		want            models.Severity
	}{
		{name: "instant blur", durationSeconds: 0, want: models.SeverityLow},
		{name: "just under low boundary", durationSeconds: 9, want: models.SeverityLow},
		{name: "low boundary is medium", durationSeconds: 10, want: models.SeverityMedium},
		{name: "inside medium band", durationSeconds: 45, want: models.SeverityMedium},
		{name: "medium boundary inclusive", durationSeconds: 60, want: models.SeverityMedium},
		{name: "past medium boundary", durationSeconds: 61, want: models.SeverityHigh},
		{name: "long absence", durationSeconds: 600, want: models.SeverityHigh},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(policy, tc.durationSeconds))
		})
	}
}

func TestClassify_CustomPolicy(t *testing.T) {
	policy := config.IntegrityPolicy{LowMaxSeconds: 5, MediumMaxSeconds: 30}

	assert.Equal(t, models.SeverityLow, Classify(policy, 4))
	assert.Equal(t, models.SeverityMedium, Classify(policy, 5))
	assert.Equal(t, models.SeverityMedium, Classify(policy, 30))
	assert.Equal(t, models.SeverityHigh, Classify(policy, 31))
}

type integrityFixture struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	svc       *integrityService
	attemptID uint
}

func newIntegrityFixture(t *testing.T) *integrityFixture {
	t.Helper()
	fix := &integrityFixture{
		repo:      newFakeRepository(),
		publisher: events.NewMockEventPublisher(testLogger()),
	}
	fix.svc = NewIntegrityService(fix.repo, testLogger(), newTestValidator(t), fix.publisher, config.DefaultIntegrityPolicy()).(*integrityService)
	fix.svc.now = func() time.Time { return examOpensAt.Add(90 * time.Minute) }

	fix.repo.addExam(fixtureExam())
	attempt := &models.ExamAttempt{
		ExamID:    1,
		StudentID: "stu-1",
		StartTime: examOpensAt.Add(time.Hour),
		Status:    models.AttemptInProgress,
	}
	require.NoError(t, fix.repo.Attempt().Create(context.Background(), attempt))
	fix.attemptID = attempt.ID
	return fix
}

func TestIntegrityService_RecordFocusLoss(t *testing.T) {
	fix := newIntegrityFixture(t)

	resp, err := fix.svc.RecordFocusLoss(context.Background(), fix.attemptID, &FocusLossRequest{
		EventType:       models.EventTabSwitch,
		DurationSeconds: 4,
	}, "stu-1")
	require.NoError(t, err)

	assert.True(t, resp.Recorded)
	assert.Equal(t, models.SeverityLow, resp.Severity)

	stored, err := fix.repo.FocusEvent().ListByAttempt(context.Background(), fix.attemptID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.EventTabSwitch, stored[0].EventType)
	assert.Equal(t, 4, stored[0].DurationSeconds)

	// LOW severity does not raise an integrity event.
	assert.Empty(t, fix.publisher.PublishedEvents())
}

func TestIntegrityService_RecordFocusLoss_HighSeverityFlagged(t *testing.T) {
	fix := newIntegrityFixture(t)

	resp, err := fix.svc.RecordFocusLoss(context.Background(), fix.attemptID, &FocusLossRequest{
		EventType:       models.EventWindowBlur,
		DurationSeconds: 120,
	}, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, resp.Severity)

	published := fix.publisher.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventIntegrityFlagged, published[0].Type)
}

func TestIntegrityService_RecordFocusLoss_Guards(t *testing.T) {
	fix := newIntegrityFixture(t)
	ctx := context.Background()
	req := &FocusLossRequest{EventType: models.EventTabSwitch, DurationSeconds: 5}

	_, err := fix.svc.RecordFocusLoss(ctx, fix.attemptID, req, "stu-2")
	assert.True(t, IsForbidden(err))

	_, err = fix.svc.RecordFocusLoss(ctx, 9999, req, "stu-1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = fix.svc.RecordFocusLoss(ctx, fix.attemptID, &FocusLossRequest{EventType: "screenshot", DurationSeconds: 5}, "stu-1")
	assert.True(t, IsValidation(err))

	// Events are only accepted while the attempt is live.
	attempt, err := fix.repo.Attempt().GetByID(ctx, fix.attemptID)
	require.NoError(t, err)
	attempt.Status = models.AttemptCompleted
	attempt.IsCompleted = true
	require.NoError(t, fix.repo.Attempt().Update(ctx, attempt))

	_, err = fix.svc.RecordFocusLoss(ctx, fix.attemptID, req, "stu-1")
	assert.ErrorIs(t, err, ErrAttemptNotActive)
}

func TestIntegrityService_RecordFocusLoss_ExpiryPastDeadline(t *testing.T) {
	fix := newIntegrityFixture(t)
	ctx := context.Background()

	// 61 minutes into a 60 minute attempt window.
	detectedAt := examOpensAt.Add(time.Hour).Add(61 * time.Minute)
	fix.svc.now = func() time.Time { return detectedAt }

	_, err := fix.svc.RecordFocusLoss(ctx, fix.attemptID, &FocusLossRequest{
		EventType:       models.EventWindowBlur,
		DurationSeconds: 120,
	}, "stu-1")
	assert.ErrorIs(t, err, ErrAttemptExpired)
	assert.True(t, IsExpired(err))

	// The overdue attempt is finalized, the event is not stored, and no
	// integrity flag is raised for the rejected event.
	attempt, getErr := fix.repo.Attempt().GetByID(ctx, fix.attemptID)
	require.NoError(t, getErr)
	assert.Equal(t, models.AttemptExpired, attempt.Status)
	require.NotNil(t, attempt.EndTime)
	assert.Equal(t, detectedAt, *attempt.EndTime)

	stored, listErr := fix.repo.FocusEvent().ListByAttempt(ctx, fix.attemptID)
	require.NoError(t, listErr)
	assert.Empty(t, stored)

	published := fix.publisher.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptExpired, published[0].Type)

	// Later events stay rejected without a second expiry publish.
	_, err = fix.svc.RecordFocusLoss(ctx, fix.attemptID, &FocusLossRequest{
		EventType:       models.EventTabSwitch,
		DurationSeconds: 5,
	}, "stu-1")
	assert.ErrorIs(t, err, ErrAttemptExpired)
	assert.Len(t, fix.publisher.PublishedEvents(), 1)
}

func TestIntegrityService_ListFocusEvents(t *testing.T) {
	fix := newIntegrityFixture(t)
	ctx := context.Background()

	_, err := fix.svc.RecordFocusLoss(ctx, fix.attemptID, &FocusLossRequest{EventType: models.EventTabSwitch, DurationSeconds: 3}, "stu-1")
	require.NoError(t, err)
	_, err = fix.svc.RecordFocusLoss(ctx, fix.attemptID, &FocusLossRequest{EventType: models.EventFullscreenExit, DurationSeconds: 70}, "stu-1")
	require.NoError(t, err)

	// The student sees their own events, an admin sees anyone's.
	own, err := fix.svc.ListFocusEvents(ctx, fix.attemptID, "stu-1", models.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	admin, err := fix.svc.ListFocusEvents(ctx, fix.attemptID, "proctor-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	_, err = fix.svc.ListFocusEvents(ctx, fix.attemptID, "stu-2", models.RoleStudent)
	assert.True(t, IsForbidden(err))
}
