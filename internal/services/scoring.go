package services

import (
	"github.com/examind/exam-service/internal/models"
)

// Scoring engine. Pure over a fully-loaded exam graph (sections with
// questions and options) and an attempt with its recorded answers.

type QuestionScore struct {
	QuestionID uint `json:"question_id"`
	Answered   bool `json:"answered"`
	// Correct is nil for unanswered and for free-text (manually graded)
	// questions.
	Correct *bool `json:"correct,omitempty"`
	Earned  int   `json:"earned"`
	// Manual marks free-text answers that are outside automated scoring.
	Manual bool `json:"manual"`
}

type SectionScore struct {
	Type          models.SectionType `json:"section_type"`
	Score         int                `json:"score"`
	PassingMarks  int                `json:"passing_marks"`
	Passed        bool               `json:"passed"`
	PendingManual int                `json:"pending_manual"`
	Questions     []QuestionScore    `json:"questions"`
}

type AttemptScore struct {
	AttemptID     uint                                `json:"attempt_id"`
	StudentID     string                              `json:"student_id"`
	Sections      map[models.SectionType]SectionScore `json:"sections"`
	TotalScore    int                                 `json:"total_score"`
	PendingManual int                                 `json:"pending_manual"`
	Passed        bool                                `json:"passed"`
}

// ScoreAttempt computes per-section and total scores for a completed
// attempt. passingOverrides replaces the stored passing marks for the
// section types it names. Only completed attempts are scorable.
func ScoreAttempt(exam *models.Exam, attempt *models.ExamAttempt, passingOverrides map[models.SectionType]int) (*AttemptScore, error) {
	if !attempt.IsCompleted {
		return nil, ErrAttemptNotCompleted
	}

	answersByQuestion := make(map[uint]*models.StudentAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		answersByQuestion[ans.QuestionID] = ans
	}

	result := &AttemptScore{
		AttemptID: attempt.ID,
		StudentID: attempt.StudentID,
		Sections:  make(map[models.SectionType]SectionScore, len(exam.Sections)),
		Passed:    true,
	}

	for i := range exam.Sections {
		section := &exam.Sections[i]

		passing := section.PassingMarks
		if override, ok := passingOverrides[section.Type]; ok {
			passing = override
		}

		ss := SectionScore{
			Type:         section.Type,
			PassingMarks: passing,
		}
		for j := range section.Questions {
			q := &section.Questions[j]
			qs := scoreQuestion(q, answersByQuestion[q.ID])
			ss.Score += qs.Earned
			if qs.Manual {
				ss.PendingManual++
			}
			ss.Questions = append(ss.Questions, qs)
		}
		ss.Passed = ss.Score >= ss.PassingMarks

		result.Sections[section.Type] = ss
		result.TotalScore += ss.Score
		result.PendingManual += ss.PendingManual
		if !ss.Passed {
			result.Passed = false
		}
	}

	return result, nil
}

// scoreQuestion awards full marks when the selected option set equals
// the correct option set exactly; any subset, superset or disjoint set
// earns zero. Free-text answers are recorded as pending manual grading
// and contribute zero to automated totals. Unanswered questions score
// zero.
func scoreQuestion(q *models.Question, answer *models.StudentAnswer) QuestionScore {
	qs := QuestionScore{QuestionID: q.ID}

	if answer == nil {
		return qs
	}
	qs.Answered = true

	if q.Type.IsFreeText() {
		qs.Manual = true
		return qs
	}

	correct := equalIDSets(answer.SelectedIDs(), q.CorrectOptionIDs())
	qs.Correct = &correct
	if correct {
		qs.Earned = q.Marks
	}
	return qs
}

func equalIDSets(a, b []uint) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	if len(set) != len(b) {
		return false
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
