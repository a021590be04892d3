package services

import (
	"testing"

	"github.com/examind/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(id uint, correct bool) models.QuestionOption {
	return models.QuestionOption{ID: id, QuestionID: 0, Text: "option", IsCorrect: correct}
}

func choiceAnswer(t *testing.T, questionID uint, selected ...uint) models.StudentAnswer {
	t.Helper()
	ans := models.StudentAnswer{QuestionID: questionID}
	require.NoError(t, ans.EncodeSelectedIDs(selected))
	return ans
}

func textAnswer(questionID uint, text string) models.StudentAnswer {
	return models.StudentAnswer{QuestionID: questionID, FreeText: &text}
}

func scoringExam() *models.Exam {
	return &models.Exam{
		ID:              1,
		DurationMinutes: 60,
		Sections: []models.Section{
			{
				ID: 10, ExamID: 1, Type: models.SectionAptitude, PassingMarks: 10,
				Questions: []models.Question{
					{ID: 100, Type: models.SingleChoice, Marks: 5, Options: []models.QuestionOption{option(1, true), option(2, false)}},
					{ID: 101, Type: models.SingleChoice, Marks: 5, Options: []models.QuestionOption{option(3, false), option(4, true)}},
				},
			},
			{
				ID: 11, ExamID: 1, Type: models.SectionReasoning, PassingMarks: 8,
				Questions: []models.Question{
					{ID: 102, Type: models.MultiChoice, Marks: 8, Options: []models.QuestionOption{
						option(5, true), option(6, true), option(7, false), option(8, false),
					}},
				},
			},
			{
				ID: 12, ExamID: 1, Type: models.SectionCoding, PassingMarks: 0,
				Questions: []models.Question{
					{ID: 103, Type: models.Code, Marks: 20},
				},
			},
		},
	}
}

func TestScoreAttempt_FullMarksAndPass(t *testing.T) {
	exam := scoringExam()
	attempt := &models.ExamAttempt{
		ID: 7, StudentID: "stu-1", IsCompleted: true,
		Answers: []models.StudentAnswer{
			choiceAnswer(t, 100, 1),
			choiceAnswer(t, 101, 4),
			choiceAnswer(t, 102, 5, 6),
			textAnswer(103, "func main() {}"),
		},
	}

	score, err := ScoreAttempt(exam, attempt, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, score.Sections[models.SectionAptitude].Score)
	assert.True(t, score.Sections[models.SectionAptitude].Passed)
	assert.Equal(t, 8, score.Sections[models.SectionReasoning].Score)
	assert.True(t, score.Sections[models.SectionReasoning].Passed)

	// Free-text contributes zero to automated totals but is surfaced
	// as pending manual grading.
	assert.Equal(t, 0, score.Sections[models.SectionCoding].Score)
	assert.Equal(t, 1, score.Sections[models.SectionCoding].PendingManual)
	assert.True(t, score.Sections[models.SectionCoding].Passed, "passing marks 0 passes with zero score")

	assert.Equal(t, 18, score.TotalScore)
	assert.Equal(t, 1, score.PendingManual)
	assert.True(t, score.Passed)
}

func TestScoreAttempt_MultiChoiceNoPartialCredit(t *testing.T) {
	tests := []struct {
		name     string
		selected []uint
		earned   int
	}{
		{name: "exact set", selected: []uint{6, 5}, earned: 8},
		{name: "subset", selected: []uint{5}, earned: 0},
		{name: "superset", selected: []uint{5, 6, 7}, earned: 0},
		{name: "disjoint", selected: []uint{7, 8}, earned: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exam := scoringExam()
			attempt := &models.ExamAttempt{
				ID: 7, StudentID: "stu-1", IsCompleted: true,
				Answers: []models.StudentAnswer{choiceAnswer(t, 102, tc.selected...)},
			}

			score, err := ScoreAttempt(exam, attempt, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.earned, score.Sections[models.SectionReasoning].Score)
		})
	}
}

func TestScoreAttempt_UnansweredScoresZero(t *testing.T) {
	exam := scoringExam()
	attempt := &models.ExamAttempt{ID: 7, StudentID: "stu-1", IsCompleted: true}

	score, err := ScoreAttempt(exam, attempt, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, score.TotalScore)
	assert.False(t, score.Sections[models.SectionAptitude].Passed)
	assert.False(t, score.Passed)

	aptitude := score.Sections[models.SectionAptitude]
	require.Len(t, aptitude.Questions, 2)
	for _, qs := range aptitude.Questions {
		assert.False(t, qs.Answered)
		assert.Nil(t, qs.Correct)
		assert.Zero(t, qs.Earned)
	}
}

func TestScoreAttempt_PassingOverrides(t *testing.T) {
	exam := scoringExam()
	attempt := &models.ExamAttempt{
		ID: 7, StudentID: "stu-1", IsCompleted: true,
		Answers: []models.StudentAnswer{choiceAnswer(t, 100, 1)}, // 5 marks in aptitude
	}

	// Stored passing marks (10) would fail; the report override lowers
	// the bar to 5.
	score, err := ScoreAttempt(exam, attempt, map[models.SectionType]int{
		models.SectionAptitude:  5,
		models.SectionReasoning: 0,
	})
	require.NoError(t, err)

	assert.True(t, score.Sections[models.SectionAptitude].Passed)
	assert.Equal(t, 5, score.Sections[models.SectionAptitude].PassingMarks)
	assert.True(t, score.Sections[models.SectionReasoning].Passed)
}

func TestScoreAttempt_RejectsIncompleteAttempt(t *testing.T) {
	exam := scoringExam()
	attempt := &models.ExamAttempt{ID: 7, StudentID: "stu-1", IsCompleted: false}

	_, err := ScoreAttempt(exam, attempt, nil)
	assert.ErrorIs(t, err, ErrAttemptNotCompleted)
}

func TestScoreAttempt_WrongSingleChoiceSelection(t *testing.T) {
	exam := scoringExam()
	attempt := &models.ExamAttempt{
		ID: 7, StudentID: "stu-1", IsCompleted: true,
		Answers: []models.StudentAnswer{
			choiceAnswer(t, 100, 2),
			choiceAnswer(t, 101, 4),
		},
	}

	score, err := ScoreAttempt(exam, attempt, nil)
	require.NoError(t, err)

	aptitude := score.Sections[models.SectionAptitude]
	assert.Equal(t, 5, aptitude.Score)
	assert.False(t, aptitude.Passed)

	require.Len(t, aptitude.Questions, 2)
	require.NotNil(t, aptitude.Questions[0].Correct)
	assert.False(t, *aptitude.Questions[0].Correct)
	require.NotNil(t, aptitude.Questions[1].Correct)
	assert.True(t, *aptitude.Questions[1].Correct)
}
