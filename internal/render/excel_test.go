package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelRenderer_Render(t *testing.T) {
	report := &services.ReportResponse{
		ReportID:    42,
		ExamID:      7,
		ExamTitle:   "Campus Placement Screening",
		GeneratedBy: "admin-1",
		GeneratedAt: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
		PassingCriteria: map[models.SectionType]int{
			models.SectionAptitude:  10,
			models.SectionReasoning: 8,
			models.SectionCoding:    0,
		},
		TotalStudents:   3,
		PassedCount:     1,
		FailedCount:     1,
		IncompleteCount: 1,
		Rows: []models.StudentResult{
			{
				StudentID: "s1", FullName: "Asha Rao", Branch: "CSE",
				SectionScores: map[models.SectionType]int{models.SectionAptitude: 10, models.SectionReasoning: 8, models.SectionCoding: 0},
				SectionPassed: map[models.SectionType]bool{models.SectionAptitude: true, models.SectionReasoning: true, models.SectionCoding: true},
				TotalScore:    18, PendingManual: 1, Passed: true,
			},
			{
				StudentID: "s2", FullName: "Dev Mehta", Branch: "ECE",
				SectionScores: map[models.SectionType]int{models.SectionAptitude: 5},
				SectionPassed: map[models.SectionType]bool{},
				TotalScore:    5, Passed: false,
			},
		},
		Statistics: &models.ReportStatistics{AverageScore: 11.5, HighestScore: 18, LowestScore: 5, PassRate: 50},
	}

	content, filename, err := NewExcelRenderer().Render(report)
	require.NoError(t, err)
	assert.Equal(t, "exam_7_report_42.xlsx", filename)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Student ID", header)

	firstStudent, err := f.GetCellValue("Results", "A2")
	require.NoError(t, err)
	assert.Equal(t, "s1", firstStudent)

	firstResult, err := f.GetCellValue("Results", "M2")
	require.NoError(t, err)
	assert.Equal(t, "Pass", firstResult)

	secondResult, err := f.GetCellValue("Results", "M3")
	require.NoError(t, err)
	assert.Equal(t, "Fail", secondResult)

	summaryTitle, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Campus Placement Screening", summaryTitle)
}
