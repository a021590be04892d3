package render

import (
	"fmt"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/services"
	"github.com/xuri/excelize/v2"
)

// ExcelRenderer writes a generated report as an xlsx workbook with a
// results sheet and a summary sheet.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

func (r *ExcelRenderer) Render(report *services.ReportResponse) ([]byte, string, error) {
	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Student Name", "Branch", "Academic Year"}
	for _, sectionType := range models.SectionOrder {
		headers = append(headers, fmt.Sprintf("%s Score", sectionType), fmt.Sprintf("%s Result", sectionType))
	}
	headers = append(headers, "Total Score", "Pending Manual", "Result")

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, result := range report.Rows {
		row := []interface{}{
			result.StudentID,
			result.FullName,
			result.Branch,
			result.AcademicYear,
		}
		for _, sectionType := range models.SectionOrder {
			row = append(row, result.SectionScores[sectionType], passLabel(result.SectionPassed[sectionType]))
		}
		row = append(row, result.TotalScore, result.PendingManual, passLabel(result.Passed))

		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	if err := r.writeSummary(f, report); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("exam_%d_report_%d.xlsx", report.ExamID, report.ReportID)
	return buf.Bytes(), filename, nil
}

func (r *ExcelRenderer) writeSummary(f *excelize.File, report *services.ReportResponse) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Exam", report.ExamTitle},
		{"Generated By", report.GeneratedBy},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Students", report.TotalStudents},
		{"Passed", report.PassedCount},
		{"Failed", report.FailedCount},
		{"Incomplete", report.IncompleteCount},
	}
	for _, sectionType := range models.SectionOrder {
		if marks, ok := report.PassingCriteria[sectionType]; ok {
			rows = append(rows, []interface{}{fmt.Sprintf("%s Passing Marks", sectionType), marks})
		}
	}
	if report.Statistics != nil {
		rows = append(rows,
			[]interface{}{"Average Score", report.Statistics.AverageScore},
			[]interface{}{"Highest Score", report.Statistics.HighestScore},
			[]interface{}{"Lowest Score", report.Statistics.LowestScore},
			[]interface{}{"Pass Rate (%)", report.Statistics.PassRate},
		)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return fmt.Errorf("failed to build summary cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func passLabel(passed bool) string {
	if passed {
		return "Pass"
	}
	return "Fail"
}
