package handlers

import (
	"net/http"

	"github.com/examind/exam-service/internal/services"
	"github.com/examind/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GenerateReport aggregates the exam's attempts into a stored report
// @Summary Generate exam report
// @Tags reports
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param request body services.GenerateReportRequest true "Report parameters"
// @Success 201 {object} services.ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.reportService.Generate(c.Request.Context(), examID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetReport returns a previously generated report
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	resp, err := h.reportService.GetByID(c.Request.Context(), reportID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListReports lists the reports generated for an exam
func (h *ReportHandler) ListReports(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	reports, err := h.reportService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Reports retrieved",
		Data:    reports,
	})
}

// DownloadReport streams the report as an xlsx workbook
// @Summary Download exam report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Report ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/download [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	content, filename, err := h.reportService.Download(c.Request.Context(), reportID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
