package handlers

import (
	"net/http"
	"strconv"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"github.com/examind/exam-service/internal/services"
	"github.com/examind/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// CreateExam creates an exam with its sections
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

// AddQuestions appends questions to one of the exam's sections
// @Summary Add questions to a section
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param section_type path string true "Section type"
// @Param questions body services.AddQuestionsRequest true "Questions"
// @Success 201 {object} models.Section
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams/{id}/sections/{section_type}/questions [post]
func (h *ExamHandler) AddQuestions(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sectionType := models.SectionType(c.Param("section_type"))

	var req services.AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	section, err := h.examService.AddQuestions(c.Request.Context(), examID, sectionType, &req, userID, currentRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// GetExam returns the exam with its sections and questions
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// ListExams lists exams with paging and filters
func (h *ExamHandler) ListExams(c *gin.Context) {
	filters := repositories.ExamFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}
	if isActive := c.Query("is_active"); isActive != "" {
		active := isActive == "true"
		filters.IsActive = &active
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	resp, err := h.examService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAvailableExams lists exams a student can currently sit
// @Summary List available exams
// @Tags exams
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.ExamSummary}
// @Router /exams/available [get]
func (h *ExamHandler) ListAvailableExams(c *gin.Context) {
	summaries, err := h.examService.ListAvailable(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Available exams retrieved",
		Data:    summaries,
	})
}
