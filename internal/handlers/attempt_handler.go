package handlers

import (
	"net/http"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/services"
	"github.com/examind/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService   services.AttemptService
	integrityService services.IntegrityService
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	integrityService services.IntegrityService,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:      NewBaseHandler(logger),
		attemptService:   attemptService,
		integrityService: integrityService,
	}
}

// StartAttempt starts an exam attempt for the authenticated student
// @Summary Start exam attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 201 {object} services.StartAttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /exams/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.Start(c.Request.Context(), &services.StartAttemptRequest{ExamID: examID}, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSectionQuestions returns the questions of the attempt's current section
// @Summary Get section questions
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param section_type path string true "Section type"
// @Success 200 {object} services.SectionQuestionsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /attempts/{id}/sections/{section_type}/questions [get]
func (h *AttemptHandler) GetSectionQuestions(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}
	sectionType := models.SectionType(c.Param("section_type"))

	resp, err := h.attemptService.GetSectionQuestions(c.Request.Context(), attemptID, sectionType, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitSection records the attempt's current section answers and advances
// @Summary Submit section answers
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param submission body services.SubmitSectionRequest true "Section answers"
// @Success 200 {object} services.SubmitSectionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /attempts/{id}/submit-section [post]
func (h *AttemptHandler) SubmitSection(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.SubmitSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.attemptService.SubmitSection(c.Request.Context(), attemptID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteAttempt finishes the attempt ahead of the deadline
// @Summary Complete exam attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.CompleteAttemptResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.Complete(c.Request.Context(), attemptID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordFocusLoss records a proctoring focus-loss event for the attempt
// @Summary Record focus loss event
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param event body services.FocusLossRequest true "Focus loss event"
// @Success 201 {object} services.FocusLossResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/focus-events [post]
func (h *AttemptHandler) RecordFocusLoss(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.FocusLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.integrityService.RecordFocusLoss(c.Request.Context(), attemptID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListFocusEvents lists the attempt's recorded focus-loss events
func (h *AttemptHandler) ListFocusEvents(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}

	events, err := h.integrityService.ListFocusEvents(c.Request.Context(), attemptID, requesterID, currentRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Focus events retrieved",
		Data:    events,
	})
}

// GetResult returns the scored outcome of a completed attempt
// @Summary Get attempt result
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/result [get]
func (h *AttemptHandler) GetResult(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.GetResult(c.Request.Context(), attemptID, requesterID, currentRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
