package handlers

import (
	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/services"
	"github.com/examind/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler    *ExamHandler
	attemptHandler *AttemptHandler
	reportHandler  *ReportHandler
	jwtSecret      string
}

func NewHandlerManager(
	examService services.ExamService,
	attemptService services.AttemptService,
	integrityService services.IntegrityService,
	reportService services.ReportService,
	logger utils.Logger,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		examHandler:    NewExamHandler(examService, logger),
		attemptHandler: NewAttemptHandler(attemptService, integrityService, logger),
		reportHandler:  NewReportHandler(reportService, logger),
		jwtSecret:      jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.jwtSecret))
	{
		exams := v1.Group("/exams")
		{
			exams.GET("/available", hm.examHandler.ListAvailableExams)
			exams.GET("/:id", hm.examHandler.GetExam)

			// Attempt lifecycle starts against an exam
			exams.POST("/:id/attempts", hm.attemptHandler.StartAttempt)

			// Authoring and reporting are admin surface
			admin := exams.Group("", RequireRole(models.RoleAdmin))
			{
				admin.POST("", hm.examHandler.CreateExam)
				admin.GET("", hm.examHandler.ListExams)
				admin.POST("/:id/sections/:section_type/questions", hm.examHandler.AddQuestions)
				admin.POST("/:id/reports", hm.reportHandler.GenerateReport)
				admin.GET("/:id/reports", hm.reportHandler.ListReports)
			}
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id/sections/:section_type/questions", hm.attemptHandler.GetSectionQuestions)
			attempts.POST("/:id/submit-section", hm.attemptHandler.SubmitSection)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
			attempts.GET("/:id/result", hm.attemptHandler.GetResult)
			attempts.POST("/:id/focus-events", hm.attemptHandler.RecordFocusLoss)
			attempts.GET("/:id/focus-events", hm.attemptHandler.ListFocusEvents)
		}

		reports := v1.Group("/reports", RequireRole(models.RoleAdmin))
		{
			reports.GET("/:id", hm.reportHandler.GetReport)
			reports.GET("/:id/download", hm.reportHandler.DownloadReport)
		}
	}
}
