package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	companyHandler    *CompanyHandler
	topicHandler      *TopicHandler
	fileHandler       *FileHandler
	assessmentHandler *AssessmentHandler
	attemptHandler    *AttemptHandler
	authMiddleware    *AuthMiddleware
	health            func(ctx context.Context) error
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *AuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		companyHandler:    NewCompanyHandler(serviceManager.Company(), logger),
		topicHandler:      NewTopicHandler(serviceManager.Topic(), logger),
		fileHandler:       NewFileHandler(serviceManager.File(), logger),
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), serviceManager.Stats(), serviceManager.Export(), logger),
		attemptHandler:    NewAttemptHandler(serviceManager.Attempt(), serviceManager.Stats(), logger),
		authMiddleware:    authMiddleware,
		health:            serviceManager.HealthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.GET("/me", hm.authMiddleware.RequireAuth(), hm.authHandler.Me)
		auth.POST("/upload-resume", hm.authMiddleware.RequireAuth(), hm.authHandler.UploadResume)
	}

	protected := api.Group("")
	protected.Use(hm.authMiddleware.RequireAuth())
	{
		companies := protected.Group("/companies")
		{
			companies.POST("", hm.companyHandler.CreateCompany)
			companies.GET("", hm.companyHandler.ListCompanies)
			companies.GET("/:id", hm.companyHandler.GetCompany)
			companies.DELETE("/:id", hm.companyHandler.DeleteCompany)
		}

		topics := protected.Group("/topics")
		{
			topics.POST("", hm.topicHandler.CreateTopic)
			topics.GET("/company/:companyId", hm.topicHandler.ListTopicsByCompany)
			topics.GET("/:id", hm.topicHandler.GetTopic)
			topics.DELETE("/:id", hm.topicHandler.DeleteTopic)
		}

		files := protected.Group("/files")
		{
			files.POST("", hm.fileHandler.UploadFile)
			files.GET("/topic/:topicId", hm.fileHandler.ListFilesByTopic)
			files.GET("/:id/download", hm.fileHandler.DownloadFile)
			files.DELETE("/:id", hm.fileHandler.DeleteFile)
		}

		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

		assessments := protected.Group("/assessments")
		{
			// Attempt routes share the prefix and must not be shadowed by /:id
			attempts := assessments.Group("/attempts")
			{
				attempts.GET("/my-attempts", hm.attemptHandler.ListMyAttempts)
				attempts.GET("/my-stats", hm.attemptHandler.GetMyStats)
				attempts.GET("/:id", hm.attemptHandler.GetAttempt)
				attempts.POST("/:id/abandon", hm.attemptHandler.AbandonAttempt)
			}

			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/admin/all", adminOnly, hm.assessmentHandler.ListAllAssessments)
			assessments.POST("", adminOnly, hm.assessmentHandler.CreateAssessment)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.PUT("/:id", adminOnly, hm.assessmentHandler.UpdateAssessment)
			assessments.DELETE("/:id", adminOnly, hm.assessmentHandler.DeleteAssessment)

			assessments.POST("/:id/start", hm.attemptHandler.StartAttempt)
			assessments.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)

			assessments.GET("/:id/stats", adminOnly, hm.assessmentHandler.GetAssessmentStats)
			assessments.GET("/:id/results/export", adminOnly, hm.assessmentHandler.ExportResults)
		}
	}

	router.GET("/health", hm.HealthCheck)
}

// HealthCheck reports database reachability
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "adaptive-learning-platform",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "adaptive-learning-platform",
	})
}
