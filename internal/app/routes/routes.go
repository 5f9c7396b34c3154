package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/controllers"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/middleware"
	"github.com/yigit/assessai/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	catalogController *controllers.CatalogController,
	assessmentController *controllers.AssessmentController,
	markingController *controllers.MarkingController,
	dashboardController *controllers.DashboardController,
	userController *controllers.UserController,
	websiteController *controllers.WebsiteController,
	settingsController *controllers.SettingsController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ActiveAccountRequired())
	{
		profile := authenticated.Group("/auth")
		{
			profile.GET("/profile", authController.GetProfile)
			profile.PUT("/profile", authController.UpdateProfile)
			profile.POST("/change-password", authController.ChangePassword)
		}

		authenticated.GET("/dashboard", dashboardController.Teacher)

		categories := authenticated.Group("/categories")
		{
			categories.GET("", catalogController.ListCategories)
			categories.POST("", catalogController.CreateCategory)
			categories.GET("/:id", catalogController.GetCategory)
			categories.PUT("/:id", catalogController.UpdateCategory)
			categories.DELETE("/:id", catalogController.DeleteCategory)
		}

		modules := authenticated.Group("/modules")
		{
			modules.GET("", catalogController.ListModules)
			modules.POST("", catalogController.CreateModule)
			modules.GET("/:id", catalogController.GetModule)
			modules.PUT("/:id", catalogController.UpdateModule)
			modules.DELETE("/:id", catalogController.DeleteModule)
		}

		assessments := authenticated.Group("/assessments")
		{
			assessments.GET("", assessmentController.ListAssessments)
			assessments.POST("", assessmentController.CreateAssessment)
			assessments.GET("/:id", assessmentController.GetAssessment)
			assessments.PUT("/:id", assessmentController.UpdateAssessment)
			assessments.DELETE("/:id", assessmentController.DeleteAssessment)

			assessments.GET("/:id/rubric", assessmentController.GetRubric)
			assessments.POST("/:id/rubric", assessmentController.SaveRubric)

			assessments.GET("/:id/works", assessmentController.ListWorks)
			assessments.POST("/:id/works", assessmentController.UploadWork)
			assessments.GET("/:id/works/:workId", assessmentController.GetWork)

			assessments.GET("/:id/analytics", assessmentController.GetAnalytics)
			assessments.GET("/:id/recommendations", assessmentController.ListRecommendations)
		}

		authenticated.PUT("/marks/:markId/verify", assessmentController.VerifyMark)

		// JSON RPC endpoints used by the marking UI
		rpc := authenticated.Group("/api")
		{
			rpc.POST("/mark-work", markingController.MarkWork)
			rpc.POST("/process-brief", markingController.ProcessBrief)
			rpc.POST("/process-rubric", markingController.ProcessRubric)
			rpc.POST("/generate-analytics", markingController.GenerateAnalytics)
			rpc.POST("/generate-recommendations", markingController.GenerateRecommendations)
			rpc.POST("/extract-urls", markingController.ExtractURLs)
			rpc.POST("/analyze-url", markingController.AnalyzeURL)

			rpcAdmin := rpc.Group("")
			rpcAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				rpcAdmin.POST("/save-section", markingController.SaveSection)
				rpcAdmin.POST("/save-layout", markingController.SaveLayout)
			}
		}

		authenticated.GET("/ws/marking", wsHandler.HandleConnection)

		// --- Admin routes ---
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/dashboard", dashboardController.Admin)

			users := admin.Group("/users")
			{
				users.GET("", userController.ListUsers)
				users.POST("", userController.CreateUser)
				users.GET("/:id", userController.GetUserByID)
				users.PUT("/:id", userController.UpdateUser)
			}

			website := admin.Group("/website")
			{
				website.GET("", websiteController.Overview)

				website.GET("/sections", websiteController.ListSections)
				website.POST("/sections", websiteController.CreateSection)
				website.GET("/sections/:id", websiteController.GetSection)
				website.PUT("/sections/:id", websiteController.UpdateSection)
				website.DELETE("/sections/:id", websiteController.DeleteSection)

				website.GET("/templates", websiteController.ListTemplates)
				website.POST("/templates", websiteController.CreateTemplate)
				website.GET("/templates/:id", websiteController.GetTemplate)
				website.PUT("/templates/:id", websiteController.UpdateTemplate)
				website.DELETE("/templates/:id", websiteController.DeleteTemplate)

				website.GET("/layouts", websiteController.ListLayouts)
				website.POST("/layouts", websiteController.CreateLayout)
				website.GET("/layouts/:id", websiteController.GetLayout)
				website.PUT("/layouts/:id", websiteController.UpdateLayout)
				website.DELETE("/layouts/:id", websiteController.DeleteLayout)
			}

			admin.GET("/settings", settingsController.GetSettings)
			admin.PUT("/settings", settingsController.UpdateSettings)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
