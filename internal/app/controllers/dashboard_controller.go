package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/middleware"
)

// DashboardController serves the teacher and admin dashboards
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// Teacher returns the dashboard of the current teacher
// @Summary Teacher dashboard
// @Description Recent assessments, submissions and recommendations plus catalog and marking counts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TeacherDashboardResponse} "Dashboard"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /dashboard [get]
func (c *DashboardController) Teacher(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.Teacher(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard))
}

// Admin returns system wide counts and the most recent users
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse} "Dashboard"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/dashboard [get]
func (c *DashboardController) Admin(ctx *gin.Context) {
	dashboard, err := c.dashboardService.Admin(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard))
}
