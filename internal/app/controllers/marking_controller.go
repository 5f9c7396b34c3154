package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/middleware"
)

// MarkingController serves the JSON RPC endpoints used by the marking UI.
// Successful responses are flat objects rather than the APIResponse envelope.
type MarkingController struct {
	markingService services.MarkingService
	websiteService services.WebsiteService
	logger         zerolog.Logger
}

// NewMarkingController creates a new MarkingController
func NewMarkingController(markingService services.MarkingService, websiteService services.WebsiteService, logger zerolog.Logger) *MarkingController {
	return &MarkingController{
		markingService: markingService,
		websiteService: websiteService,
		logger:         logger,
	}
}

// MarkWork marks a piece of student work
// @Summary Mark student work
// @Description Runs the marking engine against the assessment brief and rubric and stores the mark, criteria marks and feedback
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkWorkRequest true "Work to mark"
// @Success 200 {object} dto.MarkWorkResponse "Work marked"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "AI marking disabled or not the owner"
// @Failure 404 {object} dto.ErrorResponse "Work, brief or rubric not found"
// @Failure 409 {object} dto.ErrorResponse "Work already marked"
// @Failure 500 {object} dto.ErrorResponse "Marking failed"
// @Router /api/mark-work [post]
func (c *MarkingController) MarkWork(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.MarkWorkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.markingService.MarkWork(ctx.Request.Context(), actor, req.WorkID)
	if err != nil {
		c.logger.Warn().Err(err).Int64("workID", req.WorkID).Msg("Marking failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// ProcessBrief analyses a stored assessment brief
// @Summary Process brief
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProcessBriefRequest true "Brief"
// @Success 200 {object} dto.BriefAnalysisResponse "Brief analysis"
// @Failure 404 {object} dto.ErrorResponse "Brief not found"
// @Router /api/process-brief [post]
func (c *MarkingController) ProcessBrief(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ProcessBriefRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	analysis, err := c.markingService.ProcessBrief(ctx.Request.Context(), actor, req.BriefID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.BriefAnalysisResponse{Success: true, Analysis: analysis})
}

// ProcessRubric analyses a stored rubric
// @Summary Process rubric
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProcessRubricRequest true "Rubric"
// @Success 200 {object} dto.RubricAnalysisResponse "Rubric analysis"
// @Failure 404 {object} dto.ErrorResponse "Rubric not found"
// @Router /api/process-rubric [post]
func (c *MarkingController) ProcessRubric(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ProcessRubricRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	analysis, err := c.markingService.ProcessRubric(ctx.Request.Context(), actor, req.RubricID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.RubricAnalysisResponse{Success: true, Analysis: analysis})
}

// GenerateAnalytics builds and stores analytics over an assessment's marked work
// @Summary Generate analytics
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateAnalyticsRequest true "Assessment"
// @Success 200 {object} dto.AnalyticsResponse "Analytics"
// @Failure 404 {object} dto.ErrorResponse "No marked student work found for this assessment"
// @Router /api/generate-analytics [post]
func (c *MarkingController) GenerateAnalytics(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.GenerateAnalyticsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.markingService.GenerateAnalytics(ctx.Request.Context(), actor, req.AssessmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GenerateRecommendations derives teaching recommendations from stored analytics
// @Summary Generate recommendations
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateRecommendationsRequest true "Analytics"
// @Success 200 {object} dto.RecommendationsResponse "Recommendations"
// @Failure 404 {object} dto.ErrorResponse "Analytics not found"
// @Router /api/generate-recommendations [post]
func (c *MarkingController) GenerateRecommendations(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.GenerateRecommendationsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.markingService.GenerateRecommendations(ctx.Request.Context(), actor, req.AnalyticsID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// ExtractURLs lists the URLs cited in a text
// @Summary Extract URLs
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExtractURLsRequest true "Text"
// @Success 200 {object} dto.ExtractURLsResponse "URLs"
// @Failure 400 {object} dto.ErrorResponse "Missing text"
// @Router /api/extract-urls [post]
func (c *MarkingController) ExtractURLs(ctx *gin.Context) {
	var req dto.ExtractURLsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	urls := c.markingService.ExtractURLs(req.Text)
	ctx.JSON(http.StatusOK, dto.ExtractURLsResponse{Success: true, URLs: urls, Count: len(urls)})
}

// AnalyzeURL fetches a URL and describes its content
// @Summary Analyze URL
// @Description Failed fetches are reported inside the analysis with status "failed"
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AnalyzeURLRequest true "URL"
// @Success 200 {object} dto.AnalyzeURLResponse "Analysis"
// @Failure 400 {object} dto.ErrorResponse "Invalid URL"
// @Router /api/analyze-url [post]
func (c *MarkingController) AnalyzeURL(ctx *gin.Context) {
	var req dto.AnalyzeURLRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	analysis := c.markingService.AnalyzeURL(ctx.Request.Context(), req.URL)
	ctx.JSON(http.StatusOK, dto.AnalyzeURLResponse{Success: true, Analysis: analysis})
}

// SaveSection stores new content for a website section
// @Summary Save section content
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveSectionRequest true "Section content"
// @Success 200 {object} dto.SaveSectionResponse "Section saved"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /api/save-section [post]
func (c *MarkingController) SaveSection(ctx *gin.Context) {
	var req dto.SaveSectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.websiteService.SaveSectionContent(ctx.Request.Context(), req.SectionID, req.Content); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SaveSectionResponse{Success: true, SectionID: req.SectionID})
}

// SaveLayout stores the arrangement of a page layout
// @Summary Save layout
// @Tags marking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveLayoutRequest true "Layout sections"
// @Success 200 {object} dto.SaveLayoutResponse "Layout saved"
// @Failure 400 {object} dto.ErrorResponse "Sections must be a JSON array"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Layout not found"
// @Router /api/save-layout [post]
func (c *MarkingController) SaveLayout(ctx *gin.Context) {
	var req dto.SaveLayoutRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.websiteService.SaveLayout(ctx.Request.Context(), req.LayoutID, req.Sections); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SaveLayoutResponse{Success: true, LayoutID: req.LayoutID})
}
