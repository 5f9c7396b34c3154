package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/middleware"
)

// AssessmentController handles assessment briefs, rubrics, student work and marks
type AssessmentController struct {
	assessmentService services.AssessmentService
	logger            zerolog.Logger
}

// NewAssessmentController creates a new AssessmentController
func NewAssessmentController(assessmentService services.AssessmentService, logger zerolog.Logger) *AssessmentController {
	return &AssessmentController{
		assessmentService: assessmentService,
		logger:            logger,
	}
}

// ListAssessments lists the assessments in the caller's modules
// @Summary List assessments
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.AssessmentBrief} "Assessments"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	assessments, err := c.assessmentService.ListAssessments(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assessments))
}

// CreateAssessment creates an assessment from an uploaded brief
// @Summary Create assessment
// @Tags assessments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param module_id formData int true "Module ID"
// @Param brief_file formData file true "Assessment brief"
// @Success 201 {object} dto.APIResponse{data=models.AssessmentBrief} "Assessment created"
// @Failure 400 {object} dto.ErrorResponse "Validation error, missing file or file type not allowed"
// @Failure 403 {object} dto.ErrorResponse "Module not owned by the caller"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateAssessmentRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}

	assessment, err := c.assessmentService.CreateAssessment(ctx.Request.Context(), actor, &req, formFile(ctx, "brief_file"))
	if err != nil {
		c.logger.Warn().Err(err).Int64("moduleID", req.ModuleID).Msg("Failed to create assessment")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(assessment))
}

// GetAssessment returns an assessment with its works and status counts
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.AssessmentDetailResponse} "Assessment"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	detail, err := c.assessmentService.GetAssessment(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// UpdateAssessment updates title, description and active flag
// @Summary Update assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Param request body dto.UpdateAssessmentRequest true "Assessment"
// @Success 200 {object} dto.APIResponse{data=models.AssessmentBrief} "Assessment updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	var req dto.UpdateAssessmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	assessment, err := c.assessmentService.UpdateAssessment(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assessment))
}

// DeleteAssessment deletes an assessment and its stored files
// @Summary Delete assessment
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Assessment deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	if err := c.assessmentService.DeleteAssessment(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("assessmentID", id).Int64("userID", actor.UserID).Msg("Assessment deleted")
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Assessment deleted successfully"))
}

// GetRubric returns the rubric of an assessment with its criteria
// @Summary Get rubric
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Rubric} "Rubric"
// @Failure 404 {object} dto.ErrorResponse "Rubric not found for this assessment"
// @Router /assessments/{id}/rubric [get]
func (c *AssessmentController) GetRubric(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	rubric, err := c.assessmentService.GetRubric(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rubric))
}

// SaveRubric uploads or replaces the rubric of an assessment
// @Summary Upload rubric
// @Description Stores the rubric file and extracts its criteria. When the file cannot be read the rubric is saved with a warning.
// @Tags assessments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param rubric_file formData file true "Rubric"
// @Success 200 {object} dto.APIResponse{data=dto.RubricResponse} "Rubric saved"
// @Failure 400 {object} dto.ErrorResponse "Validation error, missing file or file type not allowed"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id}/rubric [post]
func (c *AssessmentController) SaveRubric(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	var req dto.RubricUploadRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}

	resp, err := c.assessmentService.SaveRubric(ctx.Request.Context(), actor, id, &req, formFile(ctx, "rubric_file"))
	if err != nil {
		c.logger.Warn().Err(err).Int64("assessmentID", id).Msg("Failed to save rubric")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListWorks lists the student work of an assessment, newest first
// @Summary List student work
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.StudentWork} "Works"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id}/works [get]
func (c *AssessmentController) ListWorks(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	works, err := c.assessmentService.ListWorks(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(works))
}

// UploadWork uploads a piece of student work, optionally queueing it for marking
// @Summary Upload student work
// @Tags assessments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Param student_name formData string true "Student name"
// @Param student_id formData string true "Student ID"
// @Param auto_mark formData string false "Queue for marking (yes/true/on/1)"
// @Param work_file formData file true "Submission"
// @Success 201 {object} dto.APIResponse{data=dto.UploadWorkResponse} "Work uploaded"
// @Failure 400 {object} dto.ErrorResponse "Validation error, missing file or file type not allowed"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id}/works [post]
func (c *AssessmentController) UploadWork(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	var req dto.UploadWorkRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}

	resp, err := c.assessmentService.UploadWork(ctx.Request.Context(), actor, id, &req, formFile(ctx, "work_file"))
	if err != nil {
		c.logger.Warn().Err(err).Int64("assessmentID", id).Msg("Failed to upload student work")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// GetWork returns a work with its mark, criteria marks and feedback
// @Summary Get student work
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Param workId path int true "Work ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.WorkDetailResponse} "Work"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Work not found"
// @Router /assessments/{id}/works/{workId} [get]
func (c *AssessmentController) GetWork(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}
	workID, ok := parseIDParam(ctx, "workId", "Work")
	if !ok {
		return
	}

	detail, err := c.assessmentService.GetWork(ctx.Request.Context(), actor, id, workID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// GetAnalytics returns the latest analytics of an assessment
// @Summary Get analytics
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.AnalyticsData} "Analytics"
// @Failure 404 {object} dto.ErrorResponse "No analytics generated yet"
// @Router /assessments/{id}/analytics [get]
func (c *AssessmentController) GetAnalytics(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	analytics, err := c.assessmentService.GetAnalytics(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(analytics))
}

// ListRecommendations lists the stored recommendations of an assessment
// @Summary List recommendations
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Recommendation} "Recommendations"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id}/recommendations [get]
func (c *AssessmentController) ListRecommendations(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Assessment")
	if !ok {
		return
	}

	recommendations, err := c.assessmentService.ListRecommendations(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(recommendations))
}

// VerifyMark records a teacher's verification of an AI mark
// @Summary Verify mark
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param markId path int true "Mark ID" Format(int64) minimum(1)
// @Param request body dto.VerifyMarkRequest true "Verification"
// @Success 200 {object} dto.APIResponse{data=models.Mark} "Mark verified"
// @Failure 400 {object} dto.ErrorResponse "Score out of range"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Mark not found"
// @Router /marks/{markId}/verify [put]
func (c *AssessmentController) VerifyMark(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	markID, ok := parseIDParam(ctx, "markId", "Mark")
	if !ok {
		return
	}

	var req dto.VerifyMarkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark, err := c.assessmentService.VerifyMark(ctx.Request.Context(), actor, markID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(mark))
}
