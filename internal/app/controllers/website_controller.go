package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/middleware"
)

// WebsiteController manages website sections, templates and page layouts
type WebsiteController struct {
	websiteService services.WebsiteService
}

// NewWebsiteController creates a new WebsiteController
func NewWebsiteController(websiteService services.WebsiteService) *WebsiteController {
	return &WebsiteController{
		websiteService: websiteService,
	}
}

// Overview returns the counts and lists of sections, templates and layouts
// @Summary Website overview
// @Tags website
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.WebsiteOverviewResponse} "Overview"
// @Router /admin/website [get]
func (c *WebsiteController) Overview(ctx *gin.Context) {
	overview, err := c.websiteService.Overview(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(overview))
}

// ListSections lists sections by display order
// @Summary List sections
// @Tags website
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.WebsiteSection} "Sections"
// @Router /admin/website/sections [get]
func (c *WebsiteController) ListSections(ctx *gin.Context) {
	sections, err := c.websiteService.ListSections(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sections))
}

// GetSection returns one section
// @Summary Get section
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.WebsiteSection} "Section"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /admin/website/sections/{id} [get]
func (c *WebsiteController) GetSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Section")
	if !ok {
		return
	}

	section, err := c.websiteService.GetSection(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(section))
}

// CreateSection creates a section
// @Summary Create section
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SectionRequest true "Section"
// @Success 201 {object} dto.APIResponse{data=models.WebsiteSection} "Section created"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /admin/website/sections [post]
func (c *WebsiteController) CreateSection(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.SectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.websiteService.CreateSection(ctx.Request.Context(), actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(section))
}

// UpdateSection updates a section
// @Summary Update section
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID" Format(int64) minimum(1)
// @Param request body dto.SectionRequest true "Section"
// @Success 200 {object} dto.APIResponse{data=models.WebsiteSection} "Section updated"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /admin/website/sections/{id} [put]
func (c *WebsiteController) UpdateSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Section")
	if !ok {
		return
	}

	var req dto.SectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.websiteService.UpdateSection(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(section))
}

// DeleteSection deletes a section
// @Summary Delete section
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Section deleted"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /admin/website/sections/{id} [delete]
func (c *WebsiteController) DeleteSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Section")
	if !ok {
		return
	}

	if err := c.websiteService.DeleteSection(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Section deleted successfully"))
}

// ListTemplates lists templates
// @Summary List templates
// @Tags website
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Template} "Templates"
// @Router /admin/website/templates [get]
func (c *WebsiteController) ListTemplates(ctx *gin.Context) {
	templates, err := c.websiteService.ListTemplates(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(templates))
}

// GetTemplate returns one template
// @Summary Get template
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Template} "Template"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Router /admin/website/templates/{id} [get]
func (c *WebsiteController) GetTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Template")
	if !ok {
		return
	}

	template, err := c.websiteService.GetTemplate(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(template))
}

// CreateTemplate creates a template
// @Summary Create template
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TemplateRequest true "Template"
// @Success 201 {object} dto.APIResponse{data=models.Template} "Template created"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /admin/website/templates [post]
func (c *WebsiteController) CreateTemplate(ctx *gin.Context) {
	var req dto.TemplateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	template, err := c.websiteService.CreateTemplate(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(template))
}

// UpdateTemplate updates a template
// @Summary Update template
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID" Format(int64) minimum(1)
// @Param request body dto.TemplateRequest true "Template"
// @Success 200 {object} dto.APIResponse{data=models.Template} "Template updated"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Router /admin/website/templates/{id} [put]
func (c *WebsiteController) UpdateTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Template")
	if !ok {
		return
	}

	var req dto.TemplateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	template, err := c.websiteService.UpdateTemplate(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(template))
}

// DeleteTemplate deletes a template
// @Summary Delete template
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Template deleted"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Router /admin/website/templates/{id} [delete]
func (c *WebsiteController) DeleteTemplate(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Template")
	if !ok {
		return
	}

	if err := c.websiteService.DeleteTemplate(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Template deleted successfully"))
}

// ListLayouts lists page layouts
// @Summary List layouts
// @Tags website
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.PageLayout} "Layouts"
// @Router /admin/website/layouts [get]
func (c *WebsiteController) ListLayouts(ctx *gin.Context) {
	layouts, err := c.websiteService.ListLayouts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(layouts))
}

// GetLayout returns one page layout
// @Summary Get layout
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Layout ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.PageLayout} "Layout"
// @Failure 404 {object} dto.ErrorResponse "Layout not found"
// @Router /admin/website/layouts/{id} [get]
func (c *WebsiteController) GetLayout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Layout")
	if !ok {
		return
	}

	layout, err := c.websiteService.GetLayout(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(layout))
}

// CreateLayout creates a page layout
// @Summary Create layout
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LayoutRequest true "Layout"
// @Success 201 {object} dto.APIResponse{data=models.PageLayout} "Layout created"
// @Failure 400 {object} dto.ErrorResponse "Sections must be a JSON array"
// @Router /admin/website/layouts [post]
func (c *WebsiteController) CreateLayout(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.LayoutRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	layout, err := c.websiteService.CreateLayout(ctx.Request.Context(), actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(layout))
}

// UpdateLayout updates a page layout
// @Summary Update layout
// @Tags website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Layout ID" Format(int64) minimum(1)
// @Param request body dto.LayoutRequest true "Layout"
// @Success 200 {object} dto.APIResponse{data=models.PageLayout} "Layout updated"
// @Failure 400 {object} dto.ErrorResponse "Sections must be a JSON array"
// @Failure 404 {object} dto.ErrorResponse "Layout not found"
// @Router /admin/website/layouts/{id} [put]
func (c *WebsiteController) UpdateLayout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Layout")
	if !ok {
		return
	}

	var req dto.LayoutRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	layout, err := c.websiteService.UpdateLayout(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(layout))
}

// DeleteLayout deletes a page layout
// @Summary Delete layout
// @Tags website
// @Produce json
// @Security BearerAuth
// @Param id path int true "Layout ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Layout deleted"
// @Failure 404 {object} dto.ErrorResponse "Layout not found"
// @Router /admin/website/layouts/{id} [delete]
func (c *WebsiteController) DeleteLayout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Layout")
	if !ok {
		return
	}

	if err := c.websiteService.DeleteLayout(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Layout deleted successfully"))
}
