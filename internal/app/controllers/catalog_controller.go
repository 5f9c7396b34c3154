package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/middleware"
)

// CatalogController handles categories and modules owned by teachers
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListCategories lists the caller's categories
// @Summary List categories
// @Description Lists the categories created by the current user, ordered by name
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Category} "Categories"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /categories [get]
func (c *CatalogController) ListCategories(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	categories, err := c.catalogService.ListCategories(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(categories))
}

// CreateCategory creates a category
// @Summary Create category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CategoryRequest true "Category"
// @Success 201 {object} dto.APIResponse{data=models.Category} "Category created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /categories [post]
func (c *CatalogController) CreateCategory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	category, err := c.catalogService.CreateCategory(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(category))
}

// GetCategory returns one category
// @Summary Get category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Category} "Category"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Router /categories/{id} [get]
func (c *CatalogController) GetCategory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Category")
	if !ok {
		return
	}

	category, err := c.catalogService.GetCategory(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(category))
}

// UpdateCategory updates a category
// @Summary Update category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID" Format(int64) minimum(1)
// @Param request body dto.CategoryRequest true "Category"
// @Success 200 {object} dto.APIResponse{data=models.Category} "Category updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Router /categories/{id} [put]
func (c *CatalogController) UpdateCategory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Category")
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	category, err := c.catalogService.UpdateCategory(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(category))
}

// DeleteCategory deletes a category together with its modules and assessments
// @Summary Delete category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Category deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Router /categories/{id} [delete]
func (c *CatalogController) DeleteCategory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Category")
	if !ok {
		return
	}

	if err := c.catalogService.DeleteCategory(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Category deleted successfully"))
}

// ListModules lists the caller's modules
// @Summary List modules
// @Description Lists the modules created by the current user, optionally filtered by category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param categoryId query int false "Category filter"
// @Success 200 {object} dto.APIResponse{data=[]models.Module} "Modules"
// @Failure 400 {object} dto.ErrorResponse "Invalid category filter"
// @Router /modules [get]
func (c *CatalogController) ListModules(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var categoryID *int64
	if raw := ctx.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid category ID").WithField("categoryId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		categoryID = &id
	}

	modules, err := c.catalogService.ListModules(ctx.Request.Context(), actor, categoryID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(modules))
}

// CreateModule creates a module in one of the caller's categories
// @Summary Create module
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ModuleRequest true "Module"
// @Success 201 {object} dto.APIResponse{data=models.Module} "Module created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or category"
// @Router /modules [post]
func (c *CatalogController) CreateModule(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ModuleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	module, err := c.catalogService.CreateModule(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(module))
}

// GetModule returns one module
// @Summary Get module
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Module} "Module"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /modules/{id} [get]
func (c *CatalogController) GetModule(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Module")
	if !ok {
		return
	}

	module, err := c.catalogService.GetModule(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(module))
}

// UpdateModule updates a module
// @Summary Update module
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID" Format(int64) minimum(1)
// @Param request body dto.ModuleRequest true "Module"
// @Success 200 {object} dto.APIResponse{data=models.Module} "Module updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or category"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /modules/{id} [put]
func (c *CatalogController) UpdateModule(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Module")
	if !ok {
		return
	}

	var req dto.ModuleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	module, err := c.catalogService.UpdateModule(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(module))
}

// DeleteModule deletes a module and its assessments
// @Summary Delete module
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Module deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /modules/{id} [delete]
func (c *CatalogController) DeleteModule(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Module")
	if !ok {
		return
	}

	if err := c.catalogService.DeleteModule(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Module deleted successfully"))
}
