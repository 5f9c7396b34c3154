package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/validation"
)

// CatalogService manages a teacher's categories and modules
type CatalogService interface {
	ListCategories(ctx context.Context, actor authz.Actor) ([]*models.Category, error)
	CreateCategory(ctx context.Context, actor authz.Actor, req *dto.CategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, actor authz.Actor, id int64) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor authz.Actor, id int64, req *dto.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor authz.Actor, id int64) error

	ListModules(ctx context.Context, actor authz.Actor, categoryID *int64) ([]*models.Module, error)
	CreateModule(ctx context.Context, actor authz.Actor, req *dto.ModuleRequest) (*models.Module, error)
	GetModule(ctx context.Context, actor authz.Actor, id int64) (*models.Module, error)
	UpdateModule(ctx context.Context, actor authz.Actor, id int64, req *dto.ModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, actor authz.Actor, id int64) error
}

type catalogServiceImpl struct {
	categories  CategoryStore
	modules     ModuleStore
	assessments AssessmentStore
	authz       *authz.AuthorizationService
	logger      zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categories CategoryStore,
	modules ModuleStore,
	assessments AssessmentStore,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) CatalogService {
	return &catalogServiceImpl{
		categories:  categories,
		modules:     modules,
		assessments: assessments,
		authz:       authorization,
		logger:      logger,
	}
}

func validateCategory(req *dto.CategoryRequest) error {
	if !validation.NewStringValidation(req.Name).WithRequired(true).WithMaxLength(128).Validate() {
		return fmt.Errorf("%w: category name is required and must be at most 128 characters", apperrors.ErrValidationFailed)
	}
	return nil
}

func validateModule(req *dto.ModuleRequest) error {
	if !validation.NewStringValidation(req.Name).WithRequired(true).WithMaxLength(128).Validate() {
		return fmt.Errorf("%w: module name is required and must be at most 128 characters", apperrors.ErrValidationFailed)
	}
	if !validation.NewStringValidation(req.Code).WithRequired(true).WithPattern(validation.CompiledPatterns.ModuleCode).Validate() {
		return fmt.Errorf("%w: module code is required and must be at most 32 letters, digits or dashes", apperrors.ErrValidationFailed)
	}
	if req.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", apperrors.ErrValidationFailed)
	}
	return nil
}

// ListCategories returns the caller's categories by name
func (s *catalogServiceImpl) ListCategories(ctx context.Context, actor authz.Actor) ([]*models.Category, error) {
	return s.categories.ListByOwner(ctx, actor.UserID)
}

// CreateCategory creates a category owned by the caller
func (s *catalogServiceImpl) CreateCategory(ctx context.Context, actor authz.Actor, req *dto.CategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: trimmedOrNil(req.Description),
		CreatedBy:   actor.UserID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("categoryID", category.ID).Int64("userID", actor.UserID).Msg("Category created")
	return category, nil
}

// GetCategory returns an owned category with its modules
func (s *catalogServiceImpl) GetCategory(ctx context.Context, actor authz.Actor, id int64) (*models.Category, error) {
	category, err := s.authz.OwnedCategory(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	modules, err := s.modules.ListByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Modules = modules
	return category, nil
}

// UpdateCategory edits an owned category
func (s *catalogServiceImpl) UpdateCategory(ctx context.Context, actor authz.Actor, id int64, req *dto.CategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	category, err := s.authz.OwnedCategory(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = trimmedOrNil(req.Description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes an owned category together with everything below it
func (s *catalogServiceImpl) DeleteCategory(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.authz.OwnedCategory(ctx, actor, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("categoryID", id).Int64("userID", actor.UserID).Msg("Category deleted")
	return nil
}

// ListModules returns the caller's modules, optionally within one category
func (s *catalogServiceImpl) ListModules(ctx context.Context, actor authz.Actor, categoryID *int64) ([]*models.Module, error) {
	return s.modules.ListByOwner(ctx, actor.UserID, categoryID)
}

// CreateModule creates a module in one of the caller's categories
func (s *catalogServiceImpl) CreateModule(ctx context.Context, actor authz.Actor, req *dto.ModuleRequest) (*models.Module, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if err := validateModule(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, actor, req.CategoryID); err != nil {
		return nil, err
	}

	module := &models.Module{
		Name:        req.Name,
		Code:        req.Code,
		Description: trimmedOrNil(req.Description),
		CategoryID:  req.CategoryID,
		CreatedBy:   actor.UserID,
	}
	if err := s.modules.Create(ctx, module); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("moduleID", module.ID).Int64("userID", actor.UserID).Msg("Module created")
	return module, nil
}

// GetModule returns an owned module with its assessments
func (s *catalogServiceImpl) GetModule(ctx context.Context, actor authz.Actor, id int64) (*models.Module, error) {
	module, err := s.authz.OwnedModule(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	assessments, err := s.assessments.ListByModule(ctx, id)
	if err != nil {
		return nil, err
	}
	module.Assessments = assessments
	return module, nil
}

// UpdateModule edits an owned module. Moving it requires owning the target category.
func (s *catalogServiceImpl) UpdateModule(ctx context.Context, actor authz.Actor, id int64, req *dto.ModuleRequest) (*models.Module, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if err := validateModule(req); err != nil {
		return nil, err
	}

	module, err := s.authz.OwnedModule(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != module.CategoryID {
		if err := s.checkCategory(ctx, actor, req.CategoryID); err != nil {
			return nil, err
		}
	}

	module.Name = req.Name
	module.Code = req.Code
	module.Description = trimmedOrNil(req.Description)
	module.CategoryID = req.CategoryID
	if err := s.modules.Update(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// DeleteModule deletes an owned module together with its assessments
func (s *catalogServiceImpl) DeleteModule(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.authz.OwnedModule(ctx, actor, id); err != nil {
		return err
	}
	if err := s.modules.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("moduleID", id).Int64("userID", actor.UserID).Msg("Module deleted")
	return nil
}

// checkCategory maps a missing or foreign category to ErrInvalidCategory
func (s *catalogServiceImpl) checkCategory(ctx context.Context, actor authz.Actor, categoryID int64) error {
	if _, err := s.authz.OwnedCategory(ctx, actor, categoryID); err != nil {
		if apperrors.IsNotFound(err) || apperrors.Is(err, apperrors.ErrPermissionDenied) {
			return fmt.Errorf("%w: category %d", apperrors.ErrInvalidCategory, categoryID)
		}
		return err
	}
	return nil
}

// trimmedOrNil trims an optional string and drops it when blank
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return optionalString(*s)
}
