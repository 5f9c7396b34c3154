package auth

import (
	"context"

	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// Actor is the authenticated user a request acts for
type Actor struct {
	UserID int64
	Role   models.RoleType
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Owns reports whether the actor may manage a resource created by ownerID.
// Administrators may manage everything.
func (a Actor) Owns(ownerID int64) bool {
	return a.IsAdmin() || (a.UserID > 0 && a.UserID == ownerID)
}

// CategoryReader loads categories
type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
}

// ModuleReader loads modules
type ModuleReader interface {
	GetByID(ctx context.Context, id int64) (*models.Module, error)
}

// AssessmentReader loads assessments
type AssessmentReader interface {
	GetByID(ctx context.Context, id int64) (*models.AssessmentBrief, error)
}

// AuthorizationService resolves resources and checks the actor owns them
type AuthorizationService struct {
	categories  CategoryReader
	modules     ModuleReader
	assessments AssessmentReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(categories CategoryReader, modules ModuleReader, assessments AssessmentReader) *AuthorizationService {
	return &AuthorizationService{
		categories:  categories,
		modules:     modules,
		assessments: assessments,
	}
}

// OwnedCategory returns the category when the actor owns it
func (s *AuthorizationService) OwnedCategory(ctx context.Context, actor Actor, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(category.CreatedBy) {
		logger.Warn().Int64("userID", actor.UserID).Int64("categoryID", id).Msg("Denied access to category")
		return nil, apperrors.NewForbiddenError("You do not have permission to access this category")
	}
	return category, nil
}

// OwnedModule returns the module when the actor owns it
func (s *AuthorizationService) OwnedModule(ctx context.Context, actor Actor, id int64) (*models.Module, error) {
	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(module.CreatedBy) {
		logger.Warn().Int64("userID", actor.UserID).Int64("moduleID", id).Msg("Denied access to module")
		return nil, apperrors.NewForbiddenError("You do not have permission to access this module")
	}
	return module, nil
}

// OwnedAssessment returns the assessment when the actor owns it
func (s *AuthorizationService) OwnedAssessment(ctx context.Context, actor Actor, id int64) (*models.AssessmentBrief, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(assessment.CreatedBy) {
		logger.Warn().Int64("userID", actor.UserID).Int64("assessmentID", id).Msg("Denied access to assessment")
		return nil, apperrors.NewForbiddenError("You do not have permission to access this assessment")
	}
	return assessment, nil
}
