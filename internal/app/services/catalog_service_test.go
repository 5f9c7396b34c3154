package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
)

func TestCatalogService_CreateModule(t *testing.T) {
	ctx := context.Background()
	teacher := authz.Actor{UserID: 3, Role: models.RoleTeacher}

	newService := func() (CatalogService, *mockCategoryStore, *mockModuleStore) {
		categories := new(mockCategoryStore)
		modules := new(mockModuleStore)
		assessments := new(mockAssessmentStore)
		authorization := authz.NewAuthorizationService(categories, modules, assessments)
		return NewCatalogService(categories, modules, assessments, authorization, testLogger), categories, modules
	}

	t.Run("own category", func(t *testing.T) {
		svc, categories, modules := newService()
		categories.On("GetByID", mock.Anything, int64(1)).Return(&models.Category{ID: 1, CreatedBy: 3}, nil)
		modules.On("Create", mock.Anything, mock.MatchedBy(func(m *models.Module) bool {
			return m.Code == "CS204" && m.CreatedBy == 3 && m.Description == nil
		})).Return(nil)

		blank := "  "
		module, err := svc.CreateModule(ctx, teacher, &dto.ModuleRequest{Name: " Web Development ", Code: "CS204", CategoryID: 1, Description: &blank})
		require.NoError(t, err)
		assert.Equal(t, "Web Development", module.Name)
		modules.AssertExpectations(t)
	})

	t.Run("foreign category", func(t *testing.T) {
		svc, categories, modules := newService()
		categories.On("GetByID", mock.Anything, int64(1)).Return(&models.Category{ID: 1, CreatedBy: 9}, nil)

		_, err := svc.CreateModule(ctx, teacher, &dto.ModuleRequest{Name: "Web", Code: "CS204", CategoryID: 1})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
		modules.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing category", func(t *testing.T) {
		svc, categories, _ := newService()
		categories.On("GetByID", mock.Anything, int64(7)).Return(nil, apperrors.ErrCategoryNotFound)

		_, err := svc.CreateModule(ctx, teacher, &dto.ModuleRequest{Name: "Web", Code: "CS204", CategoryID: 7})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
	})

	t.Run("bad code", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.CreateModule(ctx, teacher, &dto.ModuleRequest{Name: "Web", Code: "CS#204", CategoryID: 1})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestCatalogService_GetCategoryOwnership(t *testing.T) {
	categories := new(mockCategoryStore)
	modules := new(mockModuleStore)
	authorization := authz.NewAuthorizationService(categories, modules, new(mockAssessmentStore))
	svc := NewCatalogService(categories, modules, new(mockAssessmentStore), authorization, testLogger)

	categories.On("GetByID", mock.Anything, int64(1)).Return(&models.Category{ID: 1, CreatedBy: 9}, nil)

	_, err := svc.GetCategory(context.Background(), authz.Actor{UserID: 3, Role: models.RoleTeacher}, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	modules.On("ListByCategory", mock.Anything, int64(1)).Return([]*models.Module{{ID: 4, CategoryID: 1}}, nil)
	category, err := svc.GetCategory(context.Background(), authz.Actor{UserID: 1, Role: models.RoleAdmin}, 1)
	require.NoError(t, err)
	assert.Len(t, category.Modules, 1)
}
