package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
)

func TestWebsiteService_SaveLayout(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{`{"id":1}`, `"hero"`, `null`, `[1,`} {
		t.Run("rejects "+raw, func(t *testing.T) {
			store := new(mockWebsiteStore)
			svc := NewWebsiteService(store, testLogger)

			err := svc.SaveLayout(ctx, 4, json.RawMessage(raw))
			assert.ErrorIs(t, err, apperrors.ErrInvalidLayoutFormat)
			store.AssertNotCalled(t, "UpdateLayoutSections", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("stores an array", func(t *testing.T) {
		store := new(mockWebsiteStore)
		sections := json.RawMessage(`[{"section_id":2,"order":0},{"section_id":1,"order":1}]`)
		store.On("UpdateLayoutSections", mock.Anything, int64(4), sections).Return(nil)

		svc := NewWebsiteService(store, testLogger)
		require.NoError(t, svc.SaveLayout(ctx, 4, sections))
		store.AssertExpectations(t)
	})

	t.Run("unknown layout", func(t *testing.T) {
		store := new(mockWebsiteStore)
		store.On("UpdateLayoutSections", mock.Anything, int64(99), mock.Anything).Return(apperrors.ErrLayoutNotFound)

		svc := NewWebsiteService(store, testLogger)
		err := svc.SaveLayout(ctx, 99, json.RawMessage(`[]`))
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestWebsiteService_SaveSectionContent(t *testing.T) {
	store := new(mockWebsiteStore)
	svc := NewWebsiteService(store, testLogger)

	err := svc.SaveSectionContent(context.Background(), 2, json.RawMessage(`{"title":`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	store.On("UpdateSectionContent", mock.Anything, int64(2), json.RawMessage(`{"title":"Welcome"}`)).Return(nil)
	require.NoError(t, svc.SaveSectionContent(context.Background(), 2, json.RawMessage(`{"title":"Welcome"}`)))
}

func TestWebsiteService_CreateLayoutDefaults(t *testing.T) {
	store := new(mockWebsiteStore)
	store.On("CreateLayout", mock.Anything, mock.MatchedBy(func(l *models.PageLayout) bool {
		return l.IsActive && l.CreatedBy == 1 && l.Name == "Home"
	})).Return(nil)

	svc := NewWebsiteService(store, testLogger)
	layout, err := svc.CreateLayout(context.Background(), 1, &dto.LayoutRequest{Name: " Home ", Sections: json.RawMessage(`[]`)})
	require.NoError(t, err)
	assert.Equal(t, "Home", layout.Name)
	store.AssertExpectations(t)
}
