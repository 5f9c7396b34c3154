package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/cache"
)

func TestSettingsService_GetDefaultsAndCache(t *testing.T) {
	store := new(mockSettingsStore)
	store.On("GetAll", mock.Anything).Return(map[string]json.RawMessage{}, nil).Once()

	svc := NewSettingsService(store, cache.NewMemoryCache(), testLogger)
	ctx := context.Background()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSystemSettings(), got)

	// Served from cache
	got, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Assessment AI System", got.SiteName)
	store.AssertExpectations(t)
}

func TestSettingsService_GetOverlaysStoredValues(t *testing.T) {
	store := new(mockSettingsStore)
	store.On("GetAll", mock.Anything).Return(map[string]json.RawMessage{
		models.SettingEnableAIMarking: json.RawMessage(`false`),
		models.SettingMaxFileSizeMB:   json.RawMessage(`5`),
		"obsolete_key":                json.RawMessage(`"ignored"`),
	}, nil)

	svc := NewSettingsService(store, nil, testLogger)
	got, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.False(t, got.EnableAIMarking)
	assert.Equal(t, 5, got.MaxFileSizeMB)
	assert.True(t, got.AllowRegistration)
	assert.Equal(t, int64(5*1024*1024), got.MaxFileSizeBytes())
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid settings", func(t *testing.T) {
		store := new(mockSettingsStore)
		svc := NewSettingsService(store, cache.NewMemoryCache(), testLogger)

		settings := models.DefaultSystemSettings()
		settings.MaxFileSizeMB = 0
		_, err := svc.Update(ctx, settings)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		settings = models.DefaultSystemSettings()
		settings.AllowedFileTypes = " , "
		_, err = svc.Update(ctx, settings)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		store.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("persists and invalidates the cache", func(t *testing.T) {
		store := new(mockSettingsStore)
		c := cache.NewMemoryCache()
		svc := NewSettingsService(store, c, testLogger)

		store.On("GetAll", mock.Anything).Return(map[string]json.RawMessage{}, nil).Once()
		_, err := svc.Get(ctx)
		require.NoError(t, err)

		updated := models.DefaultSystemSettings()
		updated.AllowRegistration = false
		store.On("SaveAll", mock.Anything, mock.MatchedBy(func(values map[string]json.RawMessage) bool {
			return string(values[models.SettingAllowRegistration]) == "false" && len(values) == 6
		})).Return(nil).Once()

		_, err = svc.Update(ctx, updated)
		require.NoError(t, err)

		cached, err := c.Exists(ctx, settingsCacheKey)
		require.NoError(t, err)
		assert.False(t, cached)

		store.On("GetAll", mock.Anything).Return(map[string]json.RawMessage{
			models.SettingAllowRegistration: json.RawMessage(`false`),
		}, nil).Once()
		got, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.False(t, got.AllowRegistration)
		store.AssertExpectations(t)
	})
}
