package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/cache"
	"github.com/yigit/assessai/internal/pkg/validation"
)

const (
	settingsCacheKey = "settings:system"
	settingsCacheTTL = 5 * time.Minute
)

// SettingsService reads and updates the system settings
type SettingsService interface {
	Get(ctx context.Context) (models.SystemSettings, error)
	Update(ctx context.Context, settings models.SystemSettings) (models.SystemSettings, error)
}

type settingsServiceImpl struct {
	store  SettingsStore
	cache  cache.Cache
	logger zerolog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store SettingsStore, c cache.Cache, logger zerolog.Logger) SettingsService {
	if c == nil {
		c = cache.NewNopCache()
	}
	return &settingsServiceImpl{store: store, cache: c, logger: logger}
}

// Get returns the stored settings on top of the defaults
func (s *settingsServiceImpl) Get(ctx context.Context) (models.SystemSettings, error) {
	var settings models.SystemSettings
	if found, err := s.cache.Get(ctx, settingsCacheKey, &settings); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read settings from cache")
	} else if found {
		return settings, nil
	}

	stored, err := s.store.GetAll(ctx)
	if err != nil {
		return models.SystemSettings{}, fmt.Errorf("error loading system settings: %w", err)
	}

	settings, err = mergeSettings(models.DefaultSystemSettings(), stored)
	if err != nil {
		return models.SystemSettings{}, err
	}

	if err := s.cache.Set(ctx, settingsCacheKey, settings, settingsCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache system settings")
	}
	return settings, nil
}

// Update validates and stores every setting, then drops the cached copy
func (s *settingsServiceImpl) Update(ctx context.Context, settings models.SystemSettings) (models.SystemSettings, error) {
	settings.SiteName = strings.TrimSpace(settings.SiteName)
	if err := validateSettings(settings); err != nil {
		return models.SystemSettings{}, err
	}

	values, err := settingsToMap(settings)
	if err != nil {
		return models.SystemSettings{}, err
	}

	if err := s.store.SaveAll(ctx, values); err != nil {
		return models.SystemSettings{}, fmt.Errorf("error saving system settings: %w", err)
	}

	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate settings cache")
	}

	s.logger.Info().Msg("System settings updated")
	return settings, nil
}

func validateSettings(settings models.SystemSettings) error {
	if !validation.NewStringValidation(settings.SiteName).WithRequired(true).WithMaxLength(128).Validate() {
		return fmt.Errorf("%w: site name must be 1 to 128 characters", apperrors.ErrValidationFailed)
	}
	if !validation.NewNumericValidation(settings.MaxFileSizeMB).WithMin(1).WithMax(100).Validate() {
		return fmt.Errorf("%w: max file size must be between 1 and 100 MB", apperrors.ErrValidationFailed)
	}
	if !validation.NewNumericValidation(settings.AnalyticsRetentionDays).WithMin(1).WithMax(3650).Validate() {
		return fmt.Errorf("%w: analytics retention must be between 1 and 3650 days", apperrors.ErrValidationFailed)
	}
	if len(settings.AllowedExtensions()) == 0 {
		return fmt.Errorf("%w: at least one file type must be allowed", apperrors.ErrValidationFailed)
	}
	return nil
}

// settingsToMap splits the settings into one JSON value per key
func settingsToMap(settings models.SystemSettings) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error encoding settings: %w", err)
	}
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("error encoding settings: %w", err)
	}
	return values, nil
}

// mergeSettings overlays stored values onto base. Unknown keys are ignored.
func mergeSettings(base models.SystemSettings, stored map[string]json.RawMessage) (models.SystemSettings, error) {
	values, err := settingsToMap(base)
	if err != nil {
		return base, err
	}
	for key, value := range stored {
		if _, known := values[key]; known {
			values[key] = value
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return base, fmt.Errorf("error decoding settings: %w", err)
	}
	merged := base
	if err := json.Unmarshal(data, &merged); err != nil {
		return base, fmt.Errorf("error decoding settings: %w", err)
	}
	return merged, nil
}
