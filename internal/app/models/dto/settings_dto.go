package dto

import "github.com/yigit/assessai/internal/app/models"

// UpdateSettingsRequest replaces the system settings
type UpdateSettingsRequest struct {
	SiteName               string `json:"site_name" binding:"required,max=128" example:"Assessment AI System"`
	AllowRegistration      *bool  `json:"allow_registration" binding:"required"`
	EnableAIMarking        *bool  `json:"enable_ai_marking" binding:"required"`
	MaxFileSizeMB          int    `json:"max_file_size_mb" binding:"required,min=1,max=100" example:"10"`
	AllowedFileTypes       string `json:"allowed_file_types" binding:"required" example:".pdf,.doc,.docx,.txt"`
	AnalyticsRetentionDays int    `json:"analytics_retention_days" binding:"required,min=1,max=3650" example:"90"`
}

// ToModel converts the request into SystemSettings
func (r UpdateSettingsRequest) ToModel() models.SystemSettings {
	return models.SystemSettings{
		SiteName:               r.SiteName,
		AllowRegistration:      BoolOrDefault(r.AllowRegistration, true),
		EnableAIMarking:        BoolOrDefault(r.EnableAIMarking, true),
		MaxFileSizeMB:          r.MaxFileSizeMB,
		AllowedFileTypes:       r.AllowedFileTypes,
		AnalyticsRetentionDays: r.AnalyticsRetentionDays,
	}
}
