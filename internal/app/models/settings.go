package models

import "strings"

// System setting keys stored in system_settings
const (
	SettingSiteName               = "site_name"
	SettingAllowRegistration      = "allow_registration"
	SettingEnableAIMarking        = "enable_ai_marking"
	SettingMaxFileSizeMB          = "max_file_size_mb"
	SettingAllowedFileTypes       = "allowed_file_types"
	SettingAnalyticsRetentionDays = "analytics_retention_days"
)

// SystemSettings is the typed view over the system_settings key/value table
type SystemSettings struct {
	SiteName               string `json:"site_name"`
	AllowRegistration      bool   `json:"allow_registration"`
	EnableAIMarking        bool   `json:"enable_ai_marking"`
	MaxFileSizeMB          int    `json:"max_file_size_mb"`
	AllowedFileTypes       string `json:"allowed_file_types"`
	AnalyticsRetentionDays int    `json:"analytics_retention_days"`
}

// DefaultSystemSettings returns the settings used when nothing is stored
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		SiteName:               "Assessment AI System",
		AllowRegistration:      true,
		EnableAIMarking:        true,
		MaxFileSizeMB:          10,
		AllowedFileTypes:       ".pdf,.doc,.docx,.txt",
		AnalyticsRetentionDays: 90,
	}
}

// AllowedExtensions returns the lowercased extensions with a leading dot
func (s SystemSettings) AllowedExtensions() []string {
	var exts []string
	for _, ext := range strings.Split(s.AllowedFileTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// MaxFileSizeBytes returns the upload size limit in bytes
func (s SystemSettings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}
