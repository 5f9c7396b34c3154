package dto

import (
	"encoding/json"

	"github.com/yigit/assessai/internal/app/models"
)

// SectionRequest creates or updates a website section
type SectionRequest struct {
	Name         string          `json:"name" binding:"required,max=128"`
	Description  *string         `json:"description"`
	Content      json.RawMessage `json:"content" binding:"required" swaggertype:"object"`
	DisplayOrder int             `json:"displayOrder" binding:"min=0"`
	IsActive     *bool           `json:"isActive"`
}

// TemplateRequest creates or updates a template
type TemplateRequest struct {
	Name         string          `json:"name" binding:"required,max=128"`
	Description  *string         `json:"description"`
	TemplateData json.RawMessage `json:"templateData" binding:"required" swaggertype:"object"`
	IsActive     *bool           `json:"isActive"`
}

// LayoutRequest creates or updates a page layout. Sections must be a JSON array.
type LayoutRequest struct {
	Name        string          `json:"name" binding:"required,max=128"`
	Description *string         `json:"description"`
	Sections    json.RawMessage `json:"sections" binding:"required" swaggertype:"array,object"`
	IsActive    *bool           `json:"isActive"`
}

// WebsiteOverviewResponse is the website customisation landing payload
type WebsiteOverviewResponse struct {
	SectionCount  int                      `json:"sectionCount"`
	TemplateCount int                      `json:"templateCount"`
	LayoutCount   int                      `json:"layoutCount"`
	Sections      []*models.WebsiteSection `json:"sections"`
	Templates     []*models.Template       `json:"templates"`
	Layouts       []*models.PageLayout     `json:"layouts"`
}

// BoolOrDefault dereferences an optional flag
func BoolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
