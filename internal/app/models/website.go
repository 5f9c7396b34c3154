package models

import (
	"encoding/json"
	"time"
)

// WebsiteSection is an admin editable block of the public site
type WebsiteSection struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Content      json.RawMessage `json:"content" db:"content" swaggertype:"object"`
	DisplayOrder int             `json:"displayOrder" db:"display_order"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	CreatedBy    int64           `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Template is a reusable page template
type Template struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	TemplateData json.RawMessage `json:"templateData" db:"template_data" swaggertype:"object"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// PageLayout is an ordered drag-and-drop arrangement of sections
type PageLayout struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Sections    json.RawMessage `json:"sections" db:"sections" swaggertype:"array,object"`
	IsActive    bool            `json:"isActive" db:"is_active"`
	CreatedBy   int64           `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}
