package dto

import (
	"encoding/json"

	"github.com/yigit/assessai/internal/pkg/marking"
)

// MarkWorkRequest asks for a student work to be marked
type MarkWorkRequest struct {
	WorkID int64 `json:"work_id" binding:"required,min=1" example:"1"`
}

// MarkWorkResponse is returned after a work has been marked
type MarkWorkResponse struct {
	Success    bool    `json:"success" example:"true"`
	MarkID     int64   `json:"mark_id" example:"1"`
	Percentage float64 `json:"percentage" example:"72.5"`
	Grade      string  `json:"grade" example:"B"`
}

// ProcessBriefRequest asks for a stored brief to be analysed
type ProcessBriefRequest struct {
	BriefID int64 `json:"brief_id" binding:"required,min=1"`
}

// BriefAnalysisResponse carries a brief analysis
type BriefAnalysisResponse struct {
	Success  bool                  `json:"success" example:"true"`
	Analysis marking.BriefAnalysis `json:"analysis"`
}

// ProcessRubricRequest asks for a stored rubric to be analysed
type ProcessRubricRequest struct {
	RubricID int64 `json:"rubric_id" binding:"required,min=1"`
}

// RubricAnalysisResponse carries a rubric analysis
type RubricAnalysisResponse struct {
	Success  bool                   `json:"success" example:"true"`
	Analysis marking.RubricAnalysis `json:"analysis"`
}

// GenerateAnalyticsRequest asks for analytics over an assessment's marked work
type GenerateAnalyticsRequest struct {
	AssessmentID int64 `json:"assessment_id" binding:"required,min=1"`
}

// AnalyticsResponse carries generated analytics and the stored record id
type AnalyticsResponse struct {
	Success     bool              `json:"success" example:"true"`
	Analytics   marking.Analytics `json:"analytics"`
	AnalyticsID int64             `json:"analytics_id"`
}

// GenerateRecommendationsRequest asks for recommendations from stored analytics
type GenerateRecommendationsRequest struct {
	AnalyticsID int64 `json:"analytics_id" binding:"required,min=1"`
}

// RecommendationsResponse carries generated recommendations
type RecommendationsResponse struct {
	Success         bool                         `json:"success" example:"true"`
	Recommendations []marking.RecommendationItem `json:"recommendations"`
	Count           int                          `json:"count"`
}

// ExtractURLsRequest carries free text to scan for URLs
type ExtractURLsRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractURLsResponse lists the URLs found in the text
type ExtractURLsResponse struct {
	Success bool     `json:"success" example:"true"`
	URLs    []string `json:"urls"`
	Count   int      `json:"count"`
}

// AnalyzeURLRequest asks for a single URL to be fetched and analysed
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// AnalyzeURLResponse carries a URL analysis
type AnalyzeURLResponse struct {
	Success  bool                `json:"success" example:"true"`
	Analysis marking.URLAnalysis `json:"analysis"`
}

// SaveSectionRequest stores new content for a website section
type SaveSectionRequest struct {
	SectionID int64           `json:"section_id" binding:"required,min=1"`
	Content   json.RawMessage `json:"content" binding:"required" swaggertype:"object"`
}

// SaveSectionResponse confirms a saved section
type SaveSectionResponse struct {
	Success   bool  `json:"success" example:"true"`
	SectionID int64 `json:"section_id"`
}

// SaveLayoutRequest stores a drag-and-drop arrangement of sections
type SaveLayoutRequest struct {
	LayoutID int64           `json:"layout_id" binding:"required,min=1"`
	Sections json.RawMessage `json:"sections" binding:"required" swaggertype:"array,object"`
}

// SaveLayoutResponse confirms a saved layout
type SaveLayoutResponse struct {
	Success  bool  `json:"success" example:"true"`
	LayoutID int64 `json:"layout_id"`
}
