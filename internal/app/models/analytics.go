package models

import (
	"encoding/json"
	"time"
)

// AnalyticsData is a stored analytics snapshot for an assessment
type AnalyticsData struct {
	ID           int64           `json:"id" db:"id"`
	AssessmentID int64           `json:"assessmentId" db:"assessment_id"`
	DataType     string          `json:"dataType" db:"data_type"`
	Data         json.RawMessage `json:"data" db:"data" swaggertype:"object"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// Recommendation is a teaching suggestion derived from analytics
type Recommendation struct {
	ID                 int64     `json:"id" db:"id"`
	AssessmentID       int64     `json:"assessmentId" db:"assessment_id"`
	ModuleID           int64     `json:"moduleId" db:"module_id"`
	AnalyticsID        *int64    `json:"analyticsId,omitempty" db:"analytics_id"`
	RecommendationText string    `json:"recommendationText" db:"recommendation_text"`
	RecommendationType string    `json:"recommendationType" db:"recommendation_type"`
	Priority           int       `json:"priority" db:"priority"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}
