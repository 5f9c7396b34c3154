package dto

import (
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/marking"
)

// CreateAssessmentRequest is bound from the multipart assessment form; the
// brief itself arrives as the brief_file part.
type CreateAssessmentRequest struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description"`
	ModuleID    int64  `form:"module_id" binding:"required,min=1"`
}

// UpdateAssessmentRequest edits an assessment's metadata
type UpdateAssessmentRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AssessmentDetailResponse is the assessment page payload
type AssessmentDetailResponse struct {
	Assessment   *models.AssessmentBrief `json:"assessment"`
	HasRubric    bool                    `json:"hasRubric"`
	Works        []*models.StudentWork   `json:"works"`
	StatusCounts models.WorkStatusCounts `json:"statusCounts"`
}

// RubricUploadRequest is bound from the multipart rubric form (rubric_file part)
type RubricUploadRequest struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description"`
}

// RubricResponse returns a saved rubric. Warning is set when the file could
// not be parsed into criteria.
type RubricResponse struct {
	Rubric  *models.Rubric `json:"rubric"`
	Warning string         `json:"warning,omitempty"`
}

// UploadWorkRequest is bound from the multipart submission form (work_file part)
type UploadWorkRequest struct {
	StudentName string `form:"student_name" binding:"required,max=128"`
	StudentID   string `form:"student_id" binding:"required,max=32"`
	AutoMark    string `form:"auto_mark"`
}

// UploadWorkResponse returns the stored work and whether marking was queued
type UploadWorkResponse struct {
	Work   *models.StudentWork `json:"work"`
	Queued bool                `json:"queued"`
	TaskID string              `json:"taskId,omitempty"`
}

// CriteriaMarkView is a criteria mark with its decoded feedback
type CriteriaMarkView struct {
	*models.CriteriaMark
	Feedback *marking.CriterionFeedback `json:"feedback,omitempty"`
}

// WorkDetailResponse is a student work with its mark and feedback
type WorkDetailResponse struct {
	Work          *models.StudentWork `json:"work"`
	Mark          *models.Mark        `json:"mark,omitempty"`
	CriteriaMarks []CriteriaMarkView  `json:"criteriaMarks"`
	Feedback      *models.Feedback    `json:"feedback,omitempty"`
}

// VerifyMarkRequest lets a teacher confirm, and optionally override, an AI mark
type VerifyMarkRequest struct {
	Verified   *bool    `json:"verified" binding:"required"`
	TotalScore *float64 `json:"totalScore" binding:"omitempty,min=0"`
}
