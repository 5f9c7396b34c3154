package models

import "time"

// AssessmentBrief is the task document set to students
type AssessmentBrief struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	ModuleID    int64     `json:"moduleId" db:"module_id"`
	FilePath    string    `json:"filePath" db:"file_path"`
	CreatedBy   int64     `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	IsActive    bool      `json:"isActive" db:"is_active"`

	ModuleName string `json:"moduleName,omitempty"`
	ModuleCode string `json:"moduleCode,omitempty"`
}

// Rubric is the scored criteria set attached to one assessment
type Rubric struct {
	ID           int64     `json:"id" db:"id"`
	AssessmentID int64     `json:"assessmentId" db:"assessment_id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	FilePath     string    `json:"filePath" db:"file_path"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	Criteria []*RubricCriteria `json:"criteria,omitempty"`
}

// RubricCriteria is one scored line of a rubric
type RubricCriteria struct {
	ID          int64   `json:"id" db:"id"`
	RubricID    int64   `json:"rubricId" db:"rubric_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Weight      float64 `json:"weight" db:"weight"`
	MaxScore    float64 `json:"maxScore" db:"max_score"`
}

// StudentWork is a submission uploaded against an assessment
type StudentWork struct {
	ID             int64      `json:"id" db:"id"`
	AssessmentID   int64      `json:"assessmentId" db:"assessment_id"`
	StudentName    string     `json:"studentName" db:"student_name"`
	StudentID      string     `json:"studentId" db:"student_id"`
	FilePath       string     `json:"filePath" db:"file_path"`
	SubmissionDate time.Time  `json:"submissionDate" db:"submission_date"`
	URLs           []string   `json:"urls" db:"urls"`
	Status         WorkStatus `json:"status" db:"status"`
	UploadedBy     int64      `json:"uploadedBy" db:"uploaded_by"`
}
