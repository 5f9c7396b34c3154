package dto

import "github.com/yigit/assessai/internal/app/models"

// AdminDashboardResponse is the admin landing payload
type AdminDashboardResponse struct {
	Stats       models.AdminStats `json:"stats"`
	RecentUsers []*UserResponse   `json:"recentUsers"`
}

// TeacherDashboardResponse is the teacher landing payload
type TeacherDashboardResponse struct {
	Stats             models.TeacherStats       `json:"stats"`
	RecentAssessments []*models.AssessmentBrief `json:"recentAssessments"`
	RecentSubmissions []*models.Submission      `json:"recentSubmissions"`
	Recommendations   []*models.Recommendation  `json:"recommendations"`
}
