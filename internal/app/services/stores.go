package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yigit/assessai/internal/app/models"
)

// The store interfaces below are satisfied by the repositories package and
// list only what the services call.

// UserStore persists users and profiles
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.User, int64, error)
	Recent(ctx context.Context, limit int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error
}

// CategoryStore persists categories
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// ModuleStore persists modules
type ModuleStore interface {
	Create(ctx context.Context, module *models.Module) error
	GetByID(ctx context.Context, id int64) (*models.Module, error)
	ListByOwner(ctx context.Context, ownerID int64, categoryID *int64) ([]*models.Module, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.Module, error)
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id int64) error
}

// AssessmentStore persists assessment briefs
type AssessmentStore interface {
	Create(ctx context.Context, assessment *models.AssessmentBrief) error
	GetByID(ctx context.Context, id int64) (*models.AssessmentBrief, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.AssessmentBrief, error)
	ListByModule(ctx context.Context, moduleID int64) ([]*models.AssessmentBrief, error)
	RecentByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.AssessmentBrief, error)
	Update(ctx context.Context, assessment *models.AssessmentBrief) error
	FilePaths(ctx context.Context, id int64) ([]string, error)
	Delete(ctx context.Context, id int64) error
}

// RubricStore persists rubrics and their criteria
type RubricStore interface {
	GetByID(ctx context.Context, id int64) (*models.Rubric, error)
	GetByAssessmentID(ctx context.Context, assessmentID int64) (*models.Rubric, error)
	ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error)
	Save(ctx context.Context, rubric *models.Rubric, criteria []*models.RubricCriteria) error
}

// WorkStore persists student work
type WorkStore interface {
	Create(ctx context.Context, work *models.StudentWork) error
	GetByID(ctx context.Context, id int64) (*models.StudentWork, error)
	ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.StudentWork, error)
	RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Submission, error)
	TransitionStatus(ctx context.Context, id int64, from, to models.WorkStatus) (bool, error)
	UpdateURLs(ctx context.Context, id int64, urls []string) error
}

// MarkStore persists marks, criteria marks and feedback
type MarkStore interface {
	SaveMarkingResult(ctx context.Context, mark *models.Mark, criteriaMarks []*models.CriteriaMark, feedback *models.Feedback) error
	GetByID(ctx context.Context, id int64) (*models.Mark, error)
	GetByWorkID(ctx context.Context, workID int64) (*models.Mark, error)
	ExistsForWork(ctx context.Context, workID int64) (bool, error)
	ListCriteriaMarks(ctx context.Context, markID int64) ([]*models.CriteriaMark, error)
	GetFeedback(ctx context.Context, markID int64) (*models.Feedback, error)
	ListMarkedForAssessment(ctx context.Context, assessmentID int64) ([]*models.MarkWithCriteria, error)
	UpdateVerification(ctx context.Context, mark *models.Mark) error
}

// AnalyticsStore persists analytics snapshots
type AnalyticsStore interface {
	Create(ctx context.Context, data *models.AnalyticsData) error
	GetByID(ctx context.Context, id int64) (*models.AnalyticsData, error)
	LatestForAssessment(ctx context.Context, assessmentID int64) (*models.AnalyticsData, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecommendationStore persists teaching recommendations
type RecommendationStore interface {
	CreateBatch(ctx context.Context, recs []*models.Recommendation) error
	ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.Recommendation, error)
	RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Recommendation, error)
}

// WebsiteStore persists website sections, templates and layouts
type WebsiteStore interface {
	CreateSection(ctx context.Context, section *models.WebsiteSection) error
	GetSection(ctx context.Context, id int64) (*models.WebsiteSection, error)
	ListSections(ctx context.Context) ([]*models.WebsiteSection, error)
	UpdateSection(ctx context.Context, section *models.WebsiteSection) error
	UpdateSectionContent(ctx context.Context, id int64, content json.RawMessage) error
	DeleteSection(ctx context.Context, id int64) error

	CreateTemplate(ctx context.Context, tmpl *models.Template) error
	GetTemplate(ctx context.Context, id int64) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, tmpl *models.Template) error
	DeleteTemplate(ctx context.Context, id int64) error

	CreateLayout(ctx context.Context, layout *models.PageLayout) error
	GetLayout(ctx context.Context, id int64) (*models.PageLayout, error)
	ListLayouts(ctx context.Context) ([]*models.PageLayout, error)
	UpdateLayout(ctx context.Context, layout *models.PageLayout) error
	UpdateLayoutSections(ctx context.Context, id int64, sections json.RawMessage) error
	DeleteLayout(ctx context.Context, id int64) error
}

// SettingsStore persists the system settings table
type SettingsStore interface {
	GetAll(ctx context.Context) (map[string]json.RawMessage, error)
	SaveAll(ctx context.Context, settings map[string]json.RawMessage) error
}

// DashboardStore computes dashboard counts
type DashboardStore interface {
	AdminStats(ctx context.Context) (models.AdminStats, error)
	TeacherStats(ctx context.Context, ownerID int64) (models.TeacherStats, error)
}
