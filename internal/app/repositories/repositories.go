package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           *UserRepository
	CategoryRepository       *CategoryRepository
	ModuleRepository         *ModuleRepository
	AssessmentRepository     *AssessmentRepository
	RubricRepository         *RubricRepository
	StudentWorkRepository    *StudentWorkRepository
	MarkRepository           *MarkRepository
	AnalyticsRepository      *AnalyticsRepository
	RecommendationRepository *RecommendationRepository
	WebsiteRepository        *WebsiteRepository
	SettingsRepository       *SettingsRepository
	DashboardRepository      *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		CategoryRepository:       NewCategoryRepository(db),
		ModuleRepository:         NewModuleRepository(db),
		AssessmentRepository:     NewAssessmentRepository(db),
		RubricRepository:         NewRubricRepository(db),
		StudentWorkRepository:    NewStudentWorkRepository(db),
		MarkRepository:           NewMarkRepository(db),
		AnalyticsRepository:      NewAnalyticsRepository(db),
		RecommendationRepository: NewRecommendationRepository(db),
		WebsiteRepository:        NewWebsiteRepository(db),
		SettingsRepository:       NewSettingsRepository(db),
		DashboardRepository:      NewDashboardRepository(db),
	}
}
