package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models/dto"
)

const (
	recentUsersLimit           = 5
	recentAssessmentsLimit     = 5
	recentSubmissionsLimit     = 10
	recentRecommendationsLimit = 5
)

// DashboardService builds the admin and teacher landing pages
type DashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, error)
	Teacher(ctx context.Context, userID int64) (*dto.TeacherDashboardResponse, error)
}

type dashboardServiceImpl struct {
	stats           DashboardStore
	users           UserStore
	assessments     AssessmentStore
	works           WorkStore
	recommendations RecommendationStore
	logger          zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	stats DashboardStore,
	users UserStore,
	assessments AssessmentStore,
	works WorkStore,
	recommendations RecommendationStore,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardServiceImpl{
		stats:           stats,
		users:           users,
		assessments:     assessments,
		works:           works,
		recommendations: recommendations,
		logger:          logger,
	}
}

func (s *dashboardServiceImpl) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	stats, err := s.stats.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Recent(ctx, recentUsersLimit)
	if err != nil {
		return nil, err
	}
	return &dto.AdminDashboardResponse{Stats: stats, RecentUsers: dto.NewUserResponses(users)}, nil
}

func (s *dashboardServiceImpl) Teacher(ctx context.Context, userID int64) (*dto.TeacherDashboardResponse, error) {
	stats, err := s.stats.TeacherStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.assessments.RecentByOwner(ctx, userID, recentAssessmentsLimit)
	if err != nil {
		return nil, err
	}
	submissions, err := s.works.RecentForOwner(ctx, userID, recentSubmissionsLimit)
	if err != nil {
		return nil, err
	}
	recs, err := s.recommendations.RecentForOwner(ctx, userID, recentRecommendationsLimit)
	if err != nil {
		return nil, err
	}

	return &dto.TeacherDashboardResponse{
		Stats:             stats,
		RecentAssessments: assessments,
		RecentSubmissions: submissions,
		Recommendations:   recs,
	}, nil
}
