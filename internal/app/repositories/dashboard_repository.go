package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// DashboardRepository computes the aggregate counts shown on dashboards
type DashboardRepository struct {
	db *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: pool}
}

// AdminStats counts users by role and every content table
func (r *DashboardRepository) AdminStats(ctx context.Context) (models.AdminStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = 'teacher'),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM assessment_briefs),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM modules),
			(SELECT COUNT(*) FROM website_sections),
			(SELECT COUNT(*) FROM templates),
			(SELECT COUNT(*) FROM page_layouts)`

	var s models.AdminStats
	err := r.db.QueryRow(ctx, query).Scan(&s.Users, &s.Teachers, &s.Admins, &s.Assessments,
		&s.Categories, &s.Modules, &s.Sections, &s.Templates, &s.Layouts)
	if err != nil {
		logger.Error().Err(err).Msg("Error computing admin stats")
		return s, fmt.Errorf("error computing admin stats: %w", err)
	}
	return s, nil
}

// TeacherStats counts a teacher's catalog and the marking state of submissions
// to their assessments
func (r *DashboardRepository) TeacherStats(ctx context.Context, ownerID int64) (models.TeacherStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE created_by = $1),
			(SELECT COUNT(*) FROM modules WHERE created_by = $1),
			(SELECT COUNT(*) FROM assessment_briefs a JOIN modules m ON m.id = a.module_id WHERE m.created_by = $1),
			(SELECT COUNT(*) FROM student_works w
				JOIN assessment_briefs a ON a.id = w.assessment_id
				JOIN modules m ON m.id = a.module_id
				WHERE m.created_by = $1 AND w.status = 'marked'),
			(SELECT COUNT(*) FROM student_works w
				JOIN assessment_briefs a ON a.id = w.assessment_id
				JOIN modules m ON m.id = a.module_id
				WHERE m.created_by = $1 AND w.status <> 'marked')`

	var s models.TeacherStats
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&s.Categories, &s.Modules, &s.Assessments, &s.Marked, &s.Pending)
	if err != nil {
		logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Error computing teacher stats")
		return s, fmt.Errorf("error computing teacher stats: %w", err)
	}
	return s, nil
}
