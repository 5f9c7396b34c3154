package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/dberrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// AssessmentRepository handles assessment brief database operations
type AssessmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssessmentRepository creates a new AssessmentRepository
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AssessmentRepository) selectAssessments() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.title", "a.description", "a.module_id", "a.file_path", "a.created_by",
		"a.created_at", "a.updated_at", "a.is_active", "m.name", "m.code",
	).
		From("assessment_briefs a").
		Join("modules m ON m.id = a.module_id")
}

func scanAssessment(row pgx.Row) (*models.AssessmentBrief, error) {
	a := &models.AssessmentBrief{}
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.ModuleID, &a.FilePath, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.IsActive, &a.ModuleName, &a.ModuleCode)
	return a, err
}

// Create inserts an assessment brief and fills in its ID and timestamps
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.AssessmentBrief) error {
	sql, args, err := r.sb.Insert("assessment_briefs").
		Columns("title", "description", "module_id", "file_path", "created_by", "is_active").
		Values(assessment.Title, assessment.Description, assessment.ModuleID, assessment.FilePath,
			assessment.CreatedBy, assessment.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create assessment SQL")
		return fmt.Errorf("failed to build create assessment query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&assessment.ID, &assessment.CreatedAt, &assessment.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrModuleNotFound
		}
		logger.Error().Err(err).Msg("Error executing create assessment query")
		return fmt.Errorf("error creating assessment: %w", err)
	}
	return nil
}

// GetByID retrieves an assessment with its module name and code
func (r *AssessmentRepository) GetByID(ctx context.Context, id int64) (*models.AssessmentBrief, error) {
	sql, args, err := r.selectAssessments().
		Where(squirrel.Eq{"a.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get assessment query: %w", err)
	}

	assessment, err := scanAssessment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssessmentNotFound
		}
		logger.Error().Err(err).Int64("assessmentID", id).Msg("Error scanning assessment row")
		return nil, fmt.Errorf("error getting assessment by ID: %w", err)
	}
	return assessment, nil
}

// ListByOwner returns the assessments in modules owned by a user, ordered by title
func (r *AssessmentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.AssessmentBrief, error) {
	return r.list(ctx, r.selectAssessments().
		Where(squirrel.Eq{"m.created_by": ownerID}).
		OrderBy("a.title ASC"))
}

// ListByModule returns a module's assessments ordered by title
func (r *AssessmentRepository) ListByModule(ctx context.Context, moduleID int64) ([]*models.AssessmentBrief, error) {
	return r.list(ctx, r.selectAssessments().
		Where(squirrel.Eq{"a.module_id": moduleID}).
		OrderBy("a.title ASC"))
}

// RecentByOwner returns a user's most recently created assessments
func (r *AssessmentRepository) RecentByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.AssessmentBrief, error) {
	return r.list(ctx, r.selectAssessments().
		Where(squirrel.Eq{"m.created_by": ownerID}).
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(uint64(limit)))
}

func (r *AssessmentRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.AssessmentBrief, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list assessments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assessments query")
		return nil, fmt.Errorf("error querying assessments: %w", err)
	}
	defer rows.Close()

	assessments := []*models.AssessmentBrief{}
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assessment row: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessment rows: %w", err)
	}
	return assessments, nil
}

// Update saves title, description and active flag
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.AssessmentBrief) error {
	sql, args, err := r.sb.Update("assessment_briefs").
		SetMap(map[string]interface{}{
			"title":       assessment.Title,
			"description": assessment.Description,
			"is_active":   assessment.IsActive,
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": assessment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update assessment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assessmentID", assessment.ID).Msg("Error executing update assessment query")
		return fmt.Errorf("error updating assessment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssessmentNotFound
	}
	return nil
}

// FilePaths returns every stored file key belonging to an assessment:
// the brief, the rubric and all student works.
func (r *AssessmentRepository) FilePaths(ctx context.Context, id int64) ([]string, error) {
	const query = `
		SELECT file_path FROM assessment_briefs WHERE id = $1
		UNION ALL
		SELECT file_path FROM rubrics WHERE assessment_id = $1
		UNION ALL
		SELECT file_path FROM student_works WHERE assessment_id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		logger.Error().Err(err).Int64("assessmentID", id).Msg("Error querying assessment file paths")
		return nil, fmt.Errorf("error querying assessment files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("error scanning file path: %w", err)
		}
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, rows.Err()
}

// Delete removes an assessment; rubric, works, marks and analytics cascade
func (r *AssessmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("assessment_briefs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete assessment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assessmentID", id).Msg("Error executing delete assessment query")
		return fmt.Errorf("error deleting assessment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssessmentNotFound
	}
	return nil
}
