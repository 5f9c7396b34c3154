package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/dberrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// StudentWorkRepository handles student submissions
type StudentWorkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentWorkRepository creates a new StudentWorkRepository
func NewStudentWorkRepository(pool *pgxpool.Pool) *StudentWorkRepository {
	return &StudentWorkRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var workColumns = []string{
	"w.id", "w.assessment_id", "w.student_name", "w.student_id", "w.file_path",
	"w.submission_date", "w.urls", "w.status", "w.uploaded_by",
}

func scanWork(row pgx.Row, extra ...any) (*models.StudentWork, error) {
	w := &models.StudentWork{}
	dest := []any{&w.ID, &w.AssessmentID, &w.StudentName, &w.StudentID, &w.FilePath,
		&w.SubmissionDate, &w.URLs, &w.Status, &w.UploadedBy}
	err := row.Scan(append(dest, extra...)...)
	if w.URLs == nil {
		w.URLs = []string{}
	}
	return w, err
}

// Create inserts a submission with status submitted
func (r *StudentWorkRepository) Create(ctx context.Context, work *models.StudentWork) error {
	if work.URLs == nil {
		work.URLs = []string{}
	}
	if work.Status == "" {
		work.Status = models.WorkStatusSubmitted
	}

	sql, args, err := r.sb.Insert("student_works").
		Columns("assessment_id", "student_name", "student_id", "file_path", "urls", "status", "uploaded_by").
		Values(work.AssessmentID, work.StudentName, work.StudentID, work.FilePath, work.URLs, work.Status, work.UploadedBy).
		Suffix("RETURNING id, submission_date").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student work SQL")
		return fmt.Errorf("failed to build create student work query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&work.ID, &work.SubmissionDate); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrAssessmentNotFound
		}
		logger.Error().Err(err).Int64("assessmentID", work.AssessmentID).Msg("Error executing create student work query")
		return fmt.Errorf("error creating student work: %w", err)
	}
	return nil
}

// GetByID retrieves a submission
func (r *StudentWorkRepository) GetByID(ctx context.Context, id int64) (*models.StudentWork, error) {
	sql, args, err := r.sb.Select(workColumns...).
		From("student_works w").
		Where(squirrel.Eq{"w.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student work query: %w", err)
	}

	work, err := scanWork(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrWorkNotFound
		}
		logger.Error().Err(err).Int64("workID", id).Msg("Error scanning student work row")
		return nil, fmt.Errorf("error getting student work: %w", err)
	}
	return work, nil
}

// ListByAssessment returns an assessment's submissions, newest first
func (r *StudentWorkRepository) ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.StudentWork, error) {
	return r.list(ctx, r.sb.Select(workColumns...).
		From("student_works w").
		Where(squirrel.Eq{"w.assessment_id": assessmentID}).
		OrderBy("w.submission_date DESC", "w.id DESC"))
}

// RecentForOwner returns the latest submissions to assessments in a user's modules
func (r *StudentWorkRepository) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Submission, error) {
	sql, args, err := r.sb.Select(append(workColumns, "a.title")...).
		From("student_works w").
		Join("assessment_briefs a ON a.id = w.assessment_id").
		Join("modules m ON m.id = a.module_id").
		Where(squirrel.Eq{"m.created_by": ownerID}).
		OrderBy("w.submission_date DESC", "w.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent submissions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Error querying recent submissions")
		return nil, fmt.Errorf("error querying recent submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*models.Submission{}
	for rows.Next() {
		var title string
		work, err := scanWork(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("error scanning submission row: %w", err)
		}
		submissions = append(submissions, &models.Submission{StudentWork: *work, AssessmentTitle: title})
	}
	return submissions, rows.Err()
}

func (r *StudentWorkRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.StudentWork, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list student works query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list student works query")
		return nil, fmt.Errorf("error querying student works: %w", err)
	}
	defer rows.Close()

	works := []*models.StudentWork{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student work row: %w", err)
		}
		works = append(works, work)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student work rows: %w", err)
	}
	return works, nil
}

// TransitionStatus moves a work from one status to another and reports
// whether the row was in the expected status.
func (r *StudentWorkRepository) TransitionStatus(ctx context.Context, id int64, from, to models.WorkStatus) (bool, error) {
	sql, args, err := r.sb.Update("student_works").
		Set("status", to).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build transition status query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("workID", id).Str("to", string(to)).Msg("Error updating student work status")
		return false, fmt.Errorf("error updating student work status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// UpdateURLs stores the URLs extracted from a submission
func (r *StudentWorkRepository) UpdateURLs(ctx context.Context, id int64, urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	sql, args, err := r.sb.Update("student_works").
		Set("urls", urls).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update urls query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("workID", id).Msg("Error updating student work urls")
		return fmt.Errorf("error updating student work urls: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrWorkNotFound
	}
	return nil
}
