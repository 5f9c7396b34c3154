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
	"github.com/yigit/assessai/internal/db"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/dberrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// MarkRepository handles marks, criteria marks and feedback
type MarkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(pool *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var markColumns = []string{
	"mk.id", "mk.student_work_id", "mk.total_score", "mk.max_score", "mk.percentage", "mk.grade",
	"mk.word_count", "mk.sentence_count", "mk.url_count", "mk.topic_coverage",
	"mk.marked_by_ai", "mk.verified_by_teacher", "mk.teacher_id", "mk.created_at", "mk.updated_at",
}

func scanMark(row pgx.Row) (*models.Mark, error) {
	m := &models.Mark{}
	err := row.Scan(&m.ID, &m.StudentWorkID, &m.TotalScore, &m.MaxScore, &m.Percentage, &m.Grade,
		&m.WordCount, &m.SentenceCount, &m.URLCount, &m.TopicCoverage,
		&m.MarkedByAI, &m.VerifiedByTeacher, &m.TeacherID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// SaveMarkingResult stores a mark with its criteria marks and feedback and
// flags the work as marked, all in one transaction. IDs are filled in.
func (r *MarkRepository) SaveMarkingResult(ctx context.Context, mark *models.Mark, criteriaMarks []*models.CriteriaMark, feedback *models.Feedback) error {
	markSQL, markArgs, err := r.sb.Insert("marks").
		Columns("student_work_id", "total_score", "max_score", "percentage", "grade", "word_count",
			"sentence_count", "url_count", "topic_coverage", "marked_by_ai", "verified_by_teacher").
		Values(mark.StudentWorkID, mark.TotalScore, mark.MaxScore, mark.Percentage, mark.Grade, mark.WordCount,
			mark.SentenceCount, mark.URLCount, mark.TopicCoverage, mark.MarkedByAI, mark.VerifiedByTeacher).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create mark SQL")
		return fmt.Errorf("failed to build create mark query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, markSQL, markArgs...).Scan(&mark.ID, &mark.CreatedAt, &mark.UpdatedAt); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrWorkAlreadyMarked
			}
			logger.Error().Err(err).Int64("workID", mark.StudentWorkID).Msg("Error inserting mark")
			return fmt.Errorf("error creating mark: %w", err)
		}

		for _, cm := range criteriaMarks {
			cm.MarkID = mark.ID
			sql, args, err := r.sb.Insert("criteria_marks").
				Columns("mark_id", "criteria_id", "score", "comments").
				Values(cm.MarkID, cm.CriteriaID, cm.Score, cm.Comments).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create criteria mark query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&cm.ID); err != nil {
				logger.Error().Err(err).Int64("markID", mark.ID).Int64("criteriaID", cm.CriteriaID).Msg("Error inserting criteria mark")
				return fmt.Errorf("error creating criteria mark: %w", err)
			}
		}

		if feedback != nil {
			feedback.MarkID = mark.ID
			sql, args, err := r.sb.Insert("feedback").
				Columns("mark_id", "general_comments", "strengths", "areas_for_improvement", "recommendations").
				Values(feedback.MarkID, feedback.GeneralComments, feedback.Strengths, feedback.AreasForImprovement, feedback.Recommendations).
				Suffix("RETURNING id, created_at, updated_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create feedback query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt); err != nil {
				logger.Error().Err(err).Int64("markID", mark.ID).Msg("Error inserting feedback")
				return fmt.Errorf("error creating feedback: %w", err)
			}
		}

		statusSQL, statusArgs, err := r.sb.Update("student_works").
			Set("status", models.WorkStatusMarked).
			Where(squirrel.Eq{"id": mark.StudentWorkID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build mark work query: %w", err)
		}
		if _, err := tx.Exec(ctx, statusSQL, statusArgs...); err != nil {
			logger.Error().Err(err).Int64("workID", mark.StudentWorkID).Msg("Error flagging work as marked")
			return fmt.Errorf("error updating work status: %w", err)
		}
		return nil
	})
}

func (r *MarkRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Mark, error) {
	sql, args, err := r.sb.Select(markColumns...).
		From("marks mk").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get mark query: %w", err)
	}

	mark, err := scanMark(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMarkNotFound
		}
		logger.Error().Err(err).Msg("Error scanning mark row")
		return nil, fmt.Errorf("error getting mark: %w", err)
	}
	return mark, nil
}

// GetByID retrieves a mark
func (r *MarkRepository) GetByID(ctx context.Context, id int64) (*models.Mark, error) {
	return r.getOne(ctx, squirrel.Eq{"mk.id": id})
}

// GetByWorkID retrieves the mark of a student work
func (r *MarkRepository) GetByWorkID(ctx context.Context, workID int64) (*models.Mark, error) {
	return r.getOne(ctx, squirrel.Eq{"mk.student_work_id": workID})
}

// ExistsForWork reports whether a work already has a mark
func (r *MarkRepository) ExistsForWork(ctx context.Context, workID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("marks").
		Where(squirrel.Eq{"student_work_id": workID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build mark exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("workID", workID).Msg("Error checking mark existence")
		return false, fmt.Errorf("error checking mark: %w", err)
	}
	return exists, nil
}

// ListCriteriaMarks returns a mark's criteria marks with criterion names
func (r *MarkRepository) ListCriteriaMarks(ctx context.Context, markID int64) ([]*models.CriteriaMark, error) {
	byMark, err := r.criteriaMarksFor(ctx, []int64{markID})
	if err != nil {
		return nil, err
	}
	if cms, ok := byMark[markID]; ok {
		return cms, nil
	}
	return []*models.CriteriaMark{}, nil
}

func (r *MarkRepository) criteriaMarksFor(ctx context.Context, markIDs []int64) (map[int64][]*models.CriteriaMark, error) {
	sql, args, err := r.sb.Select("cm.id", "cm.mark_id", "cm.criteria_id", "cm.score", "cm.comments", "rc.name", "rc.max_score").
		From("criteria_marks cm").
		Join("rubric_criteria rc ON rc.id = cm.criteria_id").
		Where(squirrel.Eq{"cm.mark_id": markIDs}).
		OrderBy("cm.mark_id ASC", "cm.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list criteria marks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying criteria marks")
		return nil, fmt.Errorf("error querying criteria marks: %w", err)
	}
	defer rows.Close()

	byMark := make(map[int64][]*models.CriteriaMark, len(markIDs))
	for rows.Next() {
		cm := &models.CriteriaMark{}
		if err := rows.Scan(&cm.ID, &cm.MarkID, &cm.CriteriaID, &cm.Score, &cm.Comments, &cm.CriteriaName, &cm.MaxScore); err != nil {
			return nil, fmt.Errorf("error scanning criteria mark row: %w", err)
		}
		byMark[cm.MarkID] = append(byMark[cm.MarkID], cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating criteria mark rows: %w", err)
	}
	return byMark, nil
}

// GetFeedback retrieves the feedback of a mark
func (r *MarkRepository) GetFeedback(ctx context.Context, markID int64) (*models.Feedback, error) {
	sql, args, err := r.sb.Select("id", "mark_id", "COALESCE(general_comments, '')", "COALESCE(strengths, '')",
		"COALESCE(areas_for_improvement, '')", "COALESCE(recommendations, '')", "created_at", "updated_at").
		From("feedback").
		Where(squirrel.Eq{"mark_id": markID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feedback query: %w", err)
	}

	f := &models.Feedback{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.MarkID, &f.GeneralComments, &f.Strengths,
		&f.AreasForImprovement, &f.Recommendations, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("markID", markID).Msg("Error scanning feedback row")
		return nil, fmt.Errorf("error getting feedback: %w", err)
	}
	return f, nil
}

// ListMarkedForAssessment returns the marks, with criteria marks, of an
// assessment's works in status marked
func (r *MarkRepository) ListMarkedForAssessment(ctx context.Context, assessmentID int64) ([]*models.MarkWithCriteria, error) {
	sql, args, err := r.sb.Select(markColumns...).
		From("marks mk").
		Join("student_works w ON w.id = mk.student_work_id").
		Where(squirrel.Eq{"w.assessment_id": assessmentID, "w.status": models.WorkStatusMarked}).
		OrderBy("mk.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list marks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assessmentID", assessmentID).Msg("Error querying assessment marks")
		return nil, fmt.Errorf("error querying marks: %w", err)
	}
	defer rows.Close()

	marks := []*models.MarkWithCriteria{}
	var ids []int64
	for rows.Next() {
		mark, err := scanMark(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning mark row: %w", err)
		}
		marks = append(marks, &models.MarkWithCriteria{Mark: *mark})
		ids = append(ids, mark.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mark rows: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return marks, nil
	}

	byMark, err := r.criteriaMarksFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range marks {
		m.CriteriaMarks = byMark[m.ID]
	}
	return marks, nil
}

// UpdateVerification saves a teacher's verification and any score override
func (r *MarkRepository) UpdateVerification(ctx context.Context, mark *models.Mark) error {
	mark.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("marks").
		SetMap(map[string]interface{}{
			"total_score":         mark.TotalScore,
			"percentage":          mark.Percentage,
			"grade":               mark.Grade,
			"verified_by_teacher": mark.VerifiedByTeacher,
			"teacher_id":          mark.TeacherID,
			"updated_at":          mark.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": mark.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build verify mark query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("markID", mark.ID).Msg("Error executing verify mark query")
		return fmt.Errorf("error verifying mark: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMarkNotFound
	}
	return nil
}
