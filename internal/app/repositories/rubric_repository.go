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
	"github.com/yigit/assessai/internal/pkg/logger"
)

// RubricRepository handles rubrics and their criteria
type RubricRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRubricRepository creates a new RubricRepository
func NewRubricRepository(pool *pgxpool.Pool) *RubricRepository {
	return &RubricRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var rubricColumns = []string{"id", "assessment_id", "title", "description", "file_path", "created_at", "updated_at"}

func (r *RubricRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Rubric, error) {
	sql, args, err := r.sb.Select(rubricColumns...).
		From("rubrics").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get rubric query: %w", err)
	}

	rubric := &models.Rubric{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&rubric.ID, &rubric.AssessmentID, &rubric.Title,
		&rubric.Description, &rubric.FilePath, &rubric.CreatedAt, &rubric.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRubricNotFound
		}
		logger.Error().Err(err).Msg("Error scanning rubric row")
		return nil, fmt.Errorf("error getting rubric: %w", err)
	}
	return rubric, nil
}

// GetByID retrieves a rubric without criteria
func (r *RubricRepository) GetByID(ctx context.Context, id int64) (*models.Rubric, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByAssessmentID retrieves an assessment's rubric together with its criteria
func (r *RubricRepository) GetByAssessmentID(ctx context.Context, assessmentID int64) (*models.Rubric, error) {
	rubric, err := r.getOne(ctx, squirrel.Eq{"assessment_id": assessmentID})
	if err != nil {
		return nil, err
	}
	criteria, err := r.ListCriteria(ctx, rubric.ID)
	if err != nil {
		return nil, err
	}
	rubric.Criteria = criteria
	return rubric, nil
}

// ExistsForAssessment reports whether an assessment has a rubric
func (r *RubricRepository) ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("rubrics").
		Where(squirrel.Eq{"assessment_id": assessmentID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build rubric exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("assessmentID", assessmentID).Msg("Error checking rubric existence")
		return false, fmt.Errorf("error checking rubric: %w", err)
	}
	return exists, nil
}

// ListCriteria returns a rubric's criteria in insertion order
func (r *RubricRepository) ListCriteria(ctx context.Context, rubricID int64) ([]*models.RubricCriteria, error) {
	sql, args, err := r.sb.Select("id", "rubric_id", "name", "description", "weight", "max_score").
		From("rubric_criteria").
		Where(squirrel.Eq{"rubric_id": rubricID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list criteria query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("rubricID", rubricID).Msg("Error querying rubric criteria")
		return nil, fmt.Errorf("error querying rubric criteria: %w", err)
	}
	defer rows.Close()

	criteria := []*models.RubricCriteria{}
	for rows.Next() {
		c := &models.RubricCriteria{}
		if err := rows.Scan(&c.ID, &c.RubricID, &c.Name, &c.Description, &c.Weight, &c.MaxScore); err != nil {
			return nil, fmt.Errorf("error scanning rubric criteria row: %w", err)
		}
		criteria = append(criteria, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rubric criteria rows: %w", err)
	}
	return criteria, nil
}

// Save creates the assessment's rubric or updates the existing one. When
// criteria is non-nil every existing criterion is replaced in the same
// transaction. rubric.ID, timestamps and rubric.Criteria are filled in.
func (r *RubricRepository) Save(ctx context.Context, rubric *models.Rubric, criteria []*models.RubricCriteria) error {
	upsertSQL, upsertArgs, err := r.sb.Insert("rubrics").
		Columns("assessment_id", "title", "description", "file_path").
		Values(rubric.AssessmentID, rubric.Title, rubric.Description, rubric.FilePath).
		Suffix(`ON CONFLICT (assessment_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			file_path = EXCLUDED.file_path,
			updated_at = ?`, time.Now()).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building save rubric SQL")
		return fmt.Errorf("failed to build save rubric query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, upsertSQL, upsertArgs...).Scan(&rubric.ID, &rubric.CreatedAt, &rubric.UpdatedAt); err != nil {
			logger.Error().Err(err).Int64("assessmentID", rubric.AssessmentID).Msg("Error saving rubric")
			return fmt.Errorf("error saving rubric: %w", err)
		}

		if criteria == nil {
			return nil
		}

		deleteSQL, deleteArgs, err := r.sb.Delete("rubric_criteria").Where(squirrel.Eq{"rubric_id": rubric.ID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete criteria query: %w", err)
		}
		if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
			logger.Error().Err(err).Int64("rubricID", rubric.ID).Msg("Error clearing rubric criteria")
			return fmt.Errorf("error clearing rubric criteria: %w", err)
		}

		for _, c := range criteria {
			c.RubricID = rubric.ID
			insertSQL, insertArgs, err := r.sb.Insert("rubric_criteria").
				Columns("rubric_id", "name", "description", "weight", "max_score").
				Values(c.RubricID, c.Name, c.Description, c.Weight, c.MaxScore).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert criteria query: %w", err)
			}
			if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&c.ID); err != nil {
				logger.Error().Err(err).Int64("rubricID", rubric.ID).Str("criterion", c.Name).Msg("Error inserting rubric criterion")
				return fmt.Errorf("error inserting rubric criterion: %w", err)
			}
		}
		rubric.Criteria = criteria
		return nil
	})
}
