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
	"github.com/yigit/assessai/internal/pkg/logger"
)

// AnalyticsRepository stores analytics snapshots
type AnalyticsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an analytics snapshot and fills in its ID
func (r *AnalyticsRepository) Create(ctx context.Context, data *models.AnalyticsData) error {
	sql, args, err := r.sb.Insert("analytics_data").
		Columns("assessment_id", "data_type", "data").
		Values(data.AssessmentID, data.DataType, data.Data).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create analytics SQL")
		return fmt.Errorf("failed to build create analytics query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&data.ID, &data.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("assessmentID", data.AssessmentID).Msg("Error executing create analytics query")
		return fmt.Errorf("error creating analytics: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*models.AnalyticsData, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get analytics query: %w", err)
	}

	data := &models.AnalyticsData{}
	var raw []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(&data.ID, &data.AssessmentID, &data.DataType, &raw, &data.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnalyticsNotFound
		}
		logger.Error().Err(err).Msg("Error scanning analytics row")
		return nil, fmt.Errorf("error getting analytics: %w", err)
	}
	data.Data = raw
	return data, nil
}

func (r *AnalyticsRepository) selectAnalytics() squirrel.SelectBuilder {
	return r.sb.Select("id", "assessment_id", "data_type", "data", "created_at").From("analytics_data")
}

// GetByID retrieves an analytics snapshot
func (r *AnalyticsRepository) GetByID(ctx context.Context, id int64) (*models.AnalyticsData, error) {
	return r.getOne(ctx, r.selectAnalytics().Where(squirrel.Eq{"id": id}))
}

// LatestForAssessment retrieves the newest snapshot of an assessment
func (r *AnalyticsRepository) LatestForAssessment(ctx context.Context, assessmentID int64) (*models.AnalyticsData, error) {
	return r.getOne(ctx, r.selectAnalytics().
		Where(squirrel.Eq{"assessment_id": assessmentID}).
		OrderBy("created_at DESC", "id DESC"))
}

// DeleteOlderThan removes snapshots created before cutoff and returns how many were removed
func (r *AnalyticsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("analytics_data").
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete analytics query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Time("cutoff", cutoff).Msg("Error deleting old analytics")
		return 0, fmt.Errorf("error deleting old analytics: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
