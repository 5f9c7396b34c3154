package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/db"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// RecommendationRepository stores teaching recommendations
type RecommendationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRecommendationRepository creates a new RecommendationRepository
func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateBatch inserts recommendations in one transaction and fills in their IDs
func (r *RecommendationRepository) CreateBatch(ctx context.Context, recs []*models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, rec := range recs {
			sql, args, err := r.sb.Insert("recommendations").
				Columns("assessment_id", "module_id", "analytics_id", "recommendation_text", "recommendation_type", "priority").
				Values(rec.AssessmentID, rec.ModuleID, rec.AnalyticsID, rec.RecommendationText, rec.RecommendationType, rec.Priority).
				Suffix("RETURNING id, created_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create recommendation query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&rec.ID, &rec.CreatedAt); err != nil {
				logger.Error().Err(err).Int64("assessmentID", rec.AssessmentID).Msg("Error inserting recommendation")
				return fmt.Errorf("error creating recommendation: %w", err)
			}
		}
		return nil
	})
}

func (r *RecommendationRepository) selectRecommendations() squirrel.SelectBuilder {
	return r.sb.Select("r.id", "r.assessment_id", "r.module_id", "r.analytics_id", "r.recommendation_text",
		"r.recommendation_type", "r.priority", "r.created_at").
		From("recommendations r")
}

// ListByAssessment returns an assessment's recommendations, most urgent first
func (r *RecommendationRepository) ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.Recommendation, error) {
	return r.list(ctx, r.selectRecommendations().
		Where(squirrel.Eq{"r.assessment_id": assessmentID}).
		OrderBy("r.priority ASC", "r.created_at DESC", "r.id ASC"))
}

// RecentForOwner returns the latest recommendations for a user's modules
func (r *RecommendationRepository) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Recommendation, error) {
	return r.list(ctx, r.selectRecommendations().
		Join("modules m ON m.id = r.module_id").
		Where(squirrel.Eq{"m.created_by": ownerID}).
		OrderBy("r.created_at DESC", "r.id DESC").
		Limit(uint64(limit)))
}

func (r *RecommendationRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Recommendation, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list recommendations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying recommendations")
		return nil, fmt.Errorf("error querying recommendations: %w", err)
	}
	defer rows.Close()

	recs := []*models.Recommendation{}
	for rows.Next() {
		rec := &models.Recommendation{}
		if err := rows.Scan(&rec.ID, &rec.AssessmentID, &rec.ModuleID, &rec.AnalyticsID, &rec.RecommendationText,
			&rec.RecommendationType, &rec.Priority, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation rows: %w", err)
	}
	return recs, nil
}
