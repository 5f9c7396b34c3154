package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/db"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// SettingsRepository reads and writes the system_settings key/value table
type SettingsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll returns every stored setting as raw JSON keyed by name
func (r *SettingsRepository) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	sql, args, err := r.sb.Select("key", "value").From("system_settings").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get settings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying system settings")
		return nil, fmt.Errorf("error querying system settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("error scanning system setting: %w", err)
		}
		settings[key] = json.RawMessage(value)
	}
	return settings, rows.Err()
}

// SaveAll upserts every given setting in one transaction
func (r *SettingsRepository) SaveAll(ctx context.Context, settings map[string]json.RawMessage) error {
	now := time.Now()
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for key, value := range settings {
			sql, args, err := r.sb.Insert("system_settings").
				Columns("key", "value", "updated_at").
				Values(key, value, now).
				Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build save setting query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				logger.Error().Err(err).Str("key", key).Msg("Error saving system setting")
				return fmt.Errorf("error saving setting %s: %w", key, err)
			}
		}
		return nil
	})
}
