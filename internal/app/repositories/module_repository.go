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

// ModuleRepository handles module database operations
type ModuleRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewModuleRepository creates a new ModuleRepository
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ModuleRepository) selectModules() squirrel.SelectBuilder {
	return r.sb.Select(
		"m.id", "m.name", "m.code", "m.description", "m.category_id", "m.created_by",
		"m.created_at", "m.updated_at", "c.name",
	).
		From("modules m").
		Join("categories c ON c.id = m.category_id")
}

func scanModule(row pgx.Row) (*models.Module, error) {
	m := &models.Module{}
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.Description, &m.CategoryID, &m.CreatedBy,
		&m.CreatedAt, &m.UpdatedAt, &m.CategoryName)
	return m, err
}

// Create inserts a module and fills in its ID and timestamps
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	sql, args, err := r.sb.Insert("modules").
		Columns("name", "code", "description", "category_id", "created_by").
		Values(module.Name, module.Code, module.Description, module.CategoryID, module.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create module SQL")
		return fmt.Errorf("failed to build create module query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&module.ID, &module.CreatedAt, &module.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrInvalidCategory
		}
		logger.Error().Err(err).Msg("Error executing create module query")
		return fmt.Errorf("error creating module: %w", err)
	}
	return nil
}

// GetByID retrieves a module with its category name
func (r *ModuleRepository) GetByID(ctx context.Context, id int64) (*models.Module, error) {
	sql, args, err := r.selectModules().
		Where(squirrel.Eq{"m.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get module query: %w", err)
	}

	module, err := scanModule(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrModuleNotFound
		}
		logger.Error().Err(err).Int64("moduleID", id).Msg("Error scanning module row")
		return nil, fmt.Errorf("error getting module by ID: %w", err)
	}
	return module, nil
}

// ListByOwner returns a user's modules ordered by name, optionally within one category
func (r *ModuleRepository) ListByOwner(ctx context.Context, ownerID int64, categoryID *int64) ([]*models.Module, error) {
	query := r.selectModules().
		Where(squirrel.Eq{"m.created_by": ownerID}).
		OrderBy("m.name ASC")
	if categoryID != nil {
		query = query.Where(squirrel.Eq{"m.category_id": *categoryID})
	}
	return r.list(ctx, query)
}

// ListByCategory returns the modules of a category ordered by name
func (r *ModuleRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Module, error) {
	return r.list(ctx, r.selectModules().
		Where(squirrel.Eq{"m.category_id": categoryID}).
		OrderBy("m.name ASC"))
}

func (r *ModuleRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Module, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list modules query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list modules query")
		return nil, fmt.Errorf("error querying modules: %w", err)
	}
	defer rows.Close()

	modules := []*models.Module{}
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning module row: %w", err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating module rows: %w", err)
	}
	return modules, nil
}

// Update saves a module's editable fields
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	sql, args, err := r.sb.Update("modules").
		SetMap(map[string]interface{}{
			"name":        module.Name,
			"code":        module.Code,
			"description": module.Description,
			"category_id": module.CategoryID,
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": module.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update module query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrInvalidCategory
		}
		logger.Error().Err(err).Int64("moduleID", module.ID).Msg("Error executing update module query")
		return fmt.Errorf("error updating module: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrModuleNotFound
	}
	return nil
}

// Delete removes a module; its assessments cascade
func (r *ModuleRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("modules").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete module query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("moduleID", id).Msg("Error executing delete module query")
		return fmt.Errorf("error deleting module: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrModuleNotFound
	}
	return nil
}
