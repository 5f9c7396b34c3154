package repositories

import (
	"context"
	"encoding/json"
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

// WebsiteRepository handles website sections, templates and page layouts
type WebsiteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewWebsiteRepository creates a new WebsiteRepository
func NewWebsiteRepository(pool *pgxpool.Pool) *WebsiteRepository {
	return &WebsiteRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// exec runs a write statement and maps zero affected rows to notFound
func (r *WebsiteRepository) exec(ctx context.Context, query squirrel.Sqlizer, notFound error) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build website query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing website query")
		return fmt.Errorf("error executing website query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// --- Sections ---

var sectionColumns = []string{"id", "name", "description", "content", "display_order", "is_active", "created_by", "created_at", "updated_at"}

func scanSection(row pgx.Row) (*models.WebsiteSection, error) {
	s := &models.WebsiteSection{}
	var content []byte
	err := row.Scan(&s.ID, &s.Name, &s.Description, &content, &s.DisplayOrder, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	s.Content = json.RawMessage(content)
	return s, err
}

// CreateSection inserts a website section
func (r *WebsiteRepository) CreateSection(ctx context.Context, section *models.WebsiteSection) error {
	sql, args, err := r.sb.Insert("website_sections").
		Columns("name", "description", "content", "display_order", "is_active", "created_by").
		Values(section.Name, section.Description, section.Content, section.DisplayOrder, section.IsActive, section.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create section query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error creating website section")
		return fmt.Errorf("error creating website section: %w", err)
	}
	return nil
}

// GetSection retrieves a website section
func (r *WebsiteRepository) GetSection(ctx context.Context, id int64) (*models.WebsiteSection, error) {
	sql, args, err := r.sb.Select(sectionColumns...).From("website_sections").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get section query: %w", err)
	}
	section, err := scanSection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		logger.Error().Err(err).Int64("sectionID", id).Msg("Error scanning website section")
		return nil, fmt.Errorf("error getting website section: %w", err)
	}
	return section, nil
}

// ListSections returns all sections by display order
func (r *WebsiteRepository) ListSections(ctx context.Context) ([]*models.WebsiteSection, error) {
	sql, args, err := r.sb.Select(sectionColumns...).From("website_sections").OrderBy("display_order ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sections query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying website sections")
		return nil, fmt.Errorf("error querying website sections: %w", err)
	}
	defer rows.Close()

	sections := []*models.WebsiteSection{}
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning website section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

// UpdateSection saves every editable section field
func (r *WebsiteRepository) UpdateSection(ctx context.Context, section *models.WebsiteSection) error {
	return r.exec(ctx, r.sb.Update("website_sections").
		SetMap(map[string]interface{}{
			"name":          section.Name,
			"description":   section.Description,
			"content":       section.Content,
			"display_order": section.DisplayOrder,
			"is_active":     section.IsActive,
			"updated_at":    time.Now(),
		}).
		Where(squirrel.Eq{"id": section.ID}), apperrors.ErrSectionNotFound)
}

// UpdateSectionContent replaces only the section content
func (r *WebsiteRepository) UpdateSectionContent(ctx context.Context, id int64, content json.RawMessage) error {
	return r.exec(ctx, r.sb.Update("website_sections").
		Set("content", content).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}), apperrors.ErrSectionNotFound)
}

// DeleteSection removes a website section
func (r *WebsiteRepository) DeleteSection(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("website_sections").Where(squirrel.Eq{"id": id}), apperrors.ErrSectionNotFound)
}

// --- Templates ---

var templateColumns = []string{"id", "name", "description", "template_data", "is_active", "created_at", "updated_at"}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	t := &models.Template{}
	var data []byte
	err := row.Scan(&t.ID, &t.Name, &t.Description, &data, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	t.TemplateData = json.RawMessage(data)
	return t, err
}

// CreateTemplate inserts a template
func (r *WebsiteRepository) CreateTemplate(ctx context.Context, tmpl *models.Template) error {
	sql, args, err := r.sb.Insert("templates").
		Columns("name", "description", "template_data", "is_active").
		Values(tmpl.Name, tmpl.Description, tmpl.TemplateData, tmpl.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create template query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error creating template")
		return fmt.Errorf("error creating template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template
func (r *WebsiteRepository) GetTemplate(ctx context.Context, id int64) (*models.Template, error) {
	sql, args, err := r.sb.Select(templateColumns...).From("templates").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get template query: %w", err)
	}
	tmpl, err := scanTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTemplateNotFound
		}
		logger.Error().Err(err).Int64("templateID", id).Msg("Error scanning template")
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	return tmpl, nil
}

// ListTemplates returns all templates by name
func (r *WebsiteRepository) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	sql, args, err := r.sb.Select(templateColumns...).From("templates").OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list templates query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying templates")
		return nil, fmt.Errorf("error querying templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// UpdateTemplate saves every editable template field
func (r *WebsiteRepository) UpdateTemplate(ctx context.Context, tmpl *models.Template) error {
	return r.exec(ctx, r.sb.Update("templates").
		SetMap(map[string]interface{}{
			"name":          tmpl.Name,
			"description":   tmpl.Description,
			"template_data": tmpl.TemplateData,
			"is_active":     tmpl.IsActive,
			"updated_at":    time.Now(),
		}).
		Where(squirrel.Eq{"id": tmpl.ID}), apperrors.ErrTemplateNotFound)
}

// DeleteTemplate removes a template
func (r *WebsiteRepository) DeleteTemplate(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("templates").Where(squirrel.Eq{"id": id}), apperrors.ErrTemplateNotFound)
}

// --- Layouts ---

var layoutColumns = []string{"id", "name", "description", "sections", "is_active", "created_by", "created_at", "updated_at"}

func scanLayout(row pgx.Row) (*models.PageLayout, error) {
	l := &models.PageLayout{}
	var sections []byte
	err := row.Scan(&l.ID, &l.Name, &l.Description, &sections, &l.IsActive, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	l.Sections = json.RawMessage(sections)
	return l, err
}

// CreateLayout inserts a page layout
func (r *WebsiteRepository) CreateLayout(ctx context.Context, layout *models.PageLayout) error {
	sql, args, err := r.sb.Insert("page_layouts").
		Columns("name", "description", "sections", "is_active", "created_by").
		Values(layout.Name, layout.Description, layout.Sections, layout.IsActive, layout.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create layout query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&layout.ID, &layout.CreatedAt, &layout.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error creating page layout")
		return fmt.Errorf("error creating page layout: %w", err)
	}
	return nil
}

// GetLayout retrieves a page layout
func (r *WebsiteRepository) GetLayout(ctx context.Context, id int64) (*models.PageLayout, error) {
	sql, args, err := r.sb.Select(layoutColumns...).From("page_layouts").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get layout query: %w", err)
	}
	layout, err := scanLayout(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLayoutNotFound
		}
		logger.Error().Err(err).Int64("layoutID", id).Msg("Error scanning page layout")
		return nil, fmt.Errorf("error getting page layout: %w", err)
	}
	return layout, nil
}

// ListLayouts returns all page layouts by name
func (r *WebsiteRepository) ListLayouts(ctx context.Context) ([]*models.PageLayout, error) {
	sql, args, err := r.sb.Select(layoutColumns...).From("page_layouts").OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list layouts query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying page layouts")
		return nil, fmt.Errorf("error querying page layouts: %w", err)
	}
	defer rows.Close()

	layouts := []*models.PageLayout{}
	for rows.Next() {
		layout, err := scanLayout(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning page layout: %w", err)
		}
		layouts = append(layouts, layout)
	}
	return layouts, rows.Err()
}

// UpdateLayout saves every editable layout field
func (r *WebsiteRepository) UpdateLayout(ctx context.Context, layout *models.PageLayout) error {
	return r.exec(ctx, r.sb.Update("page_layouts").
		SetMap(map[string]interface{}{
			"name":        layout.Name,
			"description": layout.Description,
			"sections":    layout.Sections,
			"is_active":   layout.IsActive,
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": layout.ID}), apperrors.ErrLayoutNotFound)
}

// UpdateLayoutSections replaces only the layout's section arrangement
func (r *WebsiteRepository) UpdateLayoutSections(ctx context.Context, id int64, sections json.RawMessage) error {
	return r.exec(ctx, r.sb.Update("page_layouts").
		Set("sections", sections).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}), apperrors.ErrLayoutNotFound)
}

// DeleteLayout removes a page layout
func (r *WebsiteRepository) DeleteLayout(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("page_layouts").Where(squirrel.Eq{"id": id}), apperrors.ErrLayoutNotFound)
}
