package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/validation"
)

// WebsiteService manages the admin customisable parts of the public site
type WebsiteService interface {
	Overview(ctx context.Context) (*dto.WebsiteOverviewResponse, error)

	ListSections(ctx context.Context) ([]*models.WebsiteSection, error)
	GetSection(ctx context.Context, id int64) (*models.WebsiteSection, error)
	CreateSection(ctx context.Context, userID int64, req *dto.SectionRequest) (*models.WebsiteSection, error)
	UpdateSection(ctx context.Context, id int64, req *dto.SectionRequest) (*models.WebsiteSection, error)
	DeleteSection(ctx context.Context, id int64) error
	SaveSectionContent(ctx context.Context, id int64, content json.RawMessage) error

	ListTemplates(ctx context.Context) ([]*models.Template, error)
	GetTemplate(ctx context.Context, id int64) (*models.Template, error)
	CreateTemplate(ctx context.Context, req *dto.TemplateRequest) (*models.Template, error)
	UpdateTemplate(ctx context.Context, id int64, req *dto.TemplateRequest) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id int64) error

	ListLayouts(ctx context.Context) ([]*models.PageLayout, error)
	GetLayout(ctx context.Context, id int64) (*models.PageLayout, error)
	CreateLayout(ctx context.Context, userID int64, req *dto.LayoutRequest) (*models.PageLayout, error)
	UpdateLayout(ctx context.Context, id int64, req *dto.LayoutRequest) (*models.PageLayout, error)
	DeleteLayout(ctx context.Context, id int64) error
	SaveLayout(ctx context.Context, id int64, sections json.RawMessage) error
}

type websiteServiceImpl struct {
	store  WebsiteStore
	logger zerolog.Logger
}

// NewWebsiteService creates a new WebsiteService
func NewWebsiteService(store WebsiteStore, logger zerolog.Logger) WebsiteService {
	return &websiteServiceImpl{store: store, logger: logger}
}

func validateName(name string) error {
	if !validation.NewStringValidation(name).WithMaxLength(128).Validate() {
		return fmt.Errorf("%w: name is required and must be at most 128 characters", apperrors.ErrValidationFailed)
	}
	return nil
}

// validJSON rejects missing or malformed JSON documents
func validJSON(field string, raw json.RawMessage) error {
	if len(raw) == 0 || !json.Valid(raw) {
		return fmt.Errorf("%w: %s must be valid JSON", apperrors.ErrValidationFailed, field)
	}
	return nil
}

// validLayout requires sections to be a JSON array
func validLayout(raw json.RawMessage) error {
	var sections []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &sections) != nil || sections == nil {
		return apperrors.ErrInvalidLayoutFormat
	}
	return nil
}

// Overview returns every section, template and layout with their counts
func (s *websiteServiceImpl) Overview(ctx context.Context) (*dto.WebsiteOverviewResponse, error) {
	sections, err := s.store.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	layouts, err := s.store.ListLayouts(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.WebsiteOverviewResponse{
		SectionCount:  len(sections),
		TemplateCount: len(templates),
		LayoutCount:   len(layouts),
		Sections:      sections,
		Templates:     templates,
		Layouts:       layouts,
	}, nil
}

func (s *websiteServiceImpl) ListSections(ctx context.Context) ([]*models.WebsiteSection, error) {
	return s.store.ListSections(ctx)
}

func (s *websiteServiceImpl) GetSection(ctx context.Context, id int64) (*models.WebsiteSection, error) {
	return s.store.GetSection(ctx, id)
}

func (s *websiteServiceImpl) CreateSection(ctx context.Context, userID int64, req *dto.SectionRequest) (*models.WebsiteSection, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validJSON("content", req.Content); err != nil {
		return nil, err
	}

	section := &models.WebsiteSection{
		Name:         name,
		Description:  trimmedOrNil(req.Description),
		Content:      req.Content,
		DisplayOrder: req.DisplayOrder,
		IsActive:     dto.BoolOrDefault(req.IsActive, true),
		CreatedBy:    userID,
	}
	if err := s.store.CreateSection(ctx, section); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sectionID", section.ID).Int64("userID", userID).Msg("Website section created")
	return section, nil
}

func (s *websiteServiceImpl) UpdateSection(ctx context.Context, id int64, req *dto.SectionRequest) (*models.WebsiteSection, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validJSON("content", req.Content); err != nil {
		return nil, err
	}

	section, err := s.store.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	section.Name = name
	section.Description = trimmedOrNil(req.Description)
	section.Content = req.Content
	section.DisplayOrder = req.DisplayOrder
	section.IsActive = dto.BoolOrDefault(req.IsActive, section.IsActive)

	if err := s.store.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *websiteServiceImpl) DeleteSection(ctx context.Context, id int64) error {
	return s.store.DeleteSection(ctx, id)
}

// SaveSectionContent replaces only a section's content
func (s *websiteServiceImpl) SaveSectionContent(ctx context.Context, id int64, content json.RawMessage) error {
	if err := validJSON("content", content); err != nil {
		return err
	}
	return s.store.UpdateSectionContent(ctx, id, content)
}

func (s *websiteServiceImpl) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	return s.store.ListTemplates(ctx)
}

func (s *websiteServiceImpl) GetTemplate(ctx context.Context, id int64) (*models.Template, error) {
	return s.store.GetTemplate(ctx, id)
}

func (s *websiteServiceImpl) CreateTemplate(ctx context.Context, req *dto.TemplateRequest) (*models.Template, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validJSON("templateData", req.TemplateData); err != nil {
		return nil, err
	}

	tmpl := &models.Template{
		Name:         name,
		Description:  trimmedOrNil(req.Description),
		TemplateData: req.TemplateData,
		IsActive:     dto.BoolOrDefault(req.IsActive, true),
	}
	if err := s.store.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("templateID", tmpl.ID).Msg("Template created")
	return tmpl, nil
}

func (s *websiteServiceImpl) UpdateTemplate(ctx context.Context, id int64, req *dto.TemplateRequest) (*models.Template, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validJSON("templateData", req.TemplateData); err != nil {
		return nil, err
	}

	tmpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.Name = name
	tmpl.Description = trimmedOrNil(req.Description)
	tmpl.TemplateData = req.TemplateData
	tmpl.IsActive = dto.BoolOrDefault(req.IsActive, tmpl.IsActive)

	if err := s.store.UpdateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *websiteServiceImpl) DeleteTemplate(ctx context.Context, id int64) error {
	return s.store.DeleteTemplate(ctx, id)
}

func (s *websiteServiceImpl) ListLayouts(ctx context.Context) ([]*models.PageLayout, error) {
	return s.store.ListLayouts(ctx)
}

func (s *websiteServiceImpl) GetLayout(ctx context.Context, id int64) (*models.PageLayout, error) {
	return s.store.GetLayout(ctx, id)
}

func (s *websiteServiceImpl) CreateLayout(ctx context.Context, userID int64, req *dto.LayoutRequest) (*models.PageLayout, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validLayout(req.Sections); err != nil {
		return nil, err
	}

	layout := &models.PageLayout{
		Name:        name,
		Description: trimmedOrNil(req.Description),
		Sections:    req.Sections,
		IsActive:    dto.BoolOrDefault(req.IsActive, true),
		CreatedBy:   userID,
	}
	if err := s.store.CreateLayout(ctx, layout); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("layoutID", layout.ID).Int64("userID", userID).Msg("Page layout created")
	return layout, nil
}

func (s *websiteServiceImpl) UpdateLayout(ctx context.Context, id int64, req *dto.LayoutRequest) (*models.PageLayout, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validLayout(req.Sections); err != nil {
		return nil, err
	}

	layout, err := s.store.GetLayout(ctx, id)
	if err != nil {
		return nil, err
	}
	layout.Name = name
	layout.Description = trimmedOrNil(req.Description)
	layout.Sections = req.Sections
	layout.IsActive = dto.BoolOrDefault(req.IsActive, layout.IsActive)

	if err := s.store.UpdateLayout(ctx, layout); err != nil {
		return nil, err
	}
	return layout, nil
}

func (s *websiteServiceImpl) DeleteLayout(ctx context.Context, id int64) error {
	return s.store.DeleteLayout(ctx, id)
}

// SaveLayout replaces only a layout's section arrangement
func (s *websiteServiceImpl) SaveLayout(ctx context.Context, id int64, sections json.RawMessage) error {
	if err := validLayout(sections); err != nil {
		return err
	}
	if err := s.store.UpdateLayoutSections(ctx, id, sections); err != nil {
		return err
	}
	s.logger.Info().Int64("layoutID", id).Msg("Page layout saved")
	return nil
}
