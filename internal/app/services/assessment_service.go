package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/filestorage"
	"github.com/yigit/assessai/internal/pkg/marking"
	"github.com/yigit/assessai/internal/pkg/queue"
	"github.com/yigit/assessai/internal/pkg/validation"
)

// Stored weight and maximum of every criterion parsed from a rubric
const (
	parsedCriterionWeight   = 1.0
	parsedCriterionMaxScore = 10.0
)

// AssessmentService manages briefs, rubrics and student work
type AssessmentService interface {
	ListAssessments(ctx context.Context, actor authz.Actor) ([]*models.AssessmentBrief, error)
	CreateAssessment(ctx context.Context, actor authz.Actor, req *dto.CreateAssessmentRequest, brief *multipart.FileHeader) (*models.AssessmentBrief, error)
	GetAssessment(ctx context.Context, actor authz.Actor, id int64) (*dto.AssessmentDetailResponse, error)
	UpdateAssessment(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateAssessmentRequest) (*models.AssessmentBrief, error)
	DeleteAssessment(ctx context.Context, actor authz.Actor, id int64) error

	GetRubric(ctx context.Context, actor authz.Actor, assessmentID int64) (*models.Rubric, error)
	SaveRubric(ctx context.Context, actor authz.Actor, assessmentID int64, req *dto.RubricUploadRequest, file *multipart.FileHeader) (*dto.RubricResponse, error)

	ListWorks(ctx context.Context, actor authz.Actor, assessmentID int64) ([]*models.StudentWork, error)
	UploadWork(ctx context.Context, actor authz.Actor, assessmentID int64, req *dto.UploadWorkRequest, file *multipart.FileHeader) (*dto.UploadWorkResponse, error)
	GetWork(ctx context.Context, actor authz.Actor, assessmentID, workID int64) (*dto.WorkDetailResponse, error)

	GetAnalytics(ctx context.Context, actor authz.Actor, assessmentID int64) (*models.AnalyticsData, error)
	ListRecommendations(ctx context.Context, actor authz.Actor, assessmentID int64) ([]*models.Recommendation, error)
	VerifyMark(ctx context.Context, actor authz.Actor, markID int64, req *dto.VerifyMarkRequest) (*models.Mark, error)
}

type assessmentServiceImpl struct {
	assessments     AssessmentStore
	rubrics         RubricStore
	works           WorkStore
	marks           MarkStore
	analytics       AnalyticsStore
	recommendations RecommendationStore
	settings        SettingsService
	storage         filestorage.FileStorage
	enqueuer        queue.Enqueuer
	authz           *authz.AuthorizationService
	logger          zerolog.Logger
}

// AssessmentDeps groups the collaborators of the assessment service
type AssessmentDeps struct {
	Assessments     AssessmentStore
	Rubrics         RubricStore
	Works           WorkStore
	Marks           MarkStore
	Analytics       AnalyticsStore
	Recommendations RecommendationStore
	Settings        SettingsService
	Storage         filestorage.FileStorage
	Enqueuer        queue.Enqueuer
	Authz           *authz.AuthorizationService
}

// NewAssessmentService creates a new AssessmentService
func NewAssessmentService(deps AssessmentDeps, logger zerolog.Logger) AssessmentService {
	return &assessmentServiceImpl{
		assessments:     deps.Assessments,
		rubrics:         deps.Rubrics,
		works:           deps.Works,
		marks:           deps.Marks,
		analytics:       deps.Analytics,
		recommendations: deps.Recommendations,
		settings:        deps.Settings,
		storage:         deps.Storage,
		enqueuer:        deps.Enqueuer,
		authz:           deps.Authz,
		logger:          logger,
	}
}

// storeUpload checks an upload against the current settings and stores it under subdir
func (s *assessmentServiceImpl) storeUpload(ctx context.Context, file *multipart.FileHeader, subdir string) (string, error) {
	if file == nil {
		return "", apperrors.ErrFileRequired
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}

	ext := filestorage.Extension(file.Filename)
	if !extensionAllowed(ext, settings.AllowedExtensions()) {
		return "", fmt.Errorf("%w: %s files are not accepted, allowed types are %s",
			apperrors.ErrFileTypeNotAllowed, ext, settings.AllowedFileTypes)
	}
	if file.Size > settings.MaxFileSizeBytes() {
		return "", fmt.Errorf("%w: limit is %d MB", apperrors.ErrFileTooLarge, settings.MaxFileSizeMB)
	}

	key, err := s.storage.Save(ctx, file, subdir)
	if err != nil {
		return "", fmt.Errorf("error storing uploaded file: %w", err)
	}
	return key, nil
}

// discard deletes a stored file, logging failures
func (s *assessmentServiceImpl) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete stored file")
	}
}

// ListAssessments returns assessments in the caller's modules ordered by title
func (s *assessmentServiceImpl) ListAssessments(ctx context.Context, actor authz.Actor) ([]*models.AssessmentBrief, error) {
	return s.assessments.ListByOwner(ctx, actor.UserID)
}

// CreateAssessment stores the brief file and creates the assessment in an owned module
func (s *assessmentServiceImpl) CreateAssessment(ctx context.Context, actor authz.Actor, req *dto.CreateAssessmentRequest, brief *multipart.FileHeader) (*models.AssessmentBrief, error) {
	title := strings.TrimSpace(req.Title)
	if !validation.NewStringValidation(title).WithMaxLength(255).Validate() {
		return nil, fmt.Errorf("%w: title is required and must be at most 255 characters", apperrors.ErrValidationFailed)
	}

	module, err := s.authz.OwnedModule(ctx, actor, req.ModuleID)
	if err != nil {
		return nil, err
	}

	key, err := s.storeUpload(ctx, brief, filestorage.DirBriefs)
	if err != nil {
		return nil, err
	}

	assessment := &models.AssessmentBrief{
		Title:       title,
		Description: optionalString(req.Description),
		ModuleID:    module.ID,
		FilePath:    key,
		CreatedBy:   actor.UserID,
		IsActive:    true,
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	assessment.ModuleName = module.Name
	assessment.ModuleCode = module.Code

	s.logger.Info().Int64("assessmentID", assessment.ID).Int64("userID", actor.UserID).Msg("Assessment created")
	return assessment, nil
}

// GetAssessment returns an owned assessment with its works and status counts
func (s *assessmentServiceImpl) GetAssessment(ctx context.Context, actor authz.Actor, id int64) (*dto.AssessmentDetailResponse, error) {
	assessment, err := s.authz.OwnedAssessment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	hasRubric, err := s.rubrics.ExistsForAssessment(ctx, id)
	if err != nil {
		return nil, err
	}

	works, err := s.works.ListByAssessment(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.AssessmentDetailResponse{
		Assessment: assessment,
		HasRubric:  hasRubric,
		Works:      works,
	}
	for _, w := range works {
		resp.StatusCounts.Add(w.Status)
	}
	return resp, nil
}

// UpdateAssessment edits title, description and the active flag
func (s *assessmentServiceImpl) UpdateAssessment(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateAssessmentRequest) (*models.AssessmentBrief, error) {
	title := strings.TrimSpace(req.Title)
	if !validation.NewStringValidation(title).WithMaxLength(255).Validate() {
		return nil, fmt.Errorf("%w: title is required and must be at most 255 characters", apperrors.ErrValidationFailed)
	}

	assessment, err := s.authz.OwnedAssessment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	assessment.Title = title
	assessment.Description = trimmedOrNil(req.Description)
	assessment.IsActive = dto.BoolOrDefault(req.IsActive, assessment.IsActive)
	if err := s.assessments.Update(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

// DeleteAssessment deletes the assessment and then, best effort, its files
func (s *assessmentServiceImpl) DeleteAssessment(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.authz.OwnedAssessment(ctx, actor, id); err != nil {
		return err
	}

	paths, err := s.assessments.FilePaths(ctx, id)
	if err != nil {
		return err
	}

	if err := s.assessments.Delete(ctx, id); err != nil {
		return err
	}

	for _, p := range paths {
		s.discard(ctx, p)
	}

	s.logger.Info().Int64("assessmentID", id).Int("files", len(paths)).Msg("Assessment deleted")
	return nil
}

// GetRubric returns the rubric of an owned assessment with its criteria
func (s *assessmentServiceImpl) GetRubric(ctx context.Context, actor authz.Actor, assessmentID int64) (*models.Rubric, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}
	return s.rubrics.GetByAssessmentID(ctx, assessmentID)
}

// SaveRubric creates or replaces the assessment's rubric file and re-derives its
// criteria. When the file cannot be read the rubric is kept and a warning returned.
func (s *assessmentServiceImpl) SaveRubric(ctx context.Context, actor authz.Actor, assessmentID int64, req *dto.RubricUploadRequest, file *multipart.FileHeader) (*dto.RubricResponse, error) {
	title := strings.TrimSpace(req.Title)
	if !validation.NewStringValidation(title).WithMaxLength(255).Validate() {
		return nil, fmt.Errorf("%w: title is required and must be at most 255 characters", apperrors.ErrValidationFailed)
	}

	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}

	existing, err := s.rubrics.GetByAssessmentID(ctx, assessmentID)
	if err != nil && !errors.Is(err, apperrors.ErrRubricNotFound) {
		return nil, err
	}

	key, err := s.storeUpload(ctx, file, filestorage.DirRubrics)
	if err != nil {
		return nil, err
	}

	rubric := &models.Rubric{
		AssessmentID: assessmentID,
		Title:        title,
		Description:  optionalString(req.Description),
		FilePath:     key,
	}

	resp := &dto.RubricResponse{Rubric: rubric}
	var criteria []*models.RubricCriteria
	text, err := filestorage.ReadText(ctx, s.storage, key)
	if err != nil {
		s.logger.Warn().Err(err).Int64("assessmentID", assessmentID).Msg("Failed to read rubric for criteria extraction")
		resp.Warning = "Rubric saved, but its criteria could not be extracted: " + err.Error()
	} else {
		criteria = criteriaFromAnalysis(marking.ProcessRubric(text))
	}

	if err := s.rubrics.Save(ctx, rubric, criteria); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	if criteria != nil {
		rubric.Criteria = criteria
	} else if existing != nil {
		rubric.Criteria = existing.Criteria
	}

	if existing != nil && existing.FilePath != "" && existing.FilePath != key {
		s.discard(ctx, existing.FilePath)
	}

	s.logger.Info().Int64("assessmentID", assessmentID).Int("criteria", len(rubric.Criteria)).Msg("Rubric saved")
	return resp, nil
}

// criteriaFromAnalysis converts parsed criteria into rows to store
func criteriaFromAnalysis(analysis marking.RubricAnalysis) []*models.RubricCriteria {
	criteria := make([]*models.RubricCriteria, 0, len(analysis.Criteria))
	for _, c := range analysis.Criteria {
		criteria = append(criteria, &models.RubricCriteria{
			Name:        c.Name,
			Description: optionalString(c.Description),
			Weight:      parsedCriterionWeight,
			MaxScore:    parsedCriterionMaxScore,
		})
	}
	return criteria
}

// ListWorks lists an owned assessment's works, newest first
func (s *assessmentServiceImpl) ListWorks(ctx context.Context, actor authz.Actor, assessmentID int64) ([]*models.StudentWork, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}
	return s.works.ListByAssessment(ctx, assessmentID)
}

// UploadWork stores a submission and optionally schedules its marking
func (s *assessmentServiceImpl) UploadWork(ctx context.Context, actor authz.Actor, assessmentID int64, req *dto.UploadWorkRequest, file *multipart.FileHeader) (*dto.UploadWorkResponse, error) {
	studentName := strings.TrimSpace(req.StudentName)
	studentID := strings.TrimSpace(req.StudentID)
	if !validation.NewStringValidation(studentName).WithMaxLength(128).Validate() {
		return nil, fmt.Errorf("%w: student name is required", apperrors.ErrValidationFailed)
	}
	if !validation.NewStringValidation(studentID).WithPattern(validation.CompiledPatterns.StudentID).Validate() {
		return nil, fmt.Errorf("%w: student ID must be at most 32 letters, digits, dashes or slashes", apperrors.ErrValidationFailed)
	}

	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}

	key, err := s.storeUpload(ctx, file, filestorage.DirStudentWork)
	if err != nil {
		return nil, err
	}

	work := &models.StudentWork{
		AssessmentID: assessmentID,
		StudentName:  studentName,
		StudentID:    studentID,
		FilePath:     key,
		URLs:         []string{},
		Status:       models.WorkStatusSubmitted,
		UploadedBy:   actor.UserID,
	}
	if err := s.works.Create(ctx, work); err != nil {
		s.discard(ctx, key)
		return nil, err
	}

	resp := &dto.UploadWorkResponse{Work: work}
	if wantsAutoMark(req.AutoMark) {
		taskID, err := s.enqueuer.EnqueueMarkWork(ctx, work.ID, actor.UserID)
		if err != nil {
			// The work is stored; it can still be marked on demand.
			s.logger.Error().Err(err).Int64("workID", work.ID).Msg("Failed to schedule marking")
		} else {
			resp.Queued = true
			resp.TaskID = taskID
		}
	}

	s.logger.Info().Int64("workID", work.ID).Int64("assessmentID", assessmentID).Bool("queued", resp.Queued).Msg("Student work uploaded")
	return resp, nil
}

func wantsAutoMark(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

// GetWork returns a work of an owned assessment with its mark and feedback
func (s *assessmentServiceImpl) GetWork(ctx context.Context, actor authz.Actor, assessmentID, workID int64) (*dto.WorkDetailResponse, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}

	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, err
	}
	if work.AssessmentID != assessmentID {
		return nil, apperrors.ErrWorkNotFound
	}

	resp := &dto.WorkDetailResponse{Work: work, CriteriaMarks: []dto.CriteriaMarkView{}}
	mark, err := s.marks.GetByWorkID(ctx, workID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMarkNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.Mark = mark

	criteriaMarks, err := s.marks.ListCriteriaMarks(ctx, mark.ID)
	if err != nil {
		return nil, err
	}
	for _, cm := range criteriaMarks {
		view := dto.CriteriaMarkView{CriteriaMark: cm}
		if cm.Comments != nil {
			var fb marking.CriterionFeedback
			if err := json.Unmarshal([]byte(*cm.Comments), &fb); err == nil {
				view.Feedback = &fb
			}
		}
		resp.CriteriaMarks = append(resp.CriteriaMarks, view)
	}

	feedback, err := s.marks.GetFeedback(ctx, mark.ID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	resp.Feedback = feedback
	return resp, nil
}

// GetAnalytics returns the latest analytics of an owned assessment
func (s *assessmentServiceImpl) GetAnalytics(ctx context.Context, actor authz.Actor, assessmentID int64) (*models.AnalyticsData, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}
	return s.analytics.LatestForAssessment(ctx, assessmentID)
}

// ListRecommendations returns the recommendations of an owned assessment, most urgent first
func (s *assessmentServiceImpl) ListRecommendations(ctx context.Context, actor authz.Actor, assessmentID int64) ([]*models.Recommendation, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}
	return s.recommendations.ListByAssessment(ctx, assessmentID)
}

// VerifyMark records a teacher's confirmation of an AI mark, optionally with a
// new total score
func (s *assessmentServiceImpl) VerifyMark(ctx context.Context, actor authz.Actor, markID int64, req *dto.VerifyMarkRequest) (*models.Mark, error) {
	if req.Verified == nil {
		return nil, fmt.Errorf("%w: verified is required", apperrors.ErrValidationFailed)
	}

	mark, err := s.marks.GetByID(ctx, markID)
	if err != nil {
		return nil, err
	}
	work, err := s.works.GetByID(ctx, mark.StudentWorkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.OwnedAssessment(ctx, actor, work.AssessmentID); err != nil {
		return nil, err
	}

	if req.TotalScore != nil {
		score := *req.TotalScore
		if score < 0 || (mark.MaxScore > 0 && score > mark.MaxScore) {
			return nil, fmt.Errorf("%w: total score must be between 0 and %.1f", apperrors.ErrValidationFailed, mark.MaxScore)
		}
		mark.TotalScore = score
		if mark.MaxScore > 0 {
			mark.Percentage = score / mark.MaxScore * 100
		}
		mark.Grade = marking.DetermineGrade(mark.Percentage, s.gradeBoundaries(ctx, work.AssessmentID))
	}

	mark.VerifiedByTeacher = *req.Verified
	teacherID := actor.UserID
	mark.TeacherID = &teacherID
	if err := s.marks.UpdateVerification(ctx, mark); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("markID", markID).Int64("userID", actor.UserID).Bool("verified", mark.VerifiedByTeacher).Msg("Mark verification updated")
	return mark, nil
}

// gradeBoundaries returns the boundaries declared in the assessment's rubric.
// Nil selects the default scale.
func (s *assessmentServiceImpl) gradeBoundaries(ctx context.Context, assessmentID int64) []marking.GradeBoundary {
	rubric, err := s.rubrics.GetByAssessmentID(ctx, assessmentID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Warn().Err(err).Int64("assessmentID", assessmentID).Msg("Failed to load rubric for grading, using default boundaries")
		}
		return nil
	}
	text, err := filestorage.ReadText(ctx, s.storage, rubric.FilePath)
	if err != nil {
		s.logger.Warn().Err(err).Int64("rubricID", rubric.ID).Msg("Failed to read rubric for grading, using default boundaries")
		return nil
	}
	return marking.ProcessRubric(text).GradeBoundaries
}
