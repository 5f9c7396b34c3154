package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/filestorage"
	"github.com/yigit/assessai/internal/pkg/helpers"
	"github.com/yigit/assessai/internal/pkg/marking"
	"github.com/yigit/assessai/internal/pkg/websocket"
)

// revertTimeout bounds the status rollback after a failed marking run
const revertTimeout = 10 * time.Second

// MarkingService runs the marking engine against stored documents
type MarkingService interface {
	MarkWork(ctx context.Context, actor authz.Actor, workID int64) (*dto.MarkWorkResponse, error)
	// MarkWorkForUser marks a work on behalf of a stored user, for background jobs
	MarkWorkForUser(ctx context.Context, userID, workID int64) error
	ProcessBrief(ctx context.Context, actor authz.Actor, briefID int64) (marking.BriefAnalysis, error)
	ProcessRubric(ctx context.Context, actor authz.Actor, rubricID int64) (marking.RubricAnalysis, error)
	GenerateAnalytics(ctx context.Context, actor authz.Actor, assessmentID int64) (*dto.AnalyticsResponse, error)
	GenerateRecommendations(ctx context.Context, actor authz.Actor, analyticsID int64) (*dto.RecommendationsResponse, error)
	ExtractURLs(text string) []string
	AnalyzeURL(ctx context.Context, rawURL string) marking.URLAnalysis
	// CleanupAnalytics deletes analytics older than the retention setting
	CleanupAnalytics(ctx context.Context) (int64, error)
}

// MarkingDeps groups the collaborators of the marking service
type MarkingDeps struct {
	Users           UserStore
	Rubrics         RubricStore
	Works           WorkStore
	Marks           MarkStore
	Analytics       AnalyticsStore
	Recommendations RecommendationStore
	Settings        SettingsService
	Storage         filestorage.FileStorage
	Engine          *marking.Engine
	Publisher       websocket.Publisher
	Authz           *authz.AuthorizationService
}

type markingServiceImpl struct {
	users           UserStore
	rubrics         RubricStore
	works           WorkStore
	marks           MarkStore
	analytics       AnalyticsStore
	recommendations RecommendationStore
	settings        SettingsService
	storage         filestorage.FileStorage
	engine          *marking.Engine
	publisher       websocket.Publisher
	authz           *authz.AuthorizationService
	logger          zerolog.Logger
}

// NewMarkingService creates a new MarkingService
func NewMarkingService(deps MarkingDeps, logger zerolog.Logger) MarkingService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = websocket.NopPublisher{}
	}
	return &markingServiceImpl{
		users:           deps.Users,
		rubrics:         deps.Rubrics,
		works:           deps.Works,
		marks:           deps.Marks,
		analytics:       deps.Analytics,
		recommendations: deps.Recommendations,
		settings:        deps.Settings,
		storage:         deps.Storage,
		engine:          deps.Engine,
		publisher:       publisher,
		authz:           deps.Authz,
		logger:          logger,
	}
}

// MarkWork marks a submitted work against its assessment's brief and rubric
// and stores the result. The work moves submitted → marking → marked, and back
// to submitted when anything after the claim fails.
func (s *markingServiceImpl) MarkWork(ctx context.Context, actor authz.Actor, workID int64) (*dto.MarkWorkResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.EnableAIMarking {
		return nil, apperrors.ErrMarkingDisabled
	}

	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.authz.OwnedAssessment(ctx, actor, work.AssessmentID)
	if err != nil {
		return nil, err
	}
	rubric, err := s.rubrics.GetByAssessmentID(ctx, assessment.ID)
	if err != nil {
		return nil, err
	}

	marked, err := s.marks.ExistsForWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, apperrors.ErrWorkAlreadyMarked
	}

	claimed, err := s.works.TransitionStatus(ctx, workID, models.WorkStatusSubmitted, models.WorkStatusMarking)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.ErrMarkingInProgress
	}

	owner := assessment.CreatedBy
	s.publisher.Publish(owner, websocket.Event{
		Type:         websocket.EventMarkingStarted,
		WorkID:       workID,
		AssessmentID: assessment.ID,
	})

	mark, err := s.runMarking(ctx, assessment, rubric, work)
	if err != nil {
		s.revert(workID)
		s.publisher.Publish(owner, websocket.Event{
			Type:         websocket.EventMarkingFailed,
			WorkID:       workID,
			AssessmentID: assessment.ID,
			Error:        err.Error(),
		})
		s.logger.Error().Err(err).Int64("workID", workID).Msg("Marking failed")
		return nil, err
	}

	percentage := mark.Percentage
	s.publisher.Publish(owner, websocket.Event{
		Type:         websocket.EventMarkingCompleted,
		WorkID:       workID,
		AssessmentID: assessment.ID,
		MarkID:       mark.ID,
		Percentage:   &percentage,
		Grade:        mark.Grade,
	})

	s.logger.Info().
		Int64("workID", workID).
		Int64("markID", mark.ID).
		Float64("percentage", mark.Percentage).
		Str("grade", mark.Grade).
		Msg("Student work marked")

	return &dto.MarkWorkResponse{
		Success:    true,
		MarkID:     mark.ID,
		Percentage: mark.Percentage,
		Grade:      mark.Grade,
	}, nil
}

// runMarking reads the documents, runs the engine and persists the result
func (s *markingServiceImpl) runMarking(ctx context.Context, assessment *models.AssessmentBrief, rubric *models.Rubric, work *models.StudentWork) (*models.Mark, error) {
	briefText, err := filestorage.ReadText(ctx, s.storage, assessment.FilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading assessment brief: %w", err)
	}
	rubricText, err := filestorage.ReadText(ctx, s.storage, rubric.FilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading rubric: %w", err)
	}
	workText, err := filestorage.ReadText(ctx, s.storage, work.FilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading student work: %w", err)
	}

	brief := marking.ProcessBrief(briefText)
	rubricAnalysis := marking.ProcessRubric(rubricText)

	urls := marking.ExtractURLs(workText)
	if err := s.works.UpdateURLs(ctx, work.ID, urls); err != nil {
		return nil, err
	}
	work.URLs = urls

	result := s.engine.Mark(ctx, workText, brief, rubricAnalysis)

	mark := &models.Mark{
		StudentWorkID: work.ID,
		TotalScore:    result.TotalScore,
		MaxScore:      result.MaxScore,
		Percentage:    result.Percentage,
		Grade:         result.Grade,
		WordCount:     result.Statistics.WordCount,
		SentenceCount: result.Statistics.SentenceCount,
		URLCount:      result.Statistics.URLCount,
		TopicCoverage: result.Statistics.TopicCoverage,
		MarkedByAI:    true,
	}

	criteriaMarks, err := matchCriteriaMarks(result.CriteriaMarks, rubric.Criteria)
	if err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		GeneralComments:     result.Feedback.GeneralComments,
		Strengths:           strings.Join(result.Feedback.Strengths, "\n\n"),
		AreasForImprovement: strings.Join(result.Feedback.AreasForImprovement, "\n\n"),
		Recommendations:     strings.Join(result.Feedback.Recommendations, "\n\n"),
	}

	if err := s.marks.SaveMarkingResult(ctx, mark, criteriaMarks, feedback); err != nil {
		return nil, err
	}
	return mark, nil
}

// matchCriteriaMarks pairs engine scores with stored criteria by name.
// Scores for criteria the rubric does not store are dropped.
func matchCriteriaMarks(scored []marking.CriterionMark, criteria []*models.RubricCriteria) ([]*models.CriteriaMark, error) {
	// criteria sharing a name are consumed in stored order
	byName := make(map[string][]*models.RubricCriteria, len(criteria))
	for _, c := range criteria {
		byName[c.Name] = append(byName[c.Name], c)
	}

	marks := make([]*models.CriteriaMark, 0, len(scored))
	for _, sc := range scored {
		queue := byName[sc.Name]
		if len(queue) == 0 {
			continue
		}
		c := queue[0]
		byName[sc.Name] = queue[1:]
		raw, err := json.Marshal(sc.Feedback)
		if err != nil {
			return nil, fmt.Errorf("error encoding criterion feedback: %w", err)
		}
		comments := string(raw)
		marks = append(marks, &models.CriteriaMark{
			CriteriaID:   c.ID,
			Score:        sc.Score,
			Comments:     &comments,
			CriteriaName: c.Name,
			MaxScore:     sc.MaxScore,
		})
	}
	return marks, nil
}

// revert puts a failed work back to submitted. It runs on its own context so a
// cancelled request still releases the claim.
func (s *markingServiceImpl) revert(workID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), revertTimeout)
	defer cancel()

	if _, err := s.works.TransitionStatus(ctx, workID, models.WorkStatusMarking, models.WorkStatusSubmitted); err != nil {
		s.logger.Error().Err(err).Int64("workID", workID).Msg("Failed to revert work status")
	}
}

// MarkWorkForUser loads the user's role and marks the work as them
func (s *markingServiceImpl) MarkWorkForUser(ctx context.Context, userID, workID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperrors.NewForbiddenError("user account is disabled")
	}

	_, err = s.MarkWork(ctx, authz.Actor{UserID: user.ID, Role: user.Role}, workID)
	return err
}

// ProcessBrief analyses the stored file of an owned assessment
func (s *markingServiceImpl) ProcessBrief(ctx context.Context, actor authz.Actor, briefID int64) (marking.BriefAnalysis, error) {
	assessment, err := s.authz.OwnedAssessment(ctx, actor, briefID)
	if err != nil {
		return marking.BriefAnalysis{}, err
	}

	text, err := filestorage.ReadText(ctx, s.storage, assessment.FilePath)
	if err != nil {
		return marking.BriefAnalysis{}, fmt.Errorf("error reading assessment brief: %w", err)
	}
	return marking.ProcessBrief(text), nil
}

// ProcessRubric analyses the stored file of a rubric on an owned assessment
func (s *markingServiceImpl) ProcessRubric(ctx context.Context, actor authz.Actor, rubricID int64) (marking.RubricAnalysis, error) {
	rubric, err := s.rubrics.GetByID(ctx, rubricID)
	if err != nil {
		return marking.RubricAnalysis{}, err
	}
	if _, err := s.authz.OwnedAssessment(ctx, actor, rubric.AssessmentID); err != nil {
		return marking.RubricAnalysis{}, err
	}

	text, err := filestorage.ReadText(ctx, s.storage, rubric.FilePath)
	if err != nil {
		return marking.RubricAnalysis{}, fmt.Errorf("error reading rubric: %w", err)
	}
	return marking.ProcessRubric(text), nil
}

// GenerateAnalytics aggregates the stored marks of an assessment's marked
// works and saves the snapshot
func (s *markingServiceImpl) GenerateAnalytics(ctx context.Context, actor authz.Actor, assessmentID int64) (*dto.AnalyticsResponse, error) {
	if _, err := s.authz.OwnedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}

	marks, err := s.marks.ListMarkedForAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if len(marks) == 0 {
		return nil, apperrors.ErrNoMarkedWork
	}

	results := make([]marking.Result, 0, len(marks))
	for _, m := range marks {
		results = append(results, resultFromMark(m))
	}

	analytics, err := marking.GenerateAnalytics(results)
	if err != nil {
		if errors.Is(err, marking.ErrNoResults) {
			return nil, apperrors.ErrNoMarkedWork
		}
		return nil, err
	}

	raw, err := json.Marshal(analytics)
	if err != nil {
		return nil, fmt.Errorf("error encoding analytics: %w", err)
	}
	data := &models.AnalyticsData{
		AssessmentID: assessmentID,
		DataType:     models.AnalyticsTypeMarking,
		Data:         raw,
	}
	if err := s.analytics.Create(ctx, data); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assessmentID", assessmentID).Int64("analyticsID", data.ID).Int("marks", len(marks)).Msg("Analytics generated")
	return &dto.AnalyticsResponse{Success: true, Analytics: analytics, AnalyticsID: data.ID}, nil
}

// resultFromMark rebuilds an engine result from a stored mark
func resultFromMark(m *models.MarkWithCriteria) marking.Result {
	grade := m.Grade
	if grade == "" {
		grade = marking.AnalyticsGrade(m.Percentage)
	}

	result := marking.Result{
		TotalScore:    m.TotalScore,
		MaxScore:      m.MaxScore,
		Percentage:    m.Percentage,
		Grade:         grade,
		CriteriaMarks: make([]marking.CriterionMark, 0, len(m.CriteriaMarks)),
		Statistics: marking.Statistics{
			WordCount:     m.WordCount,
			SentenceCount: m.SentenceCount,
			URLCount:      m.URLCount,
			TopicCoverage: m.TopicCoverage,
		},
	}
	for _, cm := range m.CriteriaMarks {
		result.CriteriaMarks = append(result.CriteriaMarks, marking.CriterionMark{
			Name:     cm.CriteriaName,
			Score:    cm.Score,
			MaxScore: cm.MaxScore,
		})
	}
	return result
}

// GenerateRecommendations derives and stores recommendations from a saved
// analytics snapshot
func (s *markingServiceImpl) GenerateRecommendations(ctx context.Context, actor authz.Actor, analyticsID int64) (*dto.RecommendationsResponse, error) {
	data, err := s.analytics.GetByID(ctx, analyticsID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.authz.OwnedAssessment(ctx, actor, data.AssessmentID)
	if err != nil {
		return nil, err
	}

	var analytics marking.Analytics
	if err := json.Unmarshal(data.Data, &analytics); err != nil {
		return nil, fmt.Errorf("error decoding stored analytics %d: %w", analyticsID, err)
	}

	items := marking.GenerateRecommendations(analytics)
	recs := make([]*models.Recommendation, 0, len(items))
	for _, item := range items {
		id := data.ID
		recs = append(recs, &models.Recommendation{
			AssessmentID:       assessment.ID,
			ModuleID:           assessment.ModuleID,
			AnalyticsID:        &id,
			RecommendationText: item.Text,
			RecommendationType: item.Type,
			Priority:           models.PriorityValue(item.Priority),
		})
	}
	if err := s.recommendations.CreateBatch(ctx, recs); err != nil {
		return nil, err
	}

	return &dto.RecommendationsResponse{Success: true, Recommendations: items, Count: len(items)}, nil
}

// ExtractURLs returns the URLs found in text
func (s *markingServiceImpl) ExtractURLs(text string) []string {
	return marking.ExtractURLs(text)
}

// AnalyzeURL fetches and analyses a single URL
func (s *markingServiceImpl) AnalyzeURL(ctx context.Context, rawURL string) marking.URLAnalysis {
	analyzer := s.engine.Analyzer()
	if analyzer == nil {
		return marking.URLAnalysis{URL: rawURL, Error: "url analysis is not configured", Status: marking.StatusFailed}
	}
	return analyzer.AnalyzeURL(ctx, rawURL)
}

func (s *markingServiceImpl) CleanupAnalytics(ctx context.Context) (int64, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	if settings.AnalyticsRetentionDays <= 0 {
		return 0, nil
	}

	cutoff := helpers.DaysAgo(time.Now(), settings.AnalyticsRetentionDays)
	deleted, err := s.analytics.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Expired analytics removed")
	}
	return deleted, nil
}
