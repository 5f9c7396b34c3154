package services

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/filestorage"
	"github.com/yigit/assessai/internal/pkg/websocket"
)

var testLogger = zerolog.Nop()

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) List(ctx context.Context, offset uint64, limit int) ([]*models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserStore) Recent(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

func (m *mockUserStore) UpdateLastLogin(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserStore) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.UserProfile)
	return p, args.Error(1)
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	return m.Called(ctx, user, profile).Error(0)
}

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryStore) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryStore) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Category, error) {
	args := m.Called(ctx, ownerID)
	c, _ := args.Get(0).([]*models.Category)
	return c, args.Error(1)
}

func (m *mockCategoryStore) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockModuleStore struct{ mock.Mock }

func (m *mockModuleStore) Create(ctx context.Context, module *models.Module) error {
	return m.Called(ctx, module).Error(0)
}

func (m *mockModuleStore) GetByID(ctx context.Context, id int64) (*models.Module, error) {
	args := m.Called(ctx, id)
	mod, _ := args.Get(0).(*models.Module)
	return mod, args.Error(1)
}

func (m *mockModuleStore) ListByOwner(ctx context.Context, ownerID int64, categoryID *int64) ([]*models.Module, error) {
	args := m.Called(ctx, ownerID, categoryID)
	mods, _ := args.Get(0).([]*models.Module)
	return mods, args.Error(1)
}

func (m *mockModuleStore) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Module, error) {
	args := m.Called(ctx, categoryID)
	mods, _ := args.Get(0).([]*models.Module)
	return mods, args.Error(1)
}

func (m *mockModuleStore) Update(ctx context.Context, module *models.Module) error {
	return m.Called(ctx, module).Error(0)
}

func (m *mockModuleStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockAssessmentStore struct{ mock.Mock }

func (m *mockAssessmentStore) Create(ctx context.Context, assessment *models.AssessmentBrief) error {
	return m.Called(ctx, assessment).Error(0)
}

func (m *mockAssessmentStore) GetByID(ctx context.Context, id int64) (*models.AssessmentBrief, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.AssessmentBrief)
	return a, args.Error(1)
}

func (m *mockAssessmentStore) ListByOwner(ctx context.Context, ownerID int64) ([]*models.AssessmentBrief, error) {
	args := m.Called(ctx, ownerID)
	a, _ := args.Get(0).([]*models.AssessmentBrief)
	return a, args.Error(1)
}

func (m *mockAssessmentStore) ListByModule(ctx context.Context, moduleID int64) ([]*models.AssessmentBrief, error) {
	args := m.Called(ctx, moduleID)
	a, _ := args.Get(0).([]*models.AssessmentBrief)
	return a, args.Error(1)
}

func (m *mockAssessmentStore) RecentByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.AssessmentBrief, error) {
	args := m.Called(ctx, ownerID, limit)
	a, _ := args.Get(0).([]*models.AssessmentBrief)
	return a, args.Error(1)
}

func (m *mockAssessmentStore) Update(ctx context.Context, assessment *models.AssessmentBrief) error {
	return m.Called(ctx, assessment).Error(0)
}

func (m *mockAssessmentStore) FilePaths(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).([]string)
	return p, args.Error(1)
}

func (m *mockAssessmentStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockRubricStore struct{ mock.Mock }

func (m *mockRubricStore) GetByID(ctx context.Context, id int64) (*models.Rubric, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Rubric)
	return r, args.Error(1)
}

func (m *mockRubricStore) GetByAssessmentID(ctx context.Context, assessmentID int64) (*models.Rubric, error) {
	args := m.Called(ctx, assessmentID)
	r, _ := args.Get(0).(*models.Rubric)
	return r, args.Error(1)
}

func (m *mockRubricStore) ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error) {
	args := m.Called(ctx, assessmentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRubricStore) Save(ctx context.Context, rubric *models.Rubric, criteria []*models.RubricCriteria) error {
	return m.Called(ctx, rubric, criteria).Error(0)
}

type mockWorkStore struct{ mock.Mock }

func (m *mockWorkStore) Create(ctx context.Context, work *models.StudentWork) error {
	return m.Called(ctx, work).Error(0)
}

func (m *mockWorkStore) GetByID(ctx context.Context, id int64) (*models.StudentWork, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*models.StudentWork)
	return w, args.Error(1)
}

func (m *mockWorkStore) ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.StudentWork, error) {
	args := m.Called(ctx, assessmentID)
	w, _ := args.Get(0).([]*models.StudentWork)
	return w, args.Error(1)
}

func (m *mockWorkStore) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Submission, error) {
	args := m.Called(ctx, ownerID, limit)
	s, _ := args.Get(0).([]*models.Submission)
	return s, args.Error(1)
}

func (m *mockWorkStore) TransitionStatus(ctx context.Context, id int64, from, to models.WorkStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockWorkStore) UpdateURLs(ctx context.Context, id int64, urls []string) error {
	return m.Called(ctx, id, urls).Error(0)
}

type mockMarkStore struct{ mock.Mock }

func (m *mockMarkStore) SaveMarkingResult(ctx context.Context, mark *models.Mark, criteriaMarks []*models.CriteriaMark, feedback *models.Feedback) error {
	return m.Called(ctx, mark, criteriaMarks, feedback).Error(0)
}

func (m *mockMarkStore) GetByID(ctx context.Context, id int64) (*models.Mark, error) {
	args := m.Called(ctx, id)
	mk, _ := args.Get(0).(*models.Mark)
	return mk, args.Error(1)
}

func (m *mockMarkStore) GetByWorkID(ctx context.Context, workID int64) (*models.Mark, error) {
	args := m.Called(ctx, workID)
	mk, _ := args.Get(0).(*models.Mark)
	return mk, args.Error(1)
}

func (m *mockMarkStore) ExistsForWork(ctx context.Context, workID int64) (bool, error) {
	args := m.Called(ctx, workID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMarkStore) ListCriteriaMarks(ctx context.Context, markID int64) ([]*models.CriteriaMark, error) {
	args := m.Called(ctx, markID)
	cm, _ := args.Get(0).([]*models.CriteriaMark)
	return cm, args.Error(1)
}

func (m *mockMarkStore) GetFeedback(ctx context.Context, markID int64) (*models.Feedback, error) {
	args := m.Called(ctx, markID)
	f, _ := args.Get(0).(*models.Feedback)
	return f, args.Error(1)
}

func (m *mockMarkStore) ListMarkedForAssessment(ctx context.Context, assessmentID int64) ([]*models.MarkWithCriteria, error) {
	args := m.Called(ctx, assessmentID)
	mk, _ := args.Get(0).([]*models.MarkWithCriteria)
	return mk, args.Error(1)
}

func (m *mockMarkStore) UpdateVerification(ctx context.Context, mark *models.Mark) error {
	return m.Called(ctx, mark).Error(0)
}

type mockAnalyticsStore struct{ mock.Mock }

func (m *mockAnalyticsStore) Create(ctx context.Context, data *models.AnalyticsData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockAnalyticsStore) GetByID(ctx context.Context, id int64) (*models.AnalyticsData, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.AnalyticsData)
	return d, args.Error(1)
}

func (m *mockAnalyticsStore) LatestForAssessment(ctx context.Context, assessmentID int64) (*models.AnalyticsData, error) {
	args := m.Called(ctx, assessmentID)
	d, _ := args.Get(0).(*models.AnalyticsData)
	return d, args.Error(1)
}

func (m *mockAnalyticsStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockRecommendationStore struct{ mock.Mock }

func (m *mockRecommendationStore) CreateBatch(ctx context.Context, recs []*models.Recommendation) error {
	return m.Called(ctx, recs).Error(0)
}

func (m *mockRecommendationStore) ListByAssessment(ctx context.Context, assessmentID int64) ([]*models.Recommendation, error) {
	args := m.Called(ctx, assessmentID)
	r, _ := args.Get(0).([]*models.Recommendation)
	return r, args.Error(1)
}

func (m *mockRecommendationStore) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Recommendation, error) {
	args := m.Called(ctx, ownerID, limit)
	r, _ := args.Get(0).([]*models.Recommendation)
	return r, args.Error(1)
}

type mockSettingsStore struct{ mock.Mock }

func (m *mockSettingsStore) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(map[string]json.RawMessage)
	return s, args.Error(1)
}

func (m *mockSettingsStore) SaveAll(ctx context.Context, settings map[string]json.RawMessage) error {
	return m.Called(ctx, settings).Error(0)
}

type mockWebsiteStore struct {
	mock.Mock
	WebsiteStore
}

func (m *mockWebsiteStore) UpdateLayoutSections(ctx context.Context, id int64, sections json.RawMessage) error {
	return m.Called(ctx, id, sections).Error(0)
}

func (m *mockWebsiteStore) UpdateSectionContent(ctx context.Context, id int64, content json.RawMessage) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *mockWebsiteStore) CreateLayout(ctx context.Context, layout *models.PageLayout) error {
	return m.Called(ctx, layout).Error(0)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueMarkWork(ctx context.Context, workID, userID int64) (string, error) {
	args := m.Called(ctx, workID, userID)
	return args.String(0), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []websocket.Event
	users  []int64
}

func (p *recordingPublisher) Publish(userID int64, event websocket.Event) {
	p.users = append(p.users, userID)
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// staticSettings serves fixed settings
type staticSettings struct {
	settings models.SystemSettings
}

func (s *staticSettings) Get(context.Context) (models.SystemSettings, error) {
	return s.settings, nil
}

func (s *staticSettings) Update(_ context.Context, settings models.SystemSettings) (models.SystemSettings, error) {
	s.settings = settings
	return settings, nil
}

// newTestStorage returns local storage rooted in a temp dir
func newTestStorage(t *testing.T) (*filestorage.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)
	return storage, dir
}

// writeStored places a document in the storage root under key
func writeStored(t *testing.T, root, key, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// newFileHeader builds an uploaded file the way a multipart request delivers it
func newFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
