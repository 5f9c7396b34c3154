package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/middleware"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/marking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var teacher = authz.Actor{UserID: 7, Role: models.RoleTeacher}

// withActor stands in for JWTAuth
func withActor(actor authz.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actor.UserID)
		c.Set(middleware.ContextRole, actor.Role)
		c.Next()
	}
}

type mockMarkingService struct {
	mock.Mock
}

func (m *mockMarkingService) MarkWork(ctx context.Context, actor authz.Actor, workID int64) (*dto.MarkWorkResponse, error) {
	args := m.Called(ctx, actor, workID)
	if resp, ok := args.Get(0).(*dto.MarkWorkResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarkingService) MarkWorkForUser(ctx context.Context, userID, workID int64) error {
	return m.Called(ctx, userID, workID).Error(0)
}

func (m *mockMarkingService) ProcessBrief(ctx context.Context, actor authz.Actor, briefID int64) (marking.BriefAnalysis, error) {
	args := m.Called(ctx, actor, briefID)
	return args.Get(0).(marking.BriefAnalysis), args.Error(1)
}

func (m *mockMarkingService) ProcessRubric(ctx context.Context, actor authz.Actor, rubricID int64) (marking.RubricAnalysis, error) {
	args := m.Called(ctx, actor, rubricID)
	return args.Get(0).(marking.RubricAnalysis), args.Error(1)
}

func (m *mockMarkingService) GenerateAnalytics(ctx context.Context, actor authz.Actor, assessmentID int64) (*dto.AnalyticsResponse, error) {
	args := m.Called(ctx, actor, assessmentID)
	if resp, ok := args.Get(0).(*dto.AnalyticsResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarkingService) GenerateRecommendations(ctx context.Context, actor authz.Actor, analyticsID int64) (*dto.RecommendationsResponse, error) {
	args := m.Called(ctx, actor, analyticsID)
	if resp, ok := args.Get(0).(*dto.RecommendationsResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarkingService) ExtractURLs(text string) []string {
	return m.Called(text).Get(0).([]string)
}

func (m *mockMarkingService) AnalyzeURL(ctx context.Context, rawURL string) marking.URLAnalysis {
	return m.Called(ctx, rawURL).Get(0).(marking.URLAnalysis)
}

func (m *mockMarkingService) CleanupAnalytics(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newMarkingRouter(svc *mockMarkingService) *gin.Engine {
	ctrl := NewMarkingController(svc, nil, zerolog.Nop())
	r := gin.New()
	rpc := r.Group("/api", withActor(teacher))
	rpc.POST("/mark-work", ctrl.MarkWork)
	rpc.POST("/extract-urls", ctrl.ExtractURLs)
	rpc.POST("/generate-analytics", ctrl.GenerateAnalytics)
	return r
}

func TestMarkingController_MarkWork(t *testing.T) {
	svc := new(mockMarkingService)
	svc.On("MarkWork", mock.Anything, teacher, int64(3)).
		Return(&dto.MarkWorkResponse{Success: true, MarkID: 11, Percentage: 70, Grade: "B"}, nil)

	w := postJSON(t, newMarkingRouter(svc), "/api/mark-work", gin.H{"work_id": 3})

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.MarkWorkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(11), resp.MarkID)
	assert.Equal(t, "B", resp.Grade)
	svc.AssertExpectations(t)
}

func TestMarkingController_MarkWorkErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"marking disabled", apperrors.ErrMarkingDisabled, http.StatusForbidden},
		{"rubric missing", apperrors.ErrRubricNotFound, http.StatusNotFound},
		{"already marked", apperrors.ErrWorkAlreadyMarked, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockMarkingService)
			svc.On("MarkWork", mock.Anything, teacher, int64(3)).Return(nil, tt.err)

			w := postJSON(t, newMarkingRouter(svc), "/api/mark-work", gin.H{"work_id": 3})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestMarkingController_MarkWorkMissingField(t *testing.T) {
	svc := new(mockMarkingService)

	w := postJSON(t, newMarkingRouter(svc), "/api/mark-work", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "MarkWork", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkingController_ExtractURLs(t *testing.T) {
	svc := new(mockMarkingService)
	svc.On("ExtractURLs", "see https://go.dev").Return([]string{"https://go.dev"})

	w := postJSON(t, newMarkingRouter(svc), "/api/extract-urls", gin.H{"text": "see https://go.dev"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"urls":["https://go.dev"],"count":1}`, w.Body.String())
}

func TestMarkingController_GenerateAnalyticsNoMarkedWork(t *testing.T) {
	svc := new(mockMarkingService)
	svc.On("GenerateAnalytics", mock.Anything, teacher, int64(5)).Return(nil, apperrors.ErrNoMarkedWork)

	w := postJSON(t, newMarkingRouter(svc), "/api/generate-analytics", gin.H{"assessment_id": 5})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No marked student work found for this assessment")
}

type mockAssessmentService struct {
	mock.Mock
	assessmentServiceStub
}

// assessmentServiceStub fills in the AssessmentService methods these tests do not exercise
type assessmentServiceStub struct{}

func (assessmentServiceStub) ListAssessments(context.Context, authz.Actor) ([]*models.AssessmentBrief, error) {
	return nil, nil
}
func (assessmentServiceStub) CreateAssessment(context.Context, authz.Actor, *dto.CreateAssessmentRequest, *multipart.FileHeader) (*models.AssessmentBrief, error) {
	return nil, nil
}
func (assessmentServiceStub) GetAssessment(context.Context, authz.Actor, int64) (*dto.AssessmentDetailResponse, error) {
	return nil, nil
}
func (assessmentServiceStub) UpdateAssessment(context.Context, authz.Actor, int64, *dto.UpdateAssessmentRequest) (*models.AssessmentBrief, error) {
	return nil, nil
}
func (assessmentServiceStub) DeleteAssessment(context.Context, authz.Actor, int64) error { return nil }
func (assessmentServiceStub) GetRubric(context.Context, authz.Actor, int64) (*models.Rubric, error) {
	return nil, nil
}
func (assessmentServiceStub) SaveRubric(context.Context, authz.Actor, int64, *dto.RubricUploadRequest, *multipart.FileHeader) (*dto.RubricResponse, error) {
	return nil, nil
}
func (assessmentServiceStub) ListWorks(context.Context, authz.Actor, int64) ([]*models.StudentWork, error) {
	return nil, nil
}
func (assessmentServiceStub) GetWork(context.Context, authz.Actor, int64, int64) (*dto.WorkDetailResponse, error) {
	return nil, nil
}
func (assessmentServiceStub) GetAnalytics(context.Context, authz.Actor, int64) (*models.AnalyticsData, error) {
	return nil, nil
}
func (assessmentServiceStub) ListRecommendations(context.Context, authz.Actor, int64) ([]*models.Recommendation, error) {
	return nil, nil
}
func (assessmentServiceStub) VerifyMark(context.Context, authz.Actor, int64, *dto.VerifyMarkRequest) (*models.Mark, error) {
	return nil, nil
}

func (m *mockAssessmentService) UploadWork(ctx context.Context, actor authz.Actor, assessmentID int64, req *dto.UploadWorkRequest, file *multipart.FileHeader) (*dto.UploadWorkResponse, error) {
	args := m.Called(ctx, actor, assessmentID, req, file)
	if resp, ok := args.Get(0).(*dto.UploadWorkResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAssessmentController_UploadWork(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("UploadWork", mock.Anything, teacher, int64(4),
		mock.MatchedBy(func(req *dto.UploadWorkRequest) bool {
			return req.StudentName == "Ada" && req.StudentID == "S1" && req.AutoMark == "yes"
		}),
		mock.MatchedBy(func(fh *multipart.FileHeader) bool { return fh != nil && fh.Filename == "essay.txt" }),
	).Return(&dto.UploadWorkResponse{Work: &models.StudentWork{ID: 9}, Queued: true}, nil)

	ctrl := NewAssessmentController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/assessments/:id/works", withActor(teacher), ctrl.UploadWork)

	body, contentType := multipartBody(t, map[string]string{
		"student_name": "Ada",
		"student_id":   "S1",
		"auto_mark":    "yes",
	}, "work_file", "essay.txt", "An essay.")
	req := httptest.NewRequest(http.MethodPost, "/assessments/4/works", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"queued":true`)
	svc.AssertExpectations(t)
}

func TestAssessmentController_UploadWorkWithoutFile(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("UploadWork", mock.Anything, teacher, int64(4), mock.Anything, (*multipart.FileHeader)(nil)).
		Return(nil, apperrors.ErrFileRequired)

	ctrl := NewAssessmentController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/assessments/:id/works", withActor(teacher), ctrl.UploadWork)

	body, contentType := multipartBody(t, map[string]string{"student_name": "Ada", "student_id": "S1"}, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/assessments/4/works", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(dto.ErrorCodeFileRequired))
}

func TestAssessmentController_InvalidID(t *testing.T) {
	ctrl := NewAssessmentController(new(mockAssessmentService), zerolog.Nop())
	r := gin.New()
	r.GET("/assessments/:id", withActor(teacher), ctrl.GetAssessment)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assessments/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentActorRequired(t *testing.T) {
	ctrl := NewAssessmentController(new(mockAssessmentService), zerolog.Nop())
	r := gin.New()
	r.GET("/assessments", ctrl.ListAssessments)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assessments", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
