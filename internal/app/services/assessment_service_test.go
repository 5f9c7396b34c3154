package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/marking"
)

type assessmentFixture struct {
	svc         AssessmentService
	assessments *mockAssessmentStore
	rubrics     *mockRubricStore
	works       *mockWorkStore
	marks       *mockMarkStore
	enqueuer    *mockEnqueuer
	settings    *staticSettings
	root        string
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()
	storage, root := newTestStorage(t)
	f := &assessmentFixture{
		assessments: new(mockAssessmentStore),
		rubrics:     new(mockRubricStore),
		works:       new(mockWorkStore),
		marks:       new(mockMarkStore),
		enqueuer:    new(mockEnqueuer),
		settings:    &staticSettings{settings: models.DefaultSystemSettings()},
		root:        root,
	}
	f.svc = NewAssessmentService(AssessmentDeps{
		Assessments:     f.assessments,
		Rubrics:         f.rubrics,
		Works:           f.works,
		Marks:           f.marks,
		Analytics:       new(mockAnalyticsStore),
		Recommendations: new(mockRecommendationStore),
		Settings:        f.settings,
		Storage:         storage,
		Enqueuer:        f.enqueuer,
		Authz:           authz.NewAuthorizationService(new(mockCategoryStore), new(mockModuleStore), f.assessments),
	}, testLogger)

	f.assessments.On("GetByID", mock.Anything, int64(10)).
		Return(&models.AssessmentBrief{ID: 10, ModuleID: 2, CreatedBy: 3, FilePath: "briefs/b.txt"}, nil).Maybe()
	return f
}

var teacherActor = authz.Actor{UserID: 3, Role: models.RoleTeacher}

func TestAssessmentService_UploadWork(t *testing.T) {
	ctx := context.Background()
	req := func(autoMark string) *dto.UploadWorkRequest {
		return &dto.UploadWorkRequest{StudentName: "Ada Lovelace", StudentID: "S-001", AutoMark: autoMark}
	}

	t.Run("file required", func(t *testing.T) {
		f := newAssessmentFixture(t)
		_, err := f.svc.UploadWork(ctx, teacherActor, 10, req(""), nil)
		assert.ErrorIs(t, err, apperrors.ErrFileRequired)
	})

	t.Run("extension not allowed", func(t *testing.T) {
		f := newAssessmentFixture(t)
		_, err := f.svc.UploadWork(ctx, teacherActor, 10, req(""), newFileHeader(t, "essay.exe", "binary"))
		assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)
		f.works.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("too large", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.settings.settings.MaxFileSizeMB = 0
		_, err := f.svc.UploadWork(ctx, teacherActor, 10, req(""), newFileHeader(t, "essay.txt", "some text"))
		assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	})

	t.Run("invalid student id", func(t *testing.T) {
		f := newAssessmentFixture(t)
		r := req("")
		r.StudentID = "S 001!"
		_, err := f.svc.UploadWork(ctx, teacherActor, 10, r, newFileHeader(t, "essay.txt", "text"))
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newAssessmentFixture(t)
		other := authz.Actor{UserID: 4, Role: models.RoleTeacher}
		_, err := f.svc.UploadWork(ctx, other, 10, req(""), newFileHeader(t, "essay.txt", "text"))
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("stores and queues marking", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.works.On("Create", mock.Anything, mock.MatchedBy(func(w *models.StudentWork) bool {
			return w.Status == models.WorkStatusSubmitted && w.AssessmentID == 10 && w.UploadedBy == 3
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.StudentWork).ID = 42
		}).Return(nil)
		f.enqueuer.On("EnqueueMarkWork", mock.Anything, int64(42), int64(3)).Return("mark-work-42", nil)

		resp, err := f.svc.UploadWork(ctx, teacherActor, 10, req("yes"), newFileHeader(t, "Essay.TXT", "An essay."))
		require.NoError(t, err)
		assert.True(t, resp.Queued)
		assert.Equal(t, "mark-work-42", resp.TaskID)
		assert.Contains(t, resp.Work.FilePath, "student_work/")
		f.enqueuer.AssertExpectations(t)
	})

	t.Run("queue failure keeps the upload", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.works.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.StudentWork).ID = 43
		}).Return(nil)
		f.enqueuer.On("EnqueueMarkWork", mock.Anything, int64(43), int64(3)).Return("", errors.New("redis down"))

		resp, err := f.svc.UploadWork(ctx, teacherActor, 10, req("true"), newFileHeader(t, "essay.txt", "An essay."))
		require.NoError(t, err)
		assert.False(t, resp.Queued)
		assert.Equal(t, int64(43), resp.Work.ID)
	})

	t.Run("no auto mark", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.works.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.UploadWork(ctx, teacherActor, 10, req("no"), newFileHeader(t, "essay.txt", "An essay."))
		require.NoError(t, err)
		assert.False(t, resp.Queued)
		f.enqueuer.AssertNotCalled(t, "EnqueueMarkWork", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAssessmentService_SaveRubric(t *testing.T) {
	ctx := context.Background()
	rubricText := "Analysis (50%): Depth of critical analysis and argument.\n\nReferencing (50%): Use of academic sources and citations."

	f := newAssessmentFixture(t)
	f.rubrics.On("GetByAssessmentID", mock.Anything, int64(10)).Return(nil, apperrors.ErrRubricNotFound)
	f.rubrics.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(criteria []*models.RubricCriteria) bool {
		if len(criteria) != 2 {
			return false
		}
		for _, c := range criteria {
			if c.Weight != 1.0 || c.MaxScore != 10.0 {
				return false
			}
		}
		return criteria[0].Name == "Analysis" && criteria[1].Name == "Referencing"
	})).Return(nil)

	resp, err := f.svc.SaveRubric(ctx, teacherActor, 10, &dto.RubricUploadRequest{Title: "Essay rubric"}, newFileHeader(t, "rubric.txt", rubricText))
	require.NoError(t, err)
	assert.Empty(t, resp.Warning)
	assert.Len(t, resp.Rubric.Criteria, 2)
	f.rubrics.AssertExpectations(t)
}

func TestAssessmentService_GetWork(t *testing.T) {
	ctx := context.Background()

	t.Run("work of another assessment", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.works.On("GetByID", mock.Anything, int64(5)).Return(&models.StudentWork{ID: 5, AssessmentID: 11}, nil)

		_, err := f.svc.GetWork(ctx, teacherActor, 10, 5)
		assert.ErrorIs(t, err, apperrors.ErrWorkNotFound)
	})

	t.Run("decodes criterion feedback", func(t *testing.T) {
		f := newAssessmentFixture(t)
		comments := `{"strength":"Good demonstration of analysis","suggestions":"Consider reviewing"}`
		f.works.On("GetByID", mock.Anything, int64(5)).Return(&models.StudentWork{ID: 5, AssessmentID: 10, Status: models.WorkStatusMarked}, nil)
		f.marks.On("GetByWorkID", mock.Anything, int64(5)).Return(&models.Mark{ID: 9, StudentWorkID: 5}, nil)
		f.marks.On("ListCriteriaMarks", mock.Anything, int64(9)).Return([]*models.CriteriaMark{
			{ID: 1, MarkID: 9, CriteriaName: "Analysis", Score: 7, MaxScore: 10, Comments: &comments},
		}, nil)
		f.marks.On("GetFeedback", mock.Anything, int64(9)).Return(&models.Feedback{MarkID: 9, GeneralComments: "Good work"}, nil)

		resp, err := f.svc.GetWork(ctx, teacherActor, 10, 5)
		require.NoError(t, err)
		require.Len(t, resp.CriteriaMarks, 1)
		require.NotNil(t, resp.CriteriaMarks[0].Feedback)
		assert.Equal(t, "Good demonstration of analysis", resp.CriteriaMarks[0].Feedback.Strength)
		assert.Equal(t, "Good work", resp.Feedback.GeneralComments)
	})

	t.Run("unmarked work", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.works.On("GetByID", mock.Anything, int64(6)).Return(&models.StudentWork{ID: 6, AssessmentID: 10}, nil)
		f.marks.On("GetByWorkID", mock.Anything, int64(6)).Return(nil, apperrors.ErrMarkNotFound)

		resp, err := f.svc.GetWork(ctx, teacherActor, 10, 6)
		require.NoError(t, err)
		assert.Nil(t, resp.Mark)
		assert.Empty(t, resp.CriteriaMarks)
	})
}

func TestAssessmentService_VerifyMark(t *testing.T) {
	ctx := context.Background()
	verified := true

	t.Run("override recomputes percentage and grade", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.marks.On("GetByID", mock.Anything, int64(9)).Return(&models.Mark{ID: 9, StudentWorkID: 5, TotalScore: 12, MaxScore: 40, Percentage: 30, Grade: "F"}, nil)
		f.works.On("GetByID", mock.Anything, int64(5)).Return(&models.StudentWork{ID: 5, AssessmentID: 10}, nil)
		f.rubrics.On("GetByAssessmentID", mock.Anything, int64(10)).Return(nil, apperrors.ErrRubricNotFound)
		f.marks.On("UpdateVerification", mock.Anything, mock.MatchedBy(func(m *models.Mark) bool { return m.Grade == "A" })).Return(nil)

		score := 36.0
		mark, err := f.svc.VerifyMark(ctx, teacherActor, 9, &dto.VerifyMarkRequest{Verified: &verified, TotalScore: &score})
		require.NoError(t, err)
		assert.True(t, mark.VerifiedByTeacher)
		assert.InDelta(t, 90.0, mark.Percentage, 0.001)
		assert.Equal(t, "A", mark.Grade)
		f.marks.AssertExpectations(t)
		require.NotNil(t, mark.TeacherID)
		assert.Equal(t, int64(3), *mark.TeacherID)
	})

	t.Run("override uses rubric boundaries", func(t *testing.T) {
		f := newAssessmentFixture(t)
		writeStored(t, f.root, "rubrics/r.txt", "Content (100%): depth of argument.\nGrade Pass: 40-100\nGrade Fail: 0-39")
		f.marks.On("GetByID", mock.Anything, int64(9)).Return(&models.Mark{ID: 9, StudentWorkID: 5, TotalScore: 2, MaxScore: 10, Percentage: 20, Grade: "Fail"}, nil)
		f.works.On("GetByID", mock.Anything, int64(5)).Return(&models.StudentWork{ID: 5, AssessmentID: 10}, nil)
		f.rubrics.On("GetByAssessmentID", mock.Anything, int64(10)).Return(&models.Rubric{ID: 4, AssessmentID: 10, FilePath: "rubrics/r.txt"}, nil)
		f.marks.On("UpdateVerification", mock.Anything, mock.Anything).Return(nil)

		score := 5.0
		mark, err := f.svc.VerifyMark(ctx, teacherActor, 9, &dto.VerifyMarkRequest{Verified: &verified, TotalScore: &score})
		require.NoError(t, err)
		assert.Equal(t, "Pass", mark.Grade)
	})

	t.Run("score above maximum", func(t *testing.T) {
		f := newAssessmentFixture(t)
		f.marks.On("GetByID", mock.Anything, int64(9)).Return(&models.Mark{ID: 9, StudentWorkID: 5, MaxScore: 40}, nil)
		f.works.On("GetByID", mock.Anything, int64(5)).Return(&models.StudentWork{ID: 5, AssessmentID: 10}, nil)

		score := 41.0
		_, err := f.svc.VerifyMark(ctx, teacherActor, 9, &dto.VerifyMarkRequest{Verified: &verified, TotalScore: &score})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		f.marks.AssertNotCalled(t, "UpdateVerification", mock.Anything, mock.Anything)
	})
}

func TestAssessmentService_DeleteRemovesFiles(t *testing.T) {
	f := newAssessmentFixture(t)
	writeStored(t, f.root, "briefs/b.txt", "brief")
	writeStored(t, f.root, "student_work/w.txt", "work")

	f.assessments.On("FilePaths", mock.Anything, int64(10)).Return([]string{"briefs/b.txt", "student_work/w.txt", "rubrics/missing.txt"}, nil)
	f.assessments.On("Delete", mock.Anything, int64(10)).Return(nil)

	require.NoError(t, f.svc.DeleteAssessment(context.Background(), teacherActor, 10))
	assert.NoFileExists(t, f.root+"/briefs/b.txt")
	assert.NoFileExists(t, f.root+"/student_work/w.txt")
}

func TestAssessmentService_SaveRubricLongCriterionName(t *testing.T) {
	ctx := context.Background()
	rubricText := strings.Repeat("Each submission is marked against the criteria below ", 3) + "Content (40%): Knowledge of the subject."

	f := newAssessmentFixture(t)
	f.rubrics.On("GetByAssessmentID", mock.Anything, int64(10)).Return(nil, apperrors.ErrRubricNotFound)
	f.rubrics.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(criteria []*models.RubricCriteria) bool {
		return len(criteria) == 1 && utf8.RuneCountInString(criteria[0].Name) <= marking.MaxCriterionNameLength
	})).Return(nil)

	resp, err := f.svc.SaveRubric(ctx, teacherActor, 10, &dto.RubricUploadRequest{Title: "Essay rubric"}, newFileHeader(t, "rubric.txt", rubricText))
	require.NoError(t, err)
	assert.Empty(t, resp.Warning)
	f.rubrics.AssertExpectations(t)
}
