package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
)

type assessmentsByID map[int64]*models.AssessmentBrief

func (m assessmentsByID) GetByID(_ context.Context, id int64) (*models.AssessmentBrief, error) {
	if a, ok := m[id]; ok {
		return a, nil
	}
	return nil, apperrors.ErrAssessmentNotFound
}

func TestActor_Owns(t *testing.T) {
	teacher := Actor{UserID: 3, Role: models.RoleTeacher}
	admin := Actor{UserID: 1, Role: models.RoleAdmin}

	assert.True(t, teacher.Owns(3))
	assert.False(t, teacher.Owns(4))
	assert.True(t, admin.Owns(4))
	assert.False(t, Actor{}.Owns(0))
}

func TestOwnedAssessment(t *testing.T) {
	svc := NewAuthorizationService(nil, nil, assessmentsByID{
		10: {ID: 10, CreatedBy: 3},
	})
	ctx := context.Background()

	got, err := svc.OwnedAssessment(ctx, Actor{UserID: 3, Role: models.RoleTeacher}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)

	_, err = svc.OwnedAssessment(ctx, Actor{UserID: 4, Role: models.RoleTeacher}, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.OwnedAssessment(ctx, Actor{UserID: 3, Role: models.RoleTeacher}, 99)
	assert.ErrorIs(t, err, apperrors.ErrAssessmentNotFound)
}
