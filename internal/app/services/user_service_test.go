package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
)

func TestUserService_ListUsers(t *testing.T) {
	users := new(mockUserStore)
	users.On("List", mock.Anything, uint64(20), 10).
		Return([]*models.User{{ID: 1, Username: "admin"}}, int64(21), nil)

	svc := NewUserService(users, testLogger)
	resp, err := svc.ListUsers(context.Background(), 3, 10)
	require.NoError(t, err)

	require.Len(t, resp.Users, 1)
	assert.Equal(t, 3, resp.Pagination.CurrentPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, int64(21), resp.Pagination.TotalItems)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	req := &dto.CreateUserRequest{
		Username:  "mlee",
		Email:     "MLee@School.ac.uk ",
		Password:  "teach2024",
		FirstName: "Mina",
		LastName:  "Lee",
		Role:      models.RoleAdmin,
	}

	t.Run("success", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("UsernameExists", mock.Anything, "mlee", int64(0)).Return(false, nil)
		users.On("EmailExists", mock.Anything, "mlee@school.ac.uk", int64(0)).Return(false, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleAdmin && u.IsActive && auth.CheckPassword(u.PasswordHash, "teach2024")
		})).Return(nil)

		user, err := NewUserService(users, testLogger).CreateUser(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "mlee@school.ac.uk", user.Email)
		users.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("UsernameExists", mock.Anything, "mlee", int64(0)).Return(true, nil)

		_, err := NewUserService(users, testLogger).CreateUser(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrUsernameExists)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	inactive := false

	t.Run("keeps password when empty", func(t *testing.T) {
		users := new(mockUserStore)
		existing := &models.User{ID: 4, Username: "mlee", Email: "mlee@school.ac.uk", Role: models.RoleTeacher, IsActive: true, PasswordHash: "old-hash"}
		users.On("GetByID", mock.Anything, int64(4)).Return(existing, nil)
		users.On("UsernameExists", mock.Anything, "mlee", int64(4)).Return(false, nil)
		users.On("EmailExists", mock.Anything, "mlee@school.ac.uk", int64(4)).Return(false, nil)
		users.On("Update", mock.Anything, existing).Return(nil)

		user, err := NewUserService(users, testLogger).UpdateUser(ctx, 4, &dto.UpdateUserRequest{
			Username: "mlee", Email: "mlee@school.ac.uk", FirstName: "Mina", LastName: "Lee",
			Role: models.RoleTeacher, IsActive: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "old-hash", user.PasswordHash)
		assert.False(t, user.IsActive)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByID", mock.Anything, int64(4)).Return(&models.User{ID: 4}, nil)
		users.On("UsernameExists", mock.Anything, "mlee", int64(4)).Return(false, nil)
		users.On("EmailExists", mock.Anything, "taken@school.ac.uk", int64(4)).Return(true, nil)

		_, err := NewUserService(users, testLogger).UpdateUser(ctx, 4, &dto.UpdateUserRequest{
			Username: "mlee", Email: "taken@school.ac.uk", FirstName: "Mina", LastName: "Lee", Role: models.RoleTeacher,
		})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByID", mock.Anything, int64(9)).Return(nil, apperrors.ErrUserNotFound)

		_, err := NewUserService(users, testLogger).UpdateUser(ctx, 9, &dto.UpdateUserRequest{Username: "x"})
		assert.True(t, apperrors.IsNotFound(err))
	})
}
