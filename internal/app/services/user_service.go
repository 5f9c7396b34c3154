package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/helpers"
)

// UserService defines the administrator's user management operations
type UserService interface {
	ListUsers(ctx context.Context, page, size int) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{users: users, logger: logger}
}

// ListUsers returns one page of users, newest first
func (s *userServiceImpl) ListUsers(ctx context.Context, page, size int) (*dto.UserListResponse, error) {
	p := helpers.NewPage(page, size)
	users, total, err := s.users.List(ctx, p.Offset(), p.Size)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return &dto.UserListResponse{
		Users:      dto.NewUserResponses(users),
		Pagination: p.Info(total),
	}, nil
}

// GetUser retrieves a user by ID
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.users.GetByID(ctx, id)
}

// CreateUser creates an account with any role
func (s *userServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		IsActive:  dto.BoolOrDefault(req.IsActive, true),
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", apperrors.ErrValidationFailed)
	}
	if err := prepareUser(ctx, s.users, user, req.Password, 0); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created by administrator")
	return user, nil
}

// UpdateUser edits an account. A non-empty password resets it.
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Username = strings.TrimSpace(req.Username)
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Role = req.Role
	user.IsActive = dto.BoolOrDefault(req.IsActive, user.IsActive)

	if err := prepareUser(ctx, s.users, user, req.Password, user.ID); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("User updated by administrator")
	return user, nil
}
