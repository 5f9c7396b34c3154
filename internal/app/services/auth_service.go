package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
	"github.com/yigit/assessai/internal/pkg/filestorage"
	"github.com/yigit/assessai/internal/pkg/validation"
)

// profilePictureTypes are the accepted profile picture extensions
var profilePictureTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// AuthService handles authentication and the current user's account
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, picture *multipart.FileHeader) (*dto.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	users      UserStore
	settings   SettingsService
	jwtService *auth.JWTService
	storage    filestorage.FileStorage
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	settings SettingsService,
	jwtService *auth.JWTService,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:      users,
		settings:   settings,
		jwtService: jwtService,
		storage:    storage,
		logger:     logger,
	}
}

// Login authenticates by username or email and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidationFailed)
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Str("login", login).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		CSRFToken:   auth.NewCSRFToken(),
		User:        dto.NewUserResponse(user),
	}, nil
}

// Register creates a teacher account while registration is open
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.AllowRegistration {
		return nil, apperrors.ErrRegistrationDisabled
	}

	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", apperrors.ErrValidationFailed)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", apperrors.ErrValidationFailed)
	}

	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      models.RoleTeacher,
		IsActive:  true,
	}
	if err := prepareUser(ctx, s.users, user, req.Password, 0); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Teacher registered")
	return user, nil
}

// GetProfile returns the user and their profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.profileResponse(ctx, user, profile), nil
}

// UpdateProfile saves the user's names, email and profile fields. A new
// picture replaces the previous one.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, picture *multipart.FileHeader) (*dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.CompiledPatterns.Email.MatchString(email) {
		return nil, apperrors.ErrInvalidEmail
	}

	exists, err := s.users.EmailExists(ctx, email, userID)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var previousPicture string
	if picture != nil {
		if !extensionAllowed(filestorage.Extension(picture.Filename), profilePictureTypes) {
			return nil, fmt.Errorf("%w: profile picture must be an image", apperrors.ErrFileTypeNotAllowed)
		}
		key, err := s.storage.Save(ctx, picture, filestorage.DirProfilePictures)
		if err != nil {
			return nil, fmt.Errorf("error storing profile picture: %w", err)
		}
		if profile.ProfilePicture != nil {
			previousPicture = *profile.ProfilePicture
		}
		profile.ProfilePicture = &key
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = email
	profile.Department = optionalString(req.Department)
	profile.Bio = optionalString(req.Bio)

	if err := s.users.UpdateProfile(ctx, user, profile); err != nil {
		return nil, err
	}

	if previousPicture != "" {
		if err := s.storage.Delete(ctx, previousPicture); err != nil {
			s.logger.Warn().Err(err).Str("key", previousPicture).Msg("Failed to delete previous profile picture")
		}
	}

	return s.profileResponse(ctx, user, profile), nil
}

// ChangePassword replaces the password after checking the current one
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return fmt.Errorf("%w: new passwords do not match", apperrors.ErrValidationFailed)
	}
	if !validation.IsStrongPassword(req.NewPassword) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain a letter and a digit", apperrors.ErrInvalidPassword)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

func (s *authServiceImpl) profileResponse(ctx context.Context, user *models.User, profile *models.UserProfile) *dto.ProfileResponse {
	data := &dto.ProfileData{}
	if profile != nil {
		if profile.ProfilePicture != nil && *profile.ProfilePicture != "" {
			url, err := s.storage.URL(ctx, *profile.ProfilePicture)
			if err != nil {
				s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to resolve profile picture URL")
			} else {
				data.ProfilePictureURL = url
			}
		}
		if profile.Department != nil {
			data.Department = *profile.Department
		}
		if profile.Bio != nil {
			data.Bio = *profile.Bio
		}
		if len(profile.Preferences) > 0 {
			data.Preferences = profile.Preferences
		}
	}
	return &dto.ProfileResponse{User: dto.NewUserResponse(user), Profile: data}
}

// prepareUser checks the identity of a new or edited account, enforces
// uniqueness (ignoring excludeID) and hashes password when one is given
func prepareUser(ctx context.Context, users UserStore, user *models.User, password string, excludeID int64) error {
	if !validation.CompiledPatterns.Username.MatchString(user.Username) {
		return fmt.Errorf("%w: username may only contain letters, digits, dots, dashes and underscores", apperrors.ErrValidationFailed)
	}
	if !validation.CompiledPatterns.Email.MatchString(user.Email) {
		return apperrors.ErrInvalidEmail
	}
	if !user.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, user.Role)
	}

	exists, err := users.UsernameExists(ctx, user.Username, excludeID)
	if err != nil {
		return fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return apperrors.ErrUsernameExists
	}

	exists, err = users.EmailExists(ctx, user.Email, excludeID)
	if err != nil {
		return fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return apperrors.ErrEmailAlreadyExists
	}

	if password == "" {
		return nil
	}
	if !validation.IsStrongPassword(password) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain a letter and a digit", apperrors.ErrInvalidPassword)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash
	return nil
}

// optionalString returns nil for blank input
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
