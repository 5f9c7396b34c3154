package dto

import (
	"time"

	"github.com/yigit/assessai/internal/app/models"
)

// LoginRequest represents login credentials. Username may also be an email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"jdoe"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RegisterRequest represents a teacher self-registration
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=64" example:"jdoe"`
	Email           string `json:"email" binding:"required,email,max=120" example:"jdoe@school.ac.uk"`
	Password        string `json:"password" binding:"required,min=8" example:"secret123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"secret123"`
	FirstName       string `json:"firstName" binding:"required,max=64" example:"John"`
	LastName        string `json:"lastName" binding:"required,max=64" example:"Doe"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	TokenType   string        `json:"tokenType" example:"Bearer"`
	ExpiresIn   int           `json:"expiresIn" example:"3600"`
	CSRFToken   string        `json:"csrfToken"`
	User        *UserResponse `json:"user"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64           `json:"id" example:"1"`
	Username  string          `json:"username" example:"jdoe"`
	Email     string          `json:"email" example:"jdoe@school.ac.uk"`
	FirstName string          `json:"firstName" example:"John"`
	LastName  string          `json:"lastName" example:"Doe"`
	Role      models.RoleType `json:"role" example:"teacher"`
	IsActive  bool            `json:"isActive" example:"true"`
	LastLogin *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewUserResponse converts a models.User to a UserResponse
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponses converts a slice of users
func NewUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// ProfileResponse is the current user together with their profile
type ProfileResponse struct {
	User    *UserResponse `json:"user"`
	Profile *ProfileData  `json:"profile"`
}

// ProfileData is the public part of a UserProfile
type ProfileData struct {
	ProfilePictureURL string      `json:"profilePictureUrl,omitempty"`
	Department        string      `json:"department,omitempty" example:"Computing"`
	Bio               string      `json:"bio,omitempty"`
	Preferences       interface{} `json:"preferences,omitempty"`
}

// UpdateProfileRequest is bound from the multipart profile form
type UpdateProfileRequest struct {
	FirstName  string `form:"first_name" binding:"required,max=64"`
	LastName   string `form:"last_name" binding:"required,max=64"`
	Email      string `form:"email" binding:"required,email,max=120"`
	Department string `form:"department" binding:"max=128"`
	Bio        string `form:"bio"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
