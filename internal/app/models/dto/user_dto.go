package dto

import "github.com/yigit/assessai/internal/app/models"

// CreateUserRequest is used by administrators to create accounts
type CreateUserRequest struct {
	Username  string          `json:"username" binding:"required,min=3,max=64"`
	Email     string          `json:"email" binding:"required,email,max=120"`
	Password  string          `json:"password" binding:"required,min=8"`
	FirstName string          `json:"firstName" binding:"required,max=64"`
	LastName  string          `json:"lastName" binding:"required,max=64"`
	Role      models.RoleType `json:"role" binding:"required,oneof=admin teacher" example:"teacher"`
	IsActive  *bool           `json:"isActive"`
}

// UpdateUserRequest represents an administrator's edit of a user.
// An empty Password keeps the current one.
type UpdateUserRequest struct {
	Username  string          `json:"username" binding:"required,min=3,max=64"`
	Email     string          `json:"email" binding:"required,email,max=120"`
	Password  string          `json:"password" binding:"omitempty,min=8"`
	FirstName string          `json:"firstName" binding:"required,max=64"`
	LastName  string          `json:"lastName" binding:"required,max=64"`
	Role      models.RoleType `json:"role" binding:"required,oneof=admin teacher" example:"teacher"`
	IsActive  *bool           `json:"isActive"`
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination PaginationInfo  `json:"pagination"`
}
