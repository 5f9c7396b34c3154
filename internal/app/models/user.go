package models

import (
	"encoding/json"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Username     string     `json:"username" db:"username" example:"jdoe"`
	Email        string     `json:"email" db:"email" example:"jdoe@school.ac.uk"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         RoleType   `json:"role" db:"role" example:"teacher"`
	FirstName    string     `json:"firstName" db:"first_name" example:"John"`
	LastName     string     `json:"lastName" db:"last_name" example:"Doe"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName returns "First Last", falling back to the username
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// UserProfile holds optional profile data, one row per user
type UserProfile struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"userId" db:"user_id"`
	ProfilePicture *string         `json:"profilePicture,omitempty" db:"profile_picture"`
	Department     *string         `json:"department,omitempty" db:"department"`
	Bio            *string         `json:"bio,omitempty" db:"bio"`
	Preferences    json.RawMessage `json:"preferences,omitempty" db:"preferences" swaggertype:"object"`
}
