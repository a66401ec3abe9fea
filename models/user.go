package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a platform user
type Role string

const (
	RoleStudent Role = "student"
	RoleAuthor  Role = "author"
	RoleAdmin   Role = "admin"
)

// ValidRole returns true if the given role is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account. The role is fixed for the lifetime
// of a session; per-operation permissions are decided by the access service.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never serialized
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	Bio          string    `json:"bio,omitempty" db:"bio"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, passwordHash, name string, role Role) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsAuthor returns true if the user has the author role
func (u *User) IsAuthor() bool {
	return u != nil && u.Role == RoleAuthor
}
