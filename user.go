package machina

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Role        Role       `json:"role"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Role determines what a user may see and mutate.
type Role string

const (
	// RoleAdmin may read and mutate every report and manage the
	// component-type catalog.
	RoleAdmin Role = "admin"

	// RoleUser may read every report but mutate only their own.
	RoleUser Role = "user"

	// RoleViewer is read-only and scoped to reports they own.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// UserStatus represents the status of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// FullName returns the user's full name, falling back to the username.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// IsActive returns true if the user account is active.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserService defines operations for managing users.
type UserService interface {
	// FindUserByID retrieves a user by their ID.
	// Returns ENOTFOUND if the user does not exist.
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindUserByEmail retrieves a user by their email address.
	// Returns ENOTFOUND if the user does not exist.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// FindUsers retrieves users matching the filter criteria.
	// Returns the matching users and total count (which may differ if Limit is set).
	FindUsers(ctx context.Context, filter UserFilter) ([]*User, int, error)

	// CreateUser creates a new user with the given password.
	// Returns ECONFLICT if email or username already exists.
	CreateUser(ctx context.Context, user *User, password string) error

	// UpdateUser updates an existing user.
	// Returns ENOTFOUND if the user does not exist.
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*User, error)

	// DeleteUser soft-deletes a user by setting status to deleted.
	// Returns ENOTFOUND if the user does not exist.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// VerifyPassword verifies a user's password and returns the user if valid.
	// Returns EUNAUTHORIZED if credentials are invalid.
	// Returns EFORBIDDEN if the account is not active.
	VerifyPassword(ctx context.Context, email, password string) (*User, error)

	// UpdateLastLogin updates the user's last login timestamp.
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// UserFilter defines criteria for filtering users.
type UserFilter struct {
	ID       *uuid.UUID
	Email    *string
	Username *string
	Role     *Role
	Status   *UserStatus

	// Pagination
	Offset int
	Limit  int
}

// UserUpdate defines fields that can be updated on a user.
// Pointer fields: nil = don't update, non-nil = update to this value.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Role      *Role
	Status    *UserStatus
}
