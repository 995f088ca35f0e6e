package models

import (
	"fmt"
	"strings"
	"time"
)

// Roles recognized by the access-control gates. Anything other than
// RoleAdmin is treated as an unprivileged account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a row in the local user directory. PasswordHash always holds a
// bcrypt hash, never plaintext. SpotifyID links the account to an external
// Spotify identity and is empty until the first Spotify login.
type User struct {
	ID           int64
	Username     string
	Role         string
	Email        string
	PasswordHash string
	SpotifyID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks that the user's data is acceptable for persistence.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserChanges describes a partial update. Nil fields are left untouched;
// Password, when set, is re-hashed by the repository before storage.
type UserChanges struct {
	Username  *string
	Role      *string
	Email     *string
	Password  *string
	SpotifyID *string
}

// SessionUser is the snapshot of an authenticated account held in the
// session cookie. Its absence means the request is unauthenticated.
type SessionUser struct {
	ID       int64
	Username string
	Role     string
}

// IsAdmin reports whether the session belongs to an administrator.
func (s SessionUser) IsAdmin() bool {
	return s.Role == RoleAdmin
}
