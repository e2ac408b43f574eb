package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Email          string
	HashedPassword string

	// Set every time the password is re-hashed, nil for accounts
	// that never changed theirs
	PasswordChangedAt *time.Time
}

// PasswordChangedAfter reports whether the password was changed after t.
// Used to reject refresh tokens minted before a password change.
// Compared at second granularity: token issued-at claims carry no finer
// precision.
func (u User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(t)
}

// Public returns the user view that is safe to cache and return to clients
func (u User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		CreatedAt:         u.CreatedAt,
		PasswordChangedAt: u.PasswordChangedAt,
	}
}

// PublicUser is the sanitized user snapshot: it never carries the password
// hash. The same shape is serialized into the session cache.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`

	// Kept in the snapshot so token refresh can check it without a db read
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
}

// PasswordChangedAfter mirrors User.PasswordChangedAfter for cached snapshots
func (u PublicUser) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(t)
}

// PendingRegistration is a not-yet-persisted account. It exists only inside
// a signed activation token and is destroyed when the token expires or is
// redeemed.
type PendingRegistration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
