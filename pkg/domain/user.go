package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account, independent of any academy.
type User struct {
	ID                  uuid.UUID
	Email               string
	Name                *string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	TwoFactorEnabled    bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// IsLocked returns true if the account is currently locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// UserPassword stores password credentials separately from the account record.
type UserPassword struct {
	UserID            uuid.UUID
	PasswordHash      string
	PasswordUpdatedAt time.Time
}

// TwoFactorSecret stores a TOTP secret for a user. A secret is pending until
// the user confirms a code, at which point ConfirmedAt is set.
type TwoFactorSecret struct {
	UserID      uuid.UUID
	Secret      string
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
