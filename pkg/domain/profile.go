package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role represents what a profile may do inside its organization.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
	RoleStudent Role = "student"
)

// Valid returns true for a known role value.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleSupport, RoleStudent:
		return true
	}
	return false
}

// IsOperator returns true for roles allowed into the operator dashboard.
func (r Role) IsOperator() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleSupport
}

// ProfileStatus represents the state of a user's profile in an organization.
type ProfileStatus string

const (
	ProfileStatusInvited   ProfileStatus = "invited"
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusSuspended ProfileStatus = "suspended"
)

// Profile represents a user's membership in one organization. A user holds
// at most one profile per organization.
type Profile struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           Role
	Status         ProfileStatus
	LastSeenAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// IsActive returns true if the profile is active.
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive && p.DeletedAt == nil
}
