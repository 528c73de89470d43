package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course is a unit of content owned by an organization.
type Course struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
	Description    *string
	Published      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Student is an organization's roster entry for a learner. It may reference
// a platform user (once the learner has signed up) but does not have to.
type Student struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         *uuid.UUID
	Email          string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Reminder is a scheduled note an operator attaches to an organization,
// typically about a student or course follow-up.
type Reminder struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	Message        string
	RemindAt       time.Time
	CreatedAt      time.Time
	DeletedAt      *time.Time
}
