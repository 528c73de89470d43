package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant academy. The slug is the stable
// human-readable key used in public academy URLs; it is unique and expected
// to be non-empty, an empty slug is a configuration inconsistency.
type Organization struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	LogoURL     *string
	AccentColor *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
