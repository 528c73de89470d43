package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

// ProfilesRepository handles profile (organization membership) persistence.
type ProfilesRepository struct {
	db *sql.DB
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// ProfileWithOrganization combines a profile and its organization, as loaded
// for the request gate and the academy picker.
type ProfileWithOrganization struct {
	Profile      domain.Profile
	Organization domain.Organization
}

// Create creates a new profile.
func (r *ProfilesRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return r.CreateTx(ctx, r.db, profile)
}

// CreateTx creates a new profile within a transaction.
func (r *ProfilesRepository) CreateTx(ctx context.Context, q Querier, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, organization_id, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.OrganizationID,
		profile.Role,
		profile.Status,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

// GetByUserAndOrganization retrieves a user's profile in one organization.
func (r *ProfilesRepository) GetByUserAndOrganization(ctx context.Context, userID, orgID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, organization_id, role, status, last_seen_at, created_at, updated_at, deleted_at
		FROM profiles
		WHERE user_id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`

	var profile domain.Profile
	err := r.db.QueryRowContext(ctx, query, userID, orgID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.OrganizationID,
		&profile.Role,
		&profile.Status,
		&profile.LastSeenAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&profile.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	return &profile, nil
}

// GetActiveProfilesWithOrganizations retrieves a user's active profiles
// joined with their organizations, ordered by profile creation time so the
// first element is a stable fallback choice. The inner join drops profiles
// whose organization has been deleted.
func (r *ProfilesRepository) GetActiveProfilesWithOrganizations(ctx context.Context, userID uuid.UUID) ([]*ProfileWithOrganization, error) {
	query := `
		SELECT
			p.id, p.user_id, p.organization_id, p.role, p.status, p.last_seen_at, p.created_at, p.updated_at, p.deleted_at,
			o.id, o.slug, o.name, o.logo_url, o.accent_color, o.created_at, o.updated_at, o.deleted_at
		FROM profiles p
		INNER JOIN organizations o ON p.organization_id = o.id
		WHERE p.user_id = $1
			AND p.status = 'active'
			AND p.deleted_at IS NULL
			AND o.deleted_at IS NULL
		ORDER BY p.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*ProfileWithOrganization
	for rows.Next() {
		var result ProfileWithOrganization
		err := rows.Scan(
			&result.Profile.ID,
			&result.Profile.UserID,
			&result.Profile.OrganizationID,
			&result.Profile.Role,
			&result.Profile.Status,
			&result.Profile.LastSeenAt,
			&result.Profile.CreatedAt,
			&result.Profile.UpdatedAt,
			&result.Profile.DeletedAt,
			&result.Organization.ID,
			&result.Organization.Slug,
			&result.Organization.Name,
			&result.Organization.LogoURL,
			&result.Organization.AccentColor,
			&result.Organization.CreatedAt,
			&result.Organization.UpdatedAt,
			&result.Organization.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// ListByOrganization retrieves all live profiles in an organization.
func (r *ProfilesRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Profile, error) {
	query := `
		SELECT id, user_id, organization_id, role, status, last_seen_at, created_at, updated_at, deleted_at
		FROM profiles
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var profile domain.Profile
		err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.OrganizationID,
			&profile.Role,
			&profile.Status,
			&profile.LastSeenAt,
			&profile.CreatedAt,
			&profile.UpdatedAt,
			&profile.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, &profile)
	}

	return profiles, rows.Err()
}

// TouchLastSeen stamps the profile's last-seen time, scoped by (user,
// organization) so a write can never land on another tenant's profile.
func (r *ProfilesRepository) TouchLastSeen(ctx context.Context, userID, orgID uuid.UUID) error {
	query := `
		UPDATE profiles
		SET last_seen_at = NOW()
		WHERE user_id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, userID, orgID)
	return err
}

// UpdateRole changes a profile's role.
func (r *ProfilesRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `
		UPDATE profiles
		SET role = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// UpdateStatus changes a profile's status.
func (r *ProfilesRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProfileStatus) error {
	query := `
		UPDATE profiles
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
