package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

// TwoFactorRepository handles TOTP secret persistence.
type TwoFactorRepository struct {
	db *sql.DB
}

// NewTwoFactorRepository creates a new two-factor repository.
func NewTwoFactorRepository(db *sql.DB) *TwoFactorRepository {
	return &TwoFactorRepository{db: db}
}

// Upsert stores a pending (unconfirmed) secret for a user, replacing any
// previous one.
func (r *TwoFactorRepository) Upsert(ctx context.Context, secret *domain.TwoFactorSecret) error {
	query := `
		INSERT INTO two_factor_secrets (user_id, secret, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET secret = $2, confirmed_at = NULL, updated_at = $3
	`
	_, err := r.db.ExecContext(ctx, query, secret.UserID, secret.Secret, secret.CreatedAt)
	return err
}

// GetByUserID retrieves a user's secret.
func (r *TwoFactorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorSecret, error) {
	query := `
		SELECT user_id, secret, confirmed_at, created_at, updated_at
		FROM two_factor_secrets
		WHERE user_id = $1
	`

	var secret domain.TwoFactorSecret
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&secret.UserID,
		&secret.Secret,
		&secret.ConfirmedAt,
		&secret.CreatedAt,
		&secret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTwoFactorNotPending
		}
		return nil, err
	}

	return &secret, nil
}

// Confirm marks a user's secret as confirmed.
func (r *TwoFactorRepository) Confirm(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE two_factor_secrets
		SET confirmed_at = NOW(), updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTwoFactorNotPending
	}
	return nil
}

// Delete removes a user's secret.
func (r *TwoFactorRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM two_factor_secrets WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
