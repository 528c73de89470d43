package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/repository"
)

// TwoFactorService manages optional TOTP two-step verification.
type TwoFactorService struct {
	issuer  string
	secrets *repository.TwoFactorRepository
	users   *repository.UsersRepository
}

// NewTwoFactorService creates a new two-factor service.
func NewTwoFactorService(issuer string, secrets *repository.TwoFactorRepository, users *repository.UsersRepository) *TwoFactorService {
	return &TwoFactorService{
		issuer:  issuer,
		secrets: secrets,
		users:   users,
	}
}

// Setup generates a pending TOTP secret for the user and returns the
// otpauth:// provisioning URL for authenticator apps. Calling Setup again
// replaces any unconfirmed secret.
func (s *TwoFactorService) Setup(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", err
	}

	err = s.secrets.Upsert(ctx, &domain.TwoFactorSecret{
		UserID:    userID,
		Secret:    key.Secret(),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// Enable confirms the pending secret with a code and turns on two-step
// verification for the user.
func (s *TwoFactorService) Enable(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := s.secrets.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if !totp.Validate(code, secret.Secret) {
		return domain.ErrInvalidTwoFactorCode
	}

	if err := s.secrets.Confirm(ctx, userID); err != nil {
		return err
	}
	return s.users.SetTwoFactorEnabled(ctx, userID, true)
}

// Disable turns off two-step verification and discards the secret.
func (s *TwoFactorService) Disable(ctx context.Context, userID uuid.UUID) error {
	if err := s.secrets.Delete(ctx, userID); err != nil {
		return err
	}
	return s.users.SetTwoFactorEnabled(ctx, userID, false)
}

// Verify checks a login code for a user with two-step verification enabled.
func (s *TwoFactorService) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := s.secrets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTwoFactorNotPending) {
			return domain.ErrTwoFactorNotEnabled
		}
		return err
	}
	if secret.ConfirmedAt == nil {
		return domain.ErrTwoFactorNotEnabled
	}

	if !totp.Validate(code, secret.Secret) {
		return domain.ErrInvalidTwoFactorCode
	}
	return nil
}
