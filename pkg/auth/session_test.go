package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

func testSessionService(secret string, accessTTL time.Duration) *SessionService {
	return NewSessionService(SessionConfig{
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		JWTSecret:       []byte(secret),
		Issuer:          "academyos-test",
	}, nil, nil)
}

func TestAccessToken_SignAndValidate(t *testing.T) {
	svc := testSessionService("test-secret-that-is-long-enough-xx", 15*time.Minute)
	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}
	sessionID := uuid.New()

	signed, expiresAt, err := svc.signAccessToken(user, sessionID, time.Now())
	if err != nil {
		t.Fatalf("signAccessToken failed: %v", err)
	}
	if time.Until(expiresAt) > 15*time.Minute {
		t.Errorf("expiresAt %v too far in the future", expiresAt)
	}

	claims, err := svc.ValidateAccessToken(signed)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.ID != sessionID.String() {
		t.Errorf("claims.ID = %q, want session id %q", claims.ID, sessionID)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	signer := testSessionService("test-secret-that-is-long-enough-xx", 15*time.Minute)
	verifier := testSessionService("a-completely-different-secret-yyyy", 15*time.Minute)
	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}

	signed, _, err := signer.signAccessToken(user, uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("signAccessToken failed: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("error = %v, want %v", err, domain.ErrInvalidToken)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := testSessionService("test-secret-that-is-long-enough-xx", time.Minute)
	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}

	// Sign as of an hour ago so the token is already expired.
	signed, _, err := svc.signAccessToken(user, uuid.New(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("signAccessToken failed: %v", err)
	}

	if _, err := svc.ValidateAccessToken(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("error = %v, want %v", err, domain.ErrInvalidToken)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := testSessionService("test-secret-that-is-long-enough-xx", time.Minute)

	if _, err := svc.ValidateAccessToken("not.a.jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("error = %v, want %v", err, domain.ErrInvalidToken)
	}
}
