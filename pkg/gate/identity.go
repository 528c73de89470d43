package gate

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/domain"
)

// Identity is a verified end-user account, independent of any academy.
// Immutable for the request's lifetime.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// SessionVerifier is the slice of the session service the gate needs.
// *auth.SessionService satisfies it.
type SessionVerifier interface {
	ValidateAccessToken(tokenString string) (*auth.AccessTokenClaims, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// IdentityVerifier turns request credentials into a verified identity.
type IdentityVerifier struct {
	sessions SessionVerifier
}

// NewIdentityVerifier creates a new identity verifier.
func NewIdentityVerifier(sessions SessionVerifier) *IdentityVerifier {
	return &IdentityVerifier{sessions: sessions}
}

// Verify validates the session credential on the request. A missing,
// invalid, or expired credential yields a nil identity, never an error.
// When the access token is stale but the refresh token is still good, the
// session is refreshed and the new token pair is returned alongside the
// identity so the caller can write it back to the response.
func (v *IdentityVerifier) Verify(r *http.Request) (*Identity, *domain.TokenPair) {
	if token, ok := httputil.GetAccessTokenFromCookie(r); ok {
		if identity := v.identityFromToken(token); identity != nil {
			return identity, nil
		}
	}

	refreshToken, ok := httputil.GetRefreshTokenFromCookie(r)
	if !ok {
		return nil, nil
	}

	pair, err := v.sessions.RefreshSession(r.Context(), refreshToken)
	if err != nil {
		return nil, nil
	}

	identity := v.identityFromToken(pair.AccessToken)
	if identity == nil {
		return nil, nil
	}
	return identity, pair
}

func (v *IdentityVerifier) identityFromToken(token string) *Identity {
	claims, err := v.sessions.ValidateAccessToken(token)
	if err != nil {
		return nil
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	return &Identity{UserID: userID, Email: claims.Email}
}
