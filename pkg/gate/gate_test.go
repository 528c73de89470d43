package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/repository"
)

// fakeSessionVerifier maps literal token strings to identities.
type fakeSessionVerifier struct {
	tokens     map[string]uuid.UUID
	refreshFor map[string]*domain.TokenPair
}

func (f *fakeSessionVerifier) ValidateAccessToken(tokenString string) (*auth.AccessTokenClaims, error) {
	userID, ok := f.tokens[tokenString]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &auth.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            "user@example.com",
	}, nil
}

func (f *fakeSessionVerifier) RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	pair, ok := f.refreshFor[refreshToken]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return pair, nil
}

func newTestGate(sessions SessionVerifier, store ProfileStore) *Gate {
	return New(Config{
		Sessions:        sessions,
		Profiles:        store,
		Logger:          discardLogger(),
		Cookies:         httputil.DefaultCookieConfig(),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		PresenceTimeout: time.Second,
	})
}

// okHandler records whether it ran and what the gate put on the context.
type okHandler struct {
	called   bool
	identity *Identity
	profile  *repository.ProfileWithOrganization
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.identity, _ = IdentityFrom(r.Context())
	h.profile, _ = ActiveProfileFrom(r.Context())
	w.WriteHeader(http.StatusOK)
}

func doRequest(g *Gate, path string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *okHandler) {
	handler := &okHandler{}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	g.Middleware(handler).ServeHTTP(rec, req)
	return rec, handler
}

func TestGate_AnonymousRedirectedToLogin(t *testing.T) {
	g := newTestGate(&fakeSessionVerifier{}, &fakeProfileStore{})

	rec, handler := doRequest(g, "/students")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if handler.called {
		t.Error("handler should not run behind a redirect")
	}
}

func TestGate_AnonymousAllowedOnPublicPath(t *testing.T) {
	g := newTestGate(&fakeSessionVerifier{}, &fakeProfileStore{})

	rec, handler := doRequest(g, "/academy/acme/home")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !handler.called {
		t.Fatal("handler should run")
	}
	if handler.identity != nil {
		t.Error("anonymous request should carry no identity")
	}
}

func TestGate_AuthenticatedOperatorAllowed(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleAdmin, "acme", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{profile}}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, handler := doRequest(g, "/students",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if handler.identity == nil || handler.identity.UserID != userID {
		t.Error("handler should see the verified identity")
	}
	if handler.profile != profile {
		t.Error("handler should see the active profile")
	}

	g.Presence().Wait()
	if store.touchCount() != 1 {
		t.Errorf("presence touches = %d, want 1", store.touchCount())
	}
}

func TestGate_StudentRedirectedOffDashboard(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleStudent, "acme", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{profile}}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, _ := doRequest(g, "/branding",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/academy/acme/home" {
		t.Errorf("Location = %q, want /academy/acme/home", loc)
	}
}

func TestGate_MultipleProfilesForcePicker(t *testing.T) {
	userID := uuid.New()
	first := makeProfile(userID, domain.RoleOwner, "acme", time.Now().Add(-time.Hour))
	second := makeProfile(userID, domain.RoleAdmin, "beta", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{first, second}}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, _ := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/select-academy" {
		t.Errorf("Location = %q, want /select-academy", loc)
	}
}

func TestGate_PreferenceCookieNarrowsAmbiguity(t *testing.T) {
	userID := uuid.New()
	first := makeProfile(userID, domain.RoleOwner, "acme", time.Now().Add(-time.Hour))
	second := makeProfile(userID, domain.RoleAdmin, "beta", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{first, second}}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, handler := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"},
		&http.Cookie{Name: httputil.ActiveOrgCookie, Value: second.Profile.OrganizationID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if handler.profile != second {
		t.Error("handler should see the preferred profile")
	}
}

func TestGate_MalformedPreferenceCookieIgnored(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleOwner, "acme", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{profile}}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, handler := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"},
		&http.Cookie{Name: httputil.ActiveOrgCookie, Value: "not-a-uuid"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if handler.profile != profile {
		t.Error("fallback profile should be active")
	}
}

func TestGate_RefreshedSessionSetsCookies(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleOwner, "acme", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{profile}}
	sessions := &fakeSessionVerifier{
		tokens: map[string]uuid.UUID{"new-access": userID},
		refreshFor: map[string]*domain.TokenPair{
			"good-refresh": {AccessToken: "new-access", RefreshToken: "good-refresh"},
		},
	}
	g := newTestGate(sessions, store)

	rec, _ := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "expired"},
		&http.Cookie{Name: httputil.RefreshTokenCookie, Value: "good-refresh"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var gotAccess bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == httputil.AccessTokenCookie && c.Value == "new-access" {
			gotAccess = true
		}
	}
	if !gotAccess {
		t.Error("refreshed access token should be set on the response")
	}
}

func TestGate_RefreshedSessionSurvivesRedirect(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleStudent, "acme", time.Now())
	store := &fakeProfileStore{profiles: []*repository.ProfileWithOrganization{profile}}
	sessions := &fakeSessionVerifier{
		tokens: map[string]uuid.UUID{"new-access": userID},
		refreshFor: map[string]*domain.TokenPair{
			"good-refresh": {AccessToken: "new-access", RefreshToken: "good-refresh"},
		},
	}
	g := newTestGate(sessions, store)

	// Student on a dashboard page: redirected, but the refreshed session
	// cookies must still reach the client.
	rec, _ := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.RefreshTokenCookie, Value: "good-refresh"})
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	var gotAccess bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == httputil.AccessTokenCookie && c.Value == "new-access" {
			gotAccess = true
		}
	}
	if !gotAccess {
		t.Error("refreshed cookies should be set even on a redirect response")
	}
}

func TestGate_InvalidCredentialTreatedAsAnonymous(t *testing.T) {
	g := newTestGate(&fakeSessionVerifier{}, &fakeProfileStore{})

	rec, _ := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "garbage"},
		&http.Cookie{Name: httputil.RefreshTokenCookie, Value: "garbage"})
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestGate_StoreFailureFailsClosed(t *testing.T) {
	userID := uuid.New()
	store := &fakeProfileStore{loadErr: errors.New("connection refused")}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, handler := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if handler.called {
		t.Error("handler should not run when resolution fails on a protected path")
	}
}

func TestGate_StoreFailureStillServesPublicPath(t *testing.T) {
	userID := uuid.New()
	store := &fakeProfileStore{loadErr: errors.New("connection refused")}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, handler := doRequest(g, "/academy/acme/home",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !handler.called {
		t.Fatal("public pages should still render when resolution fails")
	}
}

func TestGate_PresenceFailureDoesNotAffectResponse(t *testing.T) {
	userID := uuid.New()
	profile := makeProfile(userID, domain.RoleOwner, "acme", time.Now())
	store := &fakeProfileStore{
		profiles: []*repository.ProfileWithOrganization{profile},
		touchErr: errors.New("write timeout"),
	}
	sessions := &fakeSessionVerifier{tokens: map[string]uuid.UUID{"good-token": userID}}
	g := newTestGate(sessions, store)

	rec, _ := doRequest(g, "/overview",
		&http.Cookie{Name: httputil.AccessTokenCookie, Value: "good-token"})
	g.Presence().Wait()

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGate_NoPresenceOnRedirect(t *testing.T) {
	store := &fakeProfileStore{}
	g := newTestGate(&fakeSessionVerifier{}, store)

	_, _ = doRequest(g, "/students")
	g.Presence().Wait()

	if store.touchCount() != 0 {
		t.Errorf("presence touches = %d, want 0", store.touchCount())
	}
}
