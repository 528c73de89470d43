package httputil

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Cookie names used across the app.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	ActiveOrgCookie    = "active_org"
)

// CookieConfig holds cookie configuration.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool // true in production (HTTPS)
	SameSite http.SameSite
}

// DefaultCookieConfig returns default cookie configuration.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}
}

func (cfg CookieConfig) set(w http.ResponseWriter, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// SetAuthCookies sets HttpOnly cookies for access and refresh tokens.
func SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration, cfg CookieConfig) {
	cfg.set(w, AccessTokenCookie, accessToken, int(accessTTL.Seconds()), true)
	cfg.set(w, RefreshTokenCookie, refreshToken, int(refreshTTL.Seconds()), true)
}

// ClearAuthCookies clears auth cookies.
func ClearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	cfg.set(w, AccessTokenCookie, "", -1, true)
	cfg.set(w, RefreshTokenCookie, "", -1, true)
}

// GetAccessTokenFromCookie extracts the access token from its cookie.
func GetAccessTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// GetRefreshTokenFromCookie extracts the refresh token from its cookie.
func GetRefreshTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// SetActiveOrgCookie records the caller's preferred academy. Not HttpOnly:
// the client-side academy switcher reads it.
func SetActiveOrgCookie(w http.ResponseWriter, orgID uuid.UUID, cfg CookieConfig) {
	cfg.set(w, ActiveOrgCookie, orgID.String(), int((30 * 24 * time.Hour).Seconds()), false)
}

// ClearActiveOrgCookie clears the academy preference.
func ClearActiveOrgCookie(w http.ResponseWriter, cfg CookieConfig) {
	cfg.set(w, ActiveOrgCookie, "", -1, false)
}

// GetActiveOrgFromCookie extracts the preferred organization ID, if any.
// A malformed value is treated as absent.
func GetActiveOrgFromCookie(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(ActiveOrgCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
