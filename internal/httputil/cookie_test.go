package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSetAuthCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetAuthCookies(rec, "access", "refresh", 15*time.Minute, 7*24*time.Hour, DefaultCookieConfig())

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access, ok := byName[AccessTokenCookie]
	if !ok {
		t.Fatal("access token cookie not set")
	}
	if !access.HttpOnly {
		t.Error("access token cookie must be HttpOnly")
	}
	if access.MaxAge != int((15 * time.Minute).Seconds()) {
		t.Errorf("access MaxAge = %d", access.MaxAge)
	}

	refresh, ok := byName[RefreshTokenCookie]
	if !ok {
		t.Fatal("refresh token cookie not set")
	}
	if !refresh.HttpOnly {
		t.Error("refresh token cookie must be HttpOnly")
	}
}

func TestActiveOrgCookie_Roundtrip(t *testing.T) {
	orgID := uuid.New()
	rec := httptest.NewRecorder()
	SetActiveOrgCookie(rec, orgID, DefaultCookieConfig())

	var set *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == ActiveOrgCookie {
			set = c
		}
	}
	if set == nil {
		t.Fatal("active org cookie not set")
	}
	if set.HttpOnly {
		t.Error("active org cookie must be readable by the client")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(set)
	got, ok := GetActiveOrgFromCookie(req)
	if !ok {
		t.Fatal("cookie should round-trip")
	}
	if got != orgID {
		t.Errorf("got %s, want %s", got, orgID)
	}
}

func TestGetActiveOrgFromCookie_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ActiveOrgCookie, Value: "not-a-uuid"})

	if _, ok := GetActiveOrgFromCookie(req); ok {
		t.Error("a malformed value should be treated as absent")
	}
}

func TestGetActiveOrgFromCookie_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := GetActiveOrgFromCookie(req); ok {
		t.Error("missing cookie should report absent")
	}
}
