package gate

import (
	"testing"

	"github.com/academyos/academyos/pkg/domain"
)

func TestIsDashboardPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/overview", true},
		{"/courses", true},
		{"/courses/abc-123", true},
		{"/students", true},
		{"/permissions", true},
		{"/branding", true},
		{"/settings", true},
		{"/settings/2fa/setup", true},
		{"/coursestream", false},
		{"/", false},
		{"/login", false},
		{"/academy/acme/home", false},
		{"/v1/auth/login", false},
	}

	for _, tt := range tests {
		if got := IsDashboardPath(tt.path); got != tt.want {
			t.Errorf("IsDashboardPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/login", true},
		{"/signup", true},
		{"/select-academy", true},
		{"/academy/acme/home", true},
		{"/academy/acme/courses", true},
		{"/v1/auth/login", true},
		{"/healthz", true},
		{"/overview", false},
		{"/courses", false},
		{"/settings/2fa/setup", false},
	}

	for _, tt := range tests {
		if got := IsPublicPath(tt.path); got != tt.want {
			t.Errorf("IsPublicPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDecide(t *testing.T) {
	anonymous := PolicyInput{}
	admin := PolicyInput{
		Authenticated: true,
		HasProfile:    true,
		Role:          domain.RoleAdmin,
		OrgSlug:       "acme",
	}
	student := PolicyInput{
		Authenticated: true,
		HasProfile:    true,
		Role:          domain.RoleStudent,
		OrgSlug:       "acme",
	}
	multiNoPref := PolicyInput{
		Authenticated: true,
		HasProfile:    true,
		Role:          domain.RoleOwner,
		OrgSlug:       "acme",
		HasMultiple:   true,
	}
	multiWithPref := PolicyInput{
		Authenticated:     true,
		HasProfile:        true,
		Role:              domain.RoleOwner,
		OrgSlug:           "beta",
		HasMultiple:       true,
		PreferenceApplied: true,
	}
	noProfile := PolicyInput{Authenticated: true}

	tests := []struct {
		name       string
		path       string
		in         PolicyInput
		wantKind   DecisionKind
		wantTarget string
	}{
		// Rule 1: anonymous callers
		{"anonymous on landing", "/", anonymous, DecisionAllow, ""},
		{"anonymous on login", "/login", anonymous, DecisionAllow, ""},
		{"anonymous on academy page", "/academy/acme/home", anonymous, DecisionAllow, ""},
		{"anonymous on students", "/students", anonymous, DecisionRedirect, "/login"},
		{"anonymous on overview", "/overview", anonymous, DecisionRedirect, "/login"},
		{"anonymous on nested course", "/courses/abc", anonymous, DecisionRedirect, "/login"},

		// Rule 2: multi-academy ambiguity
		{"multi no pref on overview", "/overview", multiNoPref, DecisionRedirect, "/select-academy"},
		{"multi no pref on login", "/login", multiNoPref, DecisionRedirect, "/select-academy"},
		{"multi no pref on picker", "/select-academy", multiNoPref, DecisionAllow, ""},
		{"multi no pref on public page", "/academy/acme/home", multiNoPref, DecisionAllow, ""},
		{"multi with pref on overview", "/overview", multiWithPref, DecisionAllow, ""},

		// Rule 3: students off the dashboard
		{"student on branding", "/branding", student, DecisionRedirect, "/academy/acme/home"},
		{"student on overview", "/overview", student, DecisionRedirect, "/academy/acme/home"},
		{"student on own academy page", "/academy/acme/home", student, DecisionAllow, ""},

		// Rule 4: authenticated callers past the auth pages
		{"admin on login", "/login", admin, DecisionRedirect, "/overview"},
		{"admin on signup", "/signup", admin, DecisionRedirect, "/overview"},
		{"student on login", "/login", student, DecisionRedirect, "/academy/acme/home"},
		{"no profile on login", "/login", noProfile, DecisionRedirect, "/overview"},

		// Rule 5: everything else passes
		{"admin on students", "/students", admin, DecisionAllow, ""},
		{"admin on overview", "/overview", admin, DecisionAllow, ""},
		{"admin on landing", "/", admin, DecisionAllow, ""},
		{"no profile on overview", "/overview", noProfile, DecisionAllow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.path, tt.in)
			if got.Kind != tt.wantKind {
				t.Fatalf("Decide(%q).Kind = %v, want %v", tt.path, got.Kind, tt.wantKind)
			}
			if got.Target != tt.wantTarget {
				t.Errorf("Decide(%q).Target = %q, want %q", tt.path, got.Target, tt.wantTarget)
			}
		})
	}
}

func TestDecide_MissingSlugDegradesToLogin(t *testing.T) {
	in := PolicyInput{
		Authenticated: true,
		HasProfile:    true,
		Role:          domain.RoleStudent,
		OrgSlug:       "",
	}

	got := Decide("/overview", in)
	if got.Kind != DecisionRedirect || got.Target != PathLogin {
		t.Fatalf("Decide = %+v, want redirect to %s", got, PathLogin)
	}
	if got.Diagnostic == "" {
		t.Error("Diagnostic should be set when the organization has no slug")
	}
}

func TestDecide_Deterministic(t *testing.T) {
	in := PolicyInput{
		Authenticated: true,
		HasProfile:    true,
		Role:          domain.RoleStudent,
		OrgSlug:       "acme",
		HasMultiple:   true,
	}

	first := Decide("/overview", in)
	for i := 0; i < 5; i++ {
		if got := Decide("/overview", in); got != first {
			t.Fatalf("Decide not deterministic: %+v vs %+v", got, first)
		}
	}
}
