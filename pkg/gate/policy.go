package gate

import (
	"strings"

	"github.com/academyos/academyos/pkg/domain"
)

// Paths recognized by the routing policy. Anything outside these is public.
const (
	PathLanding       = "/"
	PathLogin         = "/login"
	PathSignup        = "/signup"
	PathSelectAcademy = "/select-academy"
	PathOverview      = "/overview"

	academyPrefix = "/academy/"
)

var dashboardPaths = []string{
	"/overview",
	"/courses",
	"/students",
	"/permissions",
	"/branding",
	"/settings",
}

// IsAuthPath reports whether path is a login or signup page.
func IsAuthPath(path string) bool {
	return path == PathLogin || path == PathSignup
}

// IsDashboardPath reports whether path is an operator-dashboard page.
func IsDashboardPath(path string) bool {
	for _, p := range dashboardPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// IsPublicPath reports whether path may be served without authentication:
// the landing page, auth pages, the academy picker, and tenant-scoped
// academy pages.
func IsPublicPath(path string) bool {
	if path == PathLanding || path == PathSelectAcademy || IsAuthPath(path) {
		return true
	}
	if strings.HasPrefix(path, academyPrefix) {
		return true
	}
	return !IsDashboardPath(path)
}

// StudentHomePath returns the student home page for an academy slug.
func StudentHomePath(slug string) string {
	return academyPrefix + slug + "/home"
}

// DecisionKind enumerates gate outcomes.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirect
)

// Decision is the routing policy's output. Diagnostic is set when the policy
// degraded because of inconsistent configuration; the gate logs it
// server-side and the caller only sees the safe redirect.
type Decision struct {
	Kind       DecisionKind
	Target     string
	Diagnostic string
}

// Allow lets the request through unchanged.
func Allow() Decision {
	return Decision{Kind: DecisionAllow}
}

// Redirect sends the caller to target.
func Redirect(target string) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// PolicyInput carries everything Decide needs. It is assembled by the gate
// from the verified identity and the profile resolution; Decide itself does
// no I/O.
type PolicyInput struct {
	// Authenticated is true when the identity verifier produced an identity.
	Authenticated bool
	// HasProfile is true when a profile was resolved as active.
	HasProfile bool
	// Role and OrgSlug describe the active profile; zero values otherwise.
	Role    domain.Role
	OrgSlug string
	// HasMultiple is true when the identity holds more than one profile.
	HasMultiple bool
	// PreferenceApplied is true when the active profile was selected by a
	// validated academy preference rather than the fallback ordering.
	PreferenceApplied bool
}

// Decide computes the routing decision for a path. Rules are evaluated in
// order and the first match wins; ambiguity resolution deliberately precedes
// role-based redirection so a multi-tenant student is never sent into the
// wrong academy.
func Decide(path string, in PolicyInput) Decision {
	// 1. Anonymous callers only get public pages.
	if !in.Authenticated {
		if !IsPublicPath(path) {
			return Redirect(PathLogin)
		}
		return Allow()
	}

	// 2. Unresolved multi-academy ambiguity: force the picker before any
	// auth or dashboard page.
	if (IsAuthPath(path) || IsDashboardPath(path)) &&
		in.HasMultiple && !in.PreferenceApplied && path != PathSelectAcademy {
		return Redirect(PathSelectAcademy)
	}

	// 3. Students have no business on the operator dashboard.
	if in.HasProfile && in.Role == domain.RoleStudent && IsDashboardPath(path) {
		return redirectToStudentHome(in.OrgSlug)
	}

	// 4. Authenticated callers are past the auth pages.
	if IsAuthPath(path) {
		if in.HasProfile && in.Role == domain.RoleStudent {
			return redirectToStudentHome(in.OrgSlug)
		}
		return Redirect(PathOverview)
	}

	// 5. Everything else passes.
	return Allow()
}

// redirectToStudentHome keys the redirect by the organization slug. An
// organization without a slug cannot produce a valid target; degrade to the
// login page and surface a diagnostic for the gate to log.
func redirectToStudentHome(slug string) Decision {
	if slug == "" {
		d := Redirect(PathLogin)
		d.Diagnostic = "active profile's organization has no slug"
		return d
	}
	return Redirect(StudentHomePath(slug))
}
