// Package gate is the request gate: for every incoming request it verifies
// the caller's identity, resolves which academy profile is active, applies
// routing policy, and stamps presence, before any page is allowed to render.
// The policy itself is a pure function (policy.go); I/O happens only in the
// identity verifier, the profile resolver, and the presence recorder.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
)

// Resolver selects the active profile for an identity.
// *ProfileResolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, userID, preferredOrg uuid.UUID) (*Resolution, error)
}

// Config wires the gate's collaborators.
type Config struct {
	Sessions SessionVerifier
	Profiles ProfileStore
	Logger   *slog.Logger
	Cookies  httputil.CookieConfig

	// Cookie lifetimes for refreshed sessions.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// PresenceTimeout bounds detached presence writes (default 3s).
	PresenceTimeout time.Duration
}

// Gate composes the identity verifier, profile resolver, routing policy, and
// presence recorder into one middleware applied before page handlers.
type Gate struct {
	verifier *IdentityVerifier
	resolver Resolver
	presence *PresenceRecorder
	logger   *slog.Logger
	cookies  httputil.CookieConfig

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates a request gate.
func New(cfg Config) *Gate {
	return &Gate{
		verifier:   NewIdentityVerifier(cfg.Sessions),
		resolver:   NewProfileResolver(cfg.Profiles),
		presence:   NewPresenceRecorder(cfg.Profiles, cfg.Logger, cfg.PresenceTimeout),
		logger:     cfg.Logger,
		cookies:    cfg.Cookies,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// Presence exposes the recorder so the server can drain in-flight writes on
// shutdown.
func (g *Gate) Presence() *PresenceRecorder {
	return g.presence
}

// Middleware runs the gate in front of next. Every request yields a defined
// decision: allow (request passes with identity and active profile on the
// context) or redirect. Collaborator failures fail closed on non-public
// paths.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		identity, refreshed := g.verifier.Verify(r)
		if refreshed != nil {
			// Carry the refreshed session out with whatever response the
			// request ends up producing.
			httputil.SetAuthCookies(w, refreshed.AccessToken, refreshed.RefreshToken,
				g.accessTTL, g.refreshTTL, g.cookies)
		}

		var res *Resolution
		if identity != nil {
			preferredOrg, _ := httputil.GetActiveOrgFromCookie(r)

			var err error
			res, err = g.resolver.Resolve(r.Context(), identity.UserID, preferredOrg)
			if err != nil {
				g.logger.Error("profile resolution failed",
					"error", err,
					"user_id", identity.UserID,
					"path", path,
				)
				if !IsPublicPath(path) {
					g.redirect(w, r, PathLogin)
					return
				}
				res = nil
			}
		}

		decision := Decide(path, policyInput(identity, res))
		if decision.Diagnostic != "" {
			g.logger.Error("routing policy degraded",
				"diagnostic", decision.Diagnostic,
				"path", path,
				"user_id", userIDOrNil(identity),
			)
		}

		if decision.Kind == DecisionRedirect {
			g.redirect(w, r, decision.Target)
			return
		}

		ctx := r.Context()
		if identity != nil {
			ctx = withIdentity(ctx, identity)
		}
		if res != nil {
			ctx = withResolution(ctx, res)
			if res.Profile != nil {
				g.presence.Record(res.Profile)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func policyInput(identity *Identity, res *Resolution) PolicyInput {
	in := PolicyInput{Authenticated: identity != nil}
	if res == nil {
		return in
	}
	in.HasMultiple = res.HasMultiple
	in.PreferenceApplied = res.PreferenceApplied
	if res.Profile != nil {
		in.HasProfile = true
		in.Role = res.Profile.Profile.Role
		in.OrgSlug = res.Profile.Organization.Slug
	}
	return in
}

func userIDOrNil(identity *Identity) uuid.UUID {
	if identity == nil {
		return uuid.Nil
	}
	return identity.UserID
}
