// Package academy serves the academy picker and the tenant-scoped public
// academy pages.
package academy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/gate"
	"github.com/academyos/academyos/pkg/repository"
)

// Handler handles academy selection and public academy pages.
type Handler struct {
	logger       *slog.Logger
	orgs         *repository.OrganizationsRepository
	profiles     *repository.ProfilesRepository
	courses      *repository.CoursesRepository
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new academy handler.
func NewHandler(
	logger *slog.Logger,
	orgs *repository.OrganizationsRepository,
	profiles *repository.ProfilesRepository,
	courses *repository.CoursesRepository,
	cookieConfig httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:       logger,
		orgs:         orgs,
		profiles:     profiles,
		courses:      courses,
		cookieConfig: cookieConfig,
	}
}

type academyEntry struct {
	OrganizationID string `json:"organization_id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Active         bool   `json:"active"`
}

// List shows the caller's academies for the picker page.
// GET /select-academy
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	memberships, err := h.profiles.GetActiveProfilesWithOrganizations(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("failed to load academies", "error", err, "user_id", identity.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load academies")
		return
	}

	active, _ := gate.ActiveProfileFrom(r.Context())

	entries := make([]academyEntry, 0, len(memberships))
	for _, m := range memberships {
		entries = append(entries, academyEntry{
			OrganizationID: m.Organization.ID.String(),
			Slug:           m.Organization.Slug,
			Name:           m.Organization.Name,
			Role:           string(m.Profile.Role),
			Active:         active != nil && active.Profile.ID == m.Profile.ID,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"academies": entries})
}

type selectRequest struct {
	OrganizationID string `json:"organization_id"`
}

// Select records the caller's academy preference after validating that a
// live membership backs it.
// POST /select-academy
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization_id")
		return
	}

	profile, err := h.profiles.GetByUserAndOrganization(r.Context(), identity.UserID, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			httputil.Error(w, http.StatusForbidden, "not a member of this academy")
			return
		}
		h.logger.Error("membership lookup failed", "error", err, "user_id", identity.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to select academy")
		return
	}
	if !profile.IsActive() {
		httputil.Error(w, http.StatusForbidden, "membership is not active")
		return
	}

	httputil.SetActiveOrgCookie(w, orgID, h.cookieConfig)

	target := gate.PathOverview
	if profile.Role == domain.RoleStudent {
		org, err := h.orgs.GetByID(r.Context(), orgID)
		if err != nil {
			h.logger.Error("organization lookup failed", "error", err, "organization_id", orgID)
			httputil.Error(w, http.StatusInternalServerError, "failed to select academy")
			return
		}
		target = gate.StudentHomePath(org.Slug)
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"redirect": target})
}

// Home serves an academy's public home page payload: branding plus published
// course count.
// GET /academy/{slug}/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	org, ok := h.lookupBySlug(w, r)
	if !ok {
		return
	}

	published, err := h.courses.ListByOrganization(r.Context(), org.ID, true)
	if err != nil {
		h.logger.Error("failed to load courses", "error", err, "organization_id", org.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load academy")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"slug":              org.Slug,
		"name":              org.Name,
		"logo_url":          org.LogoURL,
		"accent_color":      org.AccentColor,
		"published_courses": len(published),
	})
}

// Courses serves an academy's public course catalog.
// GET /academy/{slug}/courses
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	org, ok := h.lookupBySlug(w, r)
	if !ok {
		return
	}

	published, err := h.courses.ListByOrganization(r.Context(), org.ID, true)
	if err != nil {
		h.logger.Error("failed to load courses", "error", err, "organization_id", org.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load courses")
		return
	}

	type courseEntry struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	entries := make([]courseEntry, 0, len(published))
	for _, c := range published {
		entries = append(entries, courseEntry{
			ID:          c.ID.String(),
			Title:       c.Title,
			Description: c.Description,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"courses": entries})
}

func (h *Handler) lookupBySlug(w http.ResponseWriter, r *http.Request) (*domain.Organization, bool) {
	slug := chi.URLParam(r, "slug")
	org, err := h.orgs.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			httputil.Error(w, http.StatusNotFound, "academy not found")
			return nil, false
		}
		h.logger.Error("organization lookup failed", "error", err, "slug", slug)
		httputil.Error(w, http.StatusInternalServerError, "failed to load academy")
		return nil, false
	}
	return org, true
}
