// Package dashboard serves the operator-dashboard pages: overview, settings,
// branding, permissions, and the reminders widget. The request gate has
// already guaranteed an authenticated caller with a non-student active
// profile on these routes.
package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/gate"
	"github.com/academyos/academyos/pkg/repository"
)

// Handler handles dashboard pages and their form actions.
type Handler struct {
	logger    *slog.Logger
	orgs      *repository.OrganizationsRepository
	profiles  *repository.ProfilesRepository
	courses   *repository.CoursesRepository
	students  *repository.StudentsRepository
	reminders *repository.RemindersRepository
}

// NewHandler creates a new dashboard handler.
func NewHandler(
	logger *slog.Logger,
	orgs *repository.OrganizationsRepository,
	profiles *repository.ProfilesRepository,
	courses *repository.CoursesRepository,
	students *repository.StudentsRepository,
	reminders *repository.RemindersRepository,
) *Handler {
	return &Handler{
		logger:    logger,
		orgs:      orgs,
		profiles:  profiles,
		courses:   courses,
		students:  students,
		reminders: reminders,
	}
}

// activeProfile pulls the gate's resolution off the context. The gate only
// lets resolved operators onto these routes, so a miss is a wiring bug.
func activeProfile(w http.ResponseWriter, r *http.Request) (*repository.ProfileWithOrganization, bool) {
	profile, ok := gate.ActiveProfileFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusForbidden, "no active academy")
		return nil, false
	}
	return profile, true
}

func requireRole(w http.ResponseWriter, profile *repository.ProfileWithOrganization, roles ...domain.Role) bool {
	for _, role := range roles {
		if profile.Profile.Role == role {
			return true
		}
	}
	httputil.Error(w, http.StatusForbidden, "insufficient role")
	return false
}

// Overview serves the overview page payload.
// GET /overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}
	orgID := profile.Profile.OrganizationID

	courseCount, err := h.courses.CountByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("course count failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load overview")
		return
	}
	studentCount, err := h.students.CountByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("student count failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load overview")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"academy":  profile.Organization.Name,
		"slug":     profile.Organization.Slug,
		"role":     profile.Profile.Role,
		"courses":  courseCount,
		"students": studentCount,
	})
}

// Settings serves the settings page payload.
// GET /settings
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"organization_id": profile.Organization.ID,
		"slug":            profile.Organization.Slug,
		"name":            profile.Organization.Name,
		"role":            profile.Profile.Role,
	})
}

// Branding serves the branding page payload.
// GET /branding
func (h *Handler) Branding(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"name":         profile.Organization.Name,
		"logo_url":     profile.Organization.LogoURL,
		"accent_color": profile.Organization.AccentColor,
	})
}

type brandingRequest struct {
	Name        string  `json:"name"`
	LogoURL     *string `json:"logo_url"`
	AccentColor *string `json:"accent_color"`
}

// UpdateBranding updates the academy's branding. Owner or admin only.
// PUT /branding
func (h *Handler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}
	if !requireRole(w, profile, domain.RoleOwner, domain.RoleAdmin) {
		return
	}

	var req brandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	orgID := profile.Profile.OrganizationID
	if err := h.orgs.UpdateBranding(r.Context(), orgID, req.Name, req.LogoURL, req.AccentColor); err != nil {
		h.logger.Error("branding update failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update branding")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Permissions serves the permissions page: all profiles in the academy.
// GET /permissions
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	members, err := h.profiles.ListByOrganization(r.Context(), profile.Profile.OrganizationID)
	if err != nil {
		h.logger.Error("member listing failed", "error", err, "organization_id", profile.Profile.OrganizationID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load permissions")
		return
	}

	type memberEntry struct {
		ProfileID  string     `json:"profile_id"`
		UserID     string     `json:"user_id"`
		Role       string     `json:"role"`
		Status     string     `json:"status"`
		LastSeenAt *time.Time `json:"last_seen_at"`
	}
	entries := make([]memberEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, memberEntry{
			ProfileID:  m.ID.String(),
			UserID:     m.UserID.String(),
			Role:       string(m.Role),
			Status:     string(m.Status),
			LastSeenAt: m.LastSeenAt,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"members": entries})
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

// ChangeRole changes a member's role. Owner only.
// PUT /permissions/{profileID}
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}
	if !requireRole(w, profile, domain.RoleOwner) {
		return
	}

	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	var req roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	if err := h.profiles.UpdateRole(r.Context(), profileID, role); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("role change failed", "error", err, "profile_id", profileID)
		httputil.Error(w, http.StatusInternalServerError, "failed to change role")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Reminders serves the overview page's reminder widget.
// GET /overview/reminders
func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	reminders, err := h.reminders.ListByOrganization(r.Context(), profile.Profile.OrganizationID)
	if err != nil {
		h.logger.Error("reminder listing failed", "error", err, "organization_id", profile.Profile.OrganizationID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load reminders")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

type reminderRequest struct {
	Message  string    `json:"message"`
	RemindAt time.Time `json:"remind_at"`
}

// CreateReminder adds a reminder.
// POST /overview/reminders
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		httputil.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.RemindAt.IsZero() {
		httputil.Error(w, http.StatusBadRequest, "remind_at is required")
		return
	}

	reminder := &domain.Reminder{
		ID:             uuid.New(),
		OrganizationID: profile.Profile.OrganizationID,
		CreatedBy:      profile.Profile.UserID,
		Message:        req.Message,
		RemindAt:       req.RemindAt,
		CreatedAt:      time.Now(),
	}
	if err := h.reminders.Create(r.Context(), reminder); err != nil {
		h.logger.Error("reminder creation failed", "error", err, "organization_id", reminder.OrganizationID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	httputil.JSON(w, http.StatusCreated, reminder)
}

// DeleteReminder removes a reminder.
// DELETE /overview/reminders/{reminderID}
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	profile, ok := activeProfile(w, r)
	if !ok {
		return
	}

	reminderID, err := uuid.Parse(chi.URLParam(r, "reminderID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	err = h.reminders.Delete(r.Context(), profile.Profile.OrganizationID, reminderID)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			httputil.Error(w, http.StatusNotFound, "reminder not found")
			return
		}
		h.logger.Error("reminder deletion failed", "error", err, "reminder_id", reminderID)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
