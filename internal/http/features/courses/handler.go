// Package courses serves the courses dashboard page and its form actions.
package courses

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

// Handler handles course CRUD.
type Handler struct {
	logger  *slog.Logger
	courses *repository.CoursesRepository
}

// NewHandler creates a new courses handler.
func NewHandler(logger *slog.Logger, courses *repository.CoursesRepository) *Handler {
	return &Handler{logger: logger, courses: courses}
}

func (h *Handler) activeOrg(w http.ResponseWriter, r *http.Request) (uuid.UUID, *repository.ProfileWithOrganization, bool) {
	profile, ok := gate.ActiveProfileFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusForbidden, "no active academy")
		return uuid.Nil, nil, false
	}
	return profile.Profile.OrganizationID, profile, true
}

func canWrite(role domain.Role) bool {
	return role == domain.RoleOwner || role == domain.RoleAdmin
}

type courseRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Published   bool    `json:"published"`
}

// List serves the courses page payload.
// GET /courses
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := h.activeOrg(w, r)
	if !ok {
		return
	}

	courses, err := h.courses.ListByOrganization(r.Context(), orgID, false)
	if err != nil {
		h.logger.Error("course listing failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load courses")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// Create adds a course. Owner or admin only.
// POST /courses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, profile, ok := h.activeOrg(w, r)
	if !ok {
		return
	}
	if !canWrite(profile.Profile.Role) {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now()
	course := &domain.Course{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		Published:      req.Published,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.courses.Create(r.Context(), course); err != nil {
		h.logger.Error("course creation failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create course")
		return
	}

	httputil.JSON(w, http.StatusCreated, course)
}

// Update edits a course. Owner or admin only.
// PUT /courses/{courseID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, profile, ok := h.activeOrg(w, r)
	if !ok {
		return
	}
	if !canWrite(profile.Profile.Role) {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	course := &domain.Course{
		ID:          courseID,
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
	}
	if err := h.courses.Update(r.Context(), orgID, course); err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			httputil.Error(w, http.StatusNotFound, "course not found")
			return
		}
		h.logger.Error("course update failed", "error", err, "course_id", courseID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update course")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Archive soft deletes a course. Owner or admin only.
// DELETE /courses/{courseID}
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	orgID, profile, ok := h.activeOrg(w, r)
	if !ok {
		return
	}
	if !canWrite(profile.Profile.Role) {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := h.courses.Archive(r.Context(), orgID, courseID); err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			httputil.Error(w, http.StatusNotFound, "course not found")
			return
		}
		h.logger.Error("course archival failed", "error", err, "course_id", courseID)
		httputil.Error(w, http.StatusInternalServerError, "failed to archive course")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
