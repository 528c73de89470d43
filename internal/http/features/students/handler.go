// Package students serves the students dashboard page and roster actions.
package students

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/gate"
	"github.com/academyos/academyos/pkg/repository"
)

// Handler handles the student roster.
type Handler struct {
	logger   *slog.Logger
	students *repository.StudentsRepository
}

// NewHandler creates a new students handler.
func NewHandler(logger *slog.Logger, students *repository.StudentsRepository) *Handler {
	return &Handler{logger: logger, students: students}
}

func (h *Handler) activeOrg(w http.ResponseWriter, r *http.Request) (uuid.UUID, domain.Role, bool) {
	profile, ok := gate.ActiveProfileFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusForbidden, "no active academy")
		return uuid.Nil, "", false
	}
	return profile.Profile.OrganizationID, profile.Profile.Role, true
}

// List serves the students page payload.
// GET /students
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := h.activeOrg(w, r)
	if !ok {
		return
	}

	roster, err := h.students.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("student listing failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load students")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"students": roster})
}

type enrollRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Enroll adds a student to the roster. Owner or admin only.
// POST /students
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	orgID, role, ok := h.activeOrg(w, r)
	if !ok {
		return
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "email and name are required")
		return
	}

	now := time.Now()
	student := &domain.Student{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          req.Email,
		Name:           req.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.students.Create(r.Context(), student); err != nil {
		h.logger.Error("student enrollment failed", "error", err, "organization_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to enroll student")
		return
	}

	httputil.JSON(w, http.StatusCreated, student)
}

// Remove takes a student off the roster. Owner or admin only.
// DELETE /students/{studentID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	orgID, role, ok := h.activeOrg(w, r)
	if !ok {
		return
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid student id")
		return
	}

	if err := h.students.Remove(r.Context(), orgID, studentID); err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			httputil.Error(w, http.StatusNotFound, "student not found")
			return
		}
		h.logger.Error("student removal failed", "error", err, "student_id", studentID)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove student")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
