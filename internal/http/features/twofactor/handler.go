package twofactor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/gate"
)

// Handler handles two-step verification management. Routes live under the
// settings page, so the request gate has already authenticated the caller.
type Handler struct {
	logger  *slog.Logger
	service *auth.TwoFactorService
}

// NewHandler creates a new two-factor handler.
func NewHandler(logger *slog.Logger, service *auth.TwoFactorService) *Handler {
	return &Handler{logger: logger, service: service}
}

type enableRequest struct {
	Code string `json:"code"`
}

// Setup starts two-step verification setup.
// POST /settings/2fa/setup
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	url, err := h.service.Setup(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("two-step setup failed", "error", err, "user_id", identity.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to start two-step verification setup")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"otpauth_url": url})
}

// Enable confirms the pending secret and turns on two-step verification.
// POST /settings/2fa/enable
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	err := h.service.Enable(r.Context(), identity.UserID, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTwoFactorCode) {
			httputil.Error(w, http.StatusBadRequest, "invalid code")
			return
		}
		if errors.Is(err, domain.ErrTwoFactorNotPending) {
			httputil.Error(w, http.StatusConflict, "two-step verification setup has not been started")
			return
		}
		h.logger.Error("two-step enable failed", "error", err, "user_id", identity.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to enable two-step verification")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// Disable turns off two-step verification.
// POST /settings/2fa/disable
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFrom(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.service.Disable(r.Context(), identity.UserID); err != nil {
		h.logger.Error("two-step disable failed", "error", err, "user_id", identity.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to disable two-step verification")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}
