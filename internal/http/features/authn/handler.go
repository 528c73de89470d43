package authn

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/domain"
	"github.com/academyos/academyos/pkg/repository"
)

// Handler handles authentication endpoints.
type Handler struct {
	logger          *slog.Logger
	db              *sql.DB
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
	twoFactor       *auth.TwoFactorService
	orgs            *repository.OrganizationsRepository
	profiles        *repository.ProfilesRepository
	cookieConfig    httputil.CookieConfig
}

// NewHandler creates a new authentication handler.
func NewHandler(
	logger *slog.Logger,
	db *sql.DB,
	passwordService *auth.PasswordService,
	sessionService *auth.SessionService,
	twoFactor *auth.TwoFactorService,
	orgs *repository.OrganizationsRepository,
	profiles *repository.ProfilesRepository,
	cookieConfig httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:          logger,
		db:              db,
		passwordService: passwordService,
		sessionService:  sessionService,
		twoFactor:       twoFactor,
		orgs:            orgs,
		profiles:        profiles,
		cookieConfig:    cookieConfig,
	}
}

// SignupRequest represents a signup request. AcademyName is optional; when
// set, a new academy is created with the user as owner.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	AcademyName string `json:"academy_name,omitempty"`
}

// LoginRequest represents a login request. Code is the TOTP code, required
// only when the account has two-step verification enabled.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

// Signup handles user registration.
// POST /v1/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.passwordService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("signup failed", "error", err)
		httputil.Error(w, http.StatusBadRequest, "registration failed")
		return
	}

	if req.AcademyName != "" {
		org, err := h.createAcademy(r, user.ID, req.AcademyName)
		if err != nil {
			h.logger.Error("academy creation failed", "error", err, "user_id", user.ID)
			httputil.Error(w, http.StatusInternalServerError, "failed to create academy")
			return
		}
		httputil.SetActiveOrgCookie(w, org.ID, h.cookieConfig)
	}

	tokens, err := h.sessionService.IssueSession(r.Context(), user.ID, auth.IssueSessionOpts{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("session issuance failed", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	httputil.SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken,
		h.sessionService.AccessTokenTTL(), h.sessionService.RefreshTokenTTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusCreated, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
}

// Login handles user login.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.passwordService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if errors.Is(err, domain.ErrAccountLocked) {
			httputil.Error(w, http.StatusForbidden, "account temporarily locked due to too many failed login attempts")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	if user.TwoFactorEnabled {
		if req.Code == "" {
			httputil.Error(w, http.StatusUnauthorized, "two-step verification code required")
			return
		}
		if err := h.twoFactor.Verify(r.Context(), user.ID, req.Code); err != nil {
			httputil.Error(w, http.StatusUnauthorized, "invalid two-step verification code")
			return
		}
	}

	tokens, err := h.sessionService.IssueSession(r.Context(), user.ID, auth.IssueSessionOpts{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("session issuance failed", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	httputil.SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken,
		h.sessionService.AccessTokenTTL(), h.sessionService.RefreshTokenTTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
}

// Refresh mints a new access token from the refresh token cookie.
// POST /v1/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := httputil.GetRefreshTokenFromCookie(r)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "refresh token not found")
		return
	}

	tokens, err := h.sessionService.RefreshSession(r.Context(), refreshToken)
	if err != nil {
		httputil.ClearAuthCookies(w, h.cookieConfig)
		httputil.Error(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	httputil.SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken,
		h.sessionService.AccessTokenTTL(), h.sessionService.RefreshTokenTTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// Logout revokes the current session and clears cookies.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := httputil.GetRefreshTokenFromCookie(r); ok {
		if err := h.sessionService.RevokeSession(r.Context(), refreshToken); err != nil &&
			!errors.Is(err, domain.ErrSessionNotFound) {
			h.logger.Warn("session revocation failed", "error", err)
		}
	}

	httputil.ClearAuthCookies(w, h.cookieConfig)
	httputil.ClearActiveOrgCookie(w, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// createAcademy creates an organization plus an owner profile for the user,
// in one transaction.
func (h *Handler) createAcademy(r *http.Request, userID uuid.UUID, name string) (*domain.Organization, error) {
	now := time.Now()
	org := &domain.Organization{
		ID:        uuid.New(),
		Slug:      generateAcademySlug(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	profile := &domain.Profile{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: org.ID,
		Role:           domain.RoleOwner,
		Status:         domain.ProfileStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := repository.Tx(r.Context(), h.db, func(tx *sql.Tx) error {
		if err := h.orgs.CreateTx(r.Context(), tx, org); err != nil {
			return err
		}
		return h.profiles.CreateTx(r.Context(), tx, profile)
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}
