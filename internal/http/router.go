package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/academyos/academyos/internal/config"
	"github.com/academyos/academyos/internal/http/features/academy"
	"github.com/academyos/academyos/internal/http/features/authn"
	"github.com/academyos/academyos/internal/http/features/courses"
	"github.com/academyos/academyos/internal/http/features/dashboard"
	"github.com/academyos/academyos/internal/http/features/students"
	"github.com/academyos/academyos/internal/http/features/twofactor"
	"github.com/academyos/academyos/internal/http/middleware"
	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/gate"
	"github.com/academyos/academyos/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger           *slog.Logger
	DB               *sql.DB
	PasswordService  *auth.PasswordService
	SessionService   *auth.SessionService
	TwoFactorService *auth.TwoFactorService
	Gate             *gate.Gate
	OrgsRepo         *repository.OrganizationsRepository
	ProfilesRepo     *repository.ProfilesRepository
	CoursesRepo      *repository.CoursesRepository
	StudentsRepo     *repository.StudentsRepository
	RemindersRepo    *repository.RemindersRepository
	CookieConfig     httputil.CookieConfig
	RateLimit        config.RateLimitConfig
}

// NewRouter creates the HTTP router. The request gate wraps every route, so
// routing policy is applied uniformly; handlers behind it read the verified
// identity and active profile off the request context.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cfg.Gate.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authLimiter := middleware.NoRateLimit()
	if cfg.RateLimit.Enabled {
		authLimiter = middleware.RateLimit(middleware.RateLimitConfig{
			Requests: cfg.RateLimit.AuthRequestsPerMinute,
			Window:   time.Duration(cfg.RateLimit.AuthWindowMinutes) * time.Minute,
			Logger:   cfg.Logger,
		})
	}

	// Authentication endpoints
	authnHandler := authn.NewHandler(
		cfg.Logger,
		cfg.DB,
		cfg.PasswordService,
		cfg.SessionService,
		cfg.TwoFactorService,
		cfg.OrgsRepo,
		cfg.ProfilesRepo,
		cfg.CookieConfig,
	)
	r.Group(func(r chi.Router) {
		r.Use(authLimiter)
		r.Post("/v1/auth/signup", authnHandler.Signup)
		r.Post("/v1/auth/login", authnHandler.Login)
		r.Post("/v1/auth/refresh", authnHandler.Refresh)
	})
	r.Post("/v1/auth/logout", authnHandler.Logout)

	// Academy picker and public academy pages
	academyHandler := academy.NewHandler(
		cfg.Logger,
		cfg.OrgsRepo,
		cfg.ProfilesRepo,
		cfg.CoursesRepo,
		cfg.CookieConfig,
	)
	r.Get("/select-academy", academyHandler.List)
	r.Post("/select-academy", academyHandler.Select)
	r.Get("/academy/{slug}/home", academyHandler.Home)
	r.Get("/academy/{slug}/courses", academyHandler.Courses)

	// Operator dashboard pages. The gate guarantees an authenticated,
	// non-student caller on these paths.
	dashboardHandler := dashboard.NewHandler(
		cfg.Logger,
		cfg.OrgsRepo,
		cfg.ProfilesRepo,
		cfg.CoursesRepo,
		cfg.StudentsRepo,
		cfg.RemindersRepo,
	)
	r.Get("/overview", dashboardHandler.Overview)
	r.Get("/settings", dashboardHandler.Settings)
	r.Get("/branding", dashboardHandler.Branding)
	r.Put("/branding", dashboardHandler.UpdateBranding)
	r.Get("/permissions", dashboardHandler.Permissions)
	r.Put("/permissions/{profileID}", dashboardHandler.ChangeRole)
	r.Get("/overview/reminders", dashboardHandler.Reminders)
	r.Post("/overview/reminders", dashboardHandler.CreateReminder)
	r.Delete("/overview/reminders/{reminderID}", dashboardHandler.DeleteReminder)

	coursesHandler := courses.NewHandler(cfg.Logger, cfg.CoursesRepo)
	r.Get("/courses", coursesHandler.List)
	r.Post("/courses", coursesHandler.Create)
	r.Put("/courses/{courseID}", coursesHandler.Update)
	r.Delete("/courses/{courseID}", coursesHandler.Archive)

	studentsHandler := students.NewHandler(cfg.Logger, cfg.StudentsRepo)
	r.Get("/students", studentsHandler.List)
	r.Post("/students", studentsHandler.Enroll)
	r.Delete("/students/{studentID}", studentsHandler.Remove)

	// Two-step verification management, under settings
	twoFactorHandler := twofactor.NewHandler(cfg.Logger, cfg.TwoFactorService)
	r.Post("/settings/2fa/setup", twoFactorHandler.Setup)
	r.Post("/settings/2fa/enable", twoFactorHandler.Enable)
	r.Post("/settings/2fa/disable", twoFactorHandler.Disable)

	return r
}
