package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/academyos/academyos/internal/config"
	httpserver "github.com/academyos/academyos/internal/http"
	"github.com/academyos/academyos/internal/httputil"
	"github.com/academyos/academyos/pkg/auth"
	"github.com/academyos/academyos/pkg/gate"
	"github.com/academyos/academyos/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	credsRepo := repository.NewCredentialsRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)
	orgsRepo := repository.NewOrganizationsRepository(db)
	profilesRepo := repository.NewProfilesRepository(db)
	coursesRepo := repository.NewCoursesRepository(db)
	studentsRepo := repository.NewStudentsRepository(db)
	remindersRepo := repository.NewRemindersRepository(db)
	twoFactorRepo := repository.NewTwoFactorRepository(db)

	// Initialize services
	passwordService := auth.NewPasswordService(db, usersRepo, credsRepo)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
	}, sessionsRepo, usersRepo)
	twoFactorService := auth.NewTwoFactorService(cfg.JWTIssuer, twoFactorRepo, usersRepo)

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure
	cookieConfig.Domain = cfg.CookieDomain

	// The request gate fronts every route: identity verification, active
	// profile resolution, routing policy, and presence recording.
	requestGate := gate.New(gate.Config{
		Sessions:        sessionService,
		Profiles:        profilesRepo,
		Logger:          logger,
		Cookies:         cookieConfig,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		PresenceTimeout: cfg.PresenceTimeout,
	})

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:           logger,
		DB:               db,
		PasswordService:  passwordService,
		SessionService:   sessionService,
		TwoFactorService: twoFactorService,
		Gate:             requestGate,
		OrgsRepo:         orgsRepo,
		ProfilesRepo:     profilesRepo,
		CoursesRepo:      coursesRepo,
		StudentsRepo:     studentsRepo,
		RemindersRepo:    remindersRepo,
		CookieConfig:     cookieConfig,
		RateLimit:        cfg.RateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Let in-flight presence writes finish before exiting.
	requestGate.Presence().Wait()

	logger.Info("server stopped")
}
