package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"divisadero-api/internal/handler"
	"divisadero-api/internal/invite"
	"divisadero-api/internal/middleware"
	"divisadero-api/internal/permission"
	"divisadero-api/internal/store"
	"divisadero-api/pkg/authadmin"
	"divisadero-api/pkg/config"
	"divisadero-api/pkg/database"
	"divisadero-api/pkg/jwtutil"
	"divisadero-api/pkg/logger"
	"divisadero-api/pkg/mailer"
	"divisadero-api/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting Divisadero API...", zap.String("environment", cfg.Server.Env))

	// Open the restricted and elevated store handles
	db, err := database.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connections established")

	// Token decoder: verification is the default, the unverified variant
	// is opt-in for development only
	decoder, err := jwtutil.NewDecoder(&cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize token decoder", zap.Error(err))
	}
	if cfg.JWT.SkipVerify {
		log.Warn("Token signature verification is DISABLED")
	}

	// Outbound provider clients
	adminAPI := authadmin.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, log)
	mail := mailer.NewClient(&cfg.Email, log)
	if !mail.Enabled() {
		log.Warn("Email API key not configured, invite links will only be logged")
	}

	// Data access and domain services
	adminStore := store.New(db.Admin)
	readStore := store.New(db.Anon)
	resolver := permission.NewResolver(adminStore, cfg.Auth.StrictOrgMatch, log)
	invites := invite.NewService(resolver, adminAPI, mail, adminStore, cfg.Email.FrontendURL, log)

	// Initialize Prometheus metrics
	prometheus.InitMetrics()

	h := handler.New(db, adminStore, readStore, resolver, invites, adminAPI.Configured())

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/health/db", h.HealthDB)
	e.GET("/metrics", prometheus.Handler())
	e.GET("/profiles", h.ListProfiles)
	e.GET("/brands", h.ListBrands)
	e.GET("/brands/:slug", h.GetBrand)

	// Authenticated routes
	auth := middleware.Auth(decoder)
	e.GET("/org/me", h.OrgMe, auth)
	e.POST("/org/:org_slug/invite", h.Invite, auth)
	e.POST("/auth/accept", h.AcceptInvite, auth)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
