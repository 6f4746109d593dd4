package main

import (
	"time"

	"practice-service/internal/handler"
	"practice-service/internal/middleware"
	"practice-service/internal/service"
	"practice-service/pkg/config"
	"practice-service/pkg/database"
	"practice-service/pkg/jwtutil"
	"practice-service/pkg/logger"
	"practice-service/pkg/metrics"
	"practice-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
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
	log.Info("Starting practice service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize HTTP metrics
	httpMetrics := metrics.NewHTTPMetrics(cfg.ServiceName)

	// Initialize database and run migrations
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host), zap.String("db_name", cfg.DB.DBName))

	db := database.GetDB()
	clock := service.RealClock()

	// Services
	tenantSvc := service.NewTenantService(db, clock)
	userSvc := service.NewUserService(db, clock)
	divisionSvc := service.NewDivisionService(db, clock)
	departmentSvc := service.NewDepartmentService(db, clock)
	serviceAreaSvc := service.NewServiceAreaService(db, clock)
	teamSvc := service.NewTeamService(db, clock)
	jobTitleSvc := service.NewJobTitleService(db, clock)
	programSvc := service.NewProgramService(db, clock)
	accountSvc := service.NewAccountService(db, clock)
	contactSvc := service.NewContactService(db, clock)
	entitySvc := service.NewEntityService(db, clock)
	locationSvc := service.NewLocationService(db, clock)

	// Handlers
	authHandler := handler.NewAuthHandler(db, tenantSvc, userSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	userHandler := handler.NewUserHandler(userSvc)
	divisionHandler := handler.NewDivisionHandler(divisionSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	serviceAreaHandler := handler.NewServiceAreaHandler(serviceAreaSvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	jobTitleHandler := handler.NewJobTitleHandler(jobTitleSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	entityHandler := handler.NewEntityHandler(entitySvc)
	locationHandler := handler.NewLocationHandler(locationSvc)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(httpMetrics.Middleware())

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Log request details
			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Float64("duration_s", time.Since(start).Seconds()),
				zap.String("ip", c.RealIP()),
			)

			return err
		}
	})

	// Routes
	// Public routes that don't require authentication
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	// Auth routes
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// API routes that require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/auth/switch-tenant", authHandler.SwitchTenant)
	api.GET("/auth/me", authHandler.Me)

	// Tenant administration
	api.GET("/tenants", tenantHandler.List)
	api.POST("/tenants", tenantHandler.Create)
	api.GET("/tenants/:id", tenantHandler.Get)
	api.PUT("/tenants/:id", tenantHandler.Update)
	api.GET("/tenants/:id/activities", tenantHandler.Activities)

	// Tenant-scoped resources
	type crudHandler interface {
		List(echo.Context) error
		Create(echo.Context) error
		Get(echo.Context) error
		Update(echo.Context) error
		Activities(echo.Context) error
		Export(echo.Context) error
	}
	resources := map[string]crudHandler{
		"divisions":     divisionHandler,
		"departments":   departmentHandler,
		"service-areas": serviceAreaHandler,
		"teams":         teamHandler,
		"job-titles":    jobTitleHandler,
		"programs":      programHandler,
		"accounts":      accountHandler,
		"contacts":      contactHandler,
		"entities":      entityHandler,
		"locations":     locationHandler,
		"users":         userHandler,
	}
	for path, h := range resources {
		g := api.Group("/" + path)
		g.Use(middleware.RequireTenantContext)
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/export", h.Export)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.GET("/:id/activities", h.Activities)
	}

	// Status and role management endpoints
	users := api.Group("/users")
	users.Use(middleware.RequireTenantContext)
	users.PUT("/:id/status", userHandler.UpdateStatus)
	users.POST("/:id/roles", userHandler.AssignRoles)
	users.DELETE("/:id/roles", userHandler.UnassignRoles)

	programs := api.Group("/programs")
	programs.Use(middleware.RequireTenantContext)
	programs.PUT("/:id/status", programHandler.UpdateStatus)

	entities := api.Group("/entities")
	entities.Use(middleware.RequireTenantContext)
	entities.PUT("/:id/status", entityHandler.UpdateStatus)

	locations := api.Group("/locations")
	locations.Use(middleware.RequireTenantContext)
	locations.PUT("/:id/status", locationHandler.UpdateStatus)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
