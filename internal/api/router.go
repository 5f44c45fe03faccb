package api

import (
	"github.com/fuelsight/tank-telemetry/internal/api/handlers"
	"github.com/fuelsight/tank-telemetry/internal/api/middleware"
	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/fuelsight/tank-telemetry/internal/export"
	"github.com/fuelsight/tank-telemetry/internal/importer"
	"github.com/fuelsight/tank-telemetry/internal/mail"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.CorrelationMiddleware())
	r.Use(middleware.StructuredLogging())

	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "tank-telemetry",
		})
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	siteRepo := repository.NewSiteRepository(pool)
	tankRepo := repository.NewTankRepository(pool)
	readingRepo := repository.NewReadingRepository(pool)
	telemetryRepo := repository.NewTelemetryRepository(pool)

	// Initialize services
	mailer := mail.New(cfg.SMTP)
	importStore := repository.NewImportStore(customerRepo, siteRepo, tankRepo)
	imp := importer.New(importStore, cfg.Import.BatchSize)
	exp := export.New(readingRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg)
	userHandler := handlers.NewUserHandler(userRepo)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	siteHandler := handlers.NewSiteHandler(siteRepo)
	settingsHandler := handlers.NewSettingsHandler(&cfg.Export)
	readingHandler := handlers.NewReadingHandler(readingRepo, tankRepo, mailer, settingsHandler)
	importExportHandler := handlers.NewImportExportHandler(imp, exp, readingRepo, mailer, settingsHandler, cfg)
	telemetryHandler := handlers.NewTelemetryHandler(telemetryRepo)
	statsHandler := handlers.NewStatsHandler(userRepo, customerRepo, siteRepo, tankRepo, readingRepo)

	// Login (no auth required)
	r.POST("/api/v1/auth/login", authHandler.HandleLogin)

	// API v1 routes (authenticated)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		// Customers: staff only
		v1.GET("/customers",
			middleware.RequireRole(models.RoleAdmin, models.RoleDriver),
			customerHandler.HandleList,
		)

		// Sites: customers see only their own
		v1.GET("/sites", siteHandler.HandleList)
		v1.GET("/sites/:id", siteHandler.HandleGet)

		// Readings
		v1.POST("/readings",
			middleware.RequireRole(models.RoleAdmin, models.RoleCustomer),
			readingHandler.HandleSubmit,
		)
		v1.GET("/readings",
			middleware.RequireRole(models.RoleAdmin, models.RoleDriver),
			readingHandler.HandleList,
		)
		v1.GET("/readings/latest", readingHandler.HandleLatest)

		// Spreadsheet import and readings export
		v1.POST("/import",
			middleware.RequireRole(models.RoleAdmin),
			importExportHandler.HandleImport,
		)
		v1.POST("/export",
			middleware.RequireRole(models.RoleAdmin, models.RoleDriver),
			importExportHandler.HandleExport,
		)
		v1.GET("/export",
			middleware.RequireRole(models.RoleAdmin, models.RoleDriver),
			importExportHandler.HandlePendingCount,
		)

		// User management: admin only
		users := v1.Group("/users", middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", userHandler.HandleList)
			users.GET("/:id", userHandler.HandleGet)
			users.POST("", userHandler.HandleCreate)
			users.PUT("/:id", userHandler.HandleUpdate)
			users.DELETE("/:id", userHandler.HandleDelete)
		}

		// Telemetry: staff only
		v1.GET("/telemetry",
			middleware.RequireRole(models.RoleAdmin, models.RoleDriver),
			telemetryHandler.HandleList,
		)
		v1.POST("/telemetry/sync",
			middleware.RequireRole(models.RoleAdmin),
			telemetryHandler.HandleSync,
		)

		// Settings and dashboard stats: admin only
		v1.GET("/settings",
			middleware.RequireRole(models.RoleAdmin),
			settingsHandler.HandleGet,
		)
		v1.POST("/settings",
			middleware.RequireRole(models.RoleAdmin),
			settingsHandler.HandleUpdate,
		)
		v1.GET("/stats",
			middleware.RequireRole(models.RoleAdmin),
			statsHandler.HandleGet,
		)
	}

	return r
}
