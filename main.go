package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/config"
	"github.com/kendall-kelly/aga-grading-api/controllers"
	"github.com/kendall-kelly/aga-grading-api/logger"
	"github.com/kendall-kelly/aga-grading-api/metrics"
	"github.com/kendall-kelly/aga-grading-api/middleware"
	"github.com/kendall-kelly/aga-grading-api/models"
	"github.com/kendall-kelly/aga-grading-api/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	// Basic logging
	log.Println("Starting AGA Grading API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	slog.SetDefault(appLogger)

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	if err := initServices(cfg, db, appLogger, appMetrics); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, appMetrics)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initServices builds the service graph and registers the process-wide instances
func initServices(cfg *config.Config, db *gorm.DB, appLogger *slog.Logger, m *metrics.Metrics) error {
	var store services.ArtifactStore
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 artifact storage: %w", err)
		}
		s3Store := services.NewS3ArtifactStore(s3Service, cfg.PublicBaseURL)
		services.SetArtifactLinker(s3Store)
		store = s3Store
		log.Printf("Storing artifacts in S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		services.SetArtifactLinker(nil)
		store = services.NewLocalArtifactStore(cfg.ArtifactDir, cfg.PublicBaseURL)
		log.Printf("Storing artifacts in %s", cfg.ArtifactDir)
	}

	images := services.InitImageService(m)
	orders := services.InitOrderStore(db)
	population := services.InitPopulationService(db)
	services.InitRegistryService(db, orders)
	services.InitIssuanceService(services.IssuanceDeps{
		Images:       images,
		Certificates: services.NewCertificateService(cfg.CertSecret),
		Orders:       orders,
		Population:   population,
		Renderer:     services.NewCertificateArtifactRenderer(store, cfg.RenderTimeout, appLogger, m),
		BaseURL:      cfg.PublicBaseURL,
		Logger:       appLogger,
		Metrics:      m,
	})
	return nil
}

// setupRouter registers every route on a new gin engine
func setupRouter(cfg *config.Config, m *metrics.Metrics) (*gin.Engine, error) {
	issuerAuth, err := middleware.IssuerAuth(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestMetrics(m), cors.New(corsConfig(cfg)))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		v1.POST("/grade", controllers.GradeImage)

		// Issuance requires an issuer token when Auth0 is configured
		v1.POST("/orders", append(issuerAuth, controllers.CreateOrder)...)
		v1.GET("/orders/recent", controllers.GetRecentOrders)

		v1.GET("/lookup", controllers.LookupCertificate)
		v1.GET("/certificates/:code/:token", controllers.VerifyCertificate)
		v1.GET("/population", controllers.GetPopulation)
		v1.POST("/registry", controllers.CreateRegistryEntry)
		v1.GET("/registry", controllers.ListRegistry)
		v1.GET("/stats", controllers.GetStats)
	}

	// Short verification links printed in QR codes
	router.GET("/c/:code/:token", controllers.VerifyCertificate)

	// Local files, or redirects to presigned S3 URLs
	router.GET("/artifacts/:kind/:filename", controllers.GetArtifact)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "AGA Grading API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"dialect": db.Dialector.Name(),
		"tables":  tables,
	})
}
