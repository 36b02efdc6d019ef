package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"peopleops/internal/config"
	"peopleops/internal/database"
	"peopleops/internal/handlers"
	"peopleops/internal/logger"
	"peopleops/internal/middleware"
	"peopleops/internal/services"
	"peopleops/internal/validator"

	_ "peopleops/internal/docs" // Import swagger docs
)

// @title           PeopleOps API
// @version         1.0
// @description     PeopleOps manages monthly employee goal plans through a manager and HR approval workflow, including weighted goal items, edit re-approval, and scoring.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	profileService := services.NewProfileService(db)
	goalPlanService := services.NewGoalPlanService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(profileService)
	goalPlanHandler := handlers.NewGoalPlanHandler(goalPlanService, auditService)
	reviewHandler := handlers.NewReviewHandler(goalPlanService)
	syncHandler := handlers.NewSyncHandler(profileService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Directory sync pushed by the upstream HR system, guarded by API key
	internal := v1.Group("/internal")
	internal.Use(middleware.SyncAuthMiddleware(appConfig.DirectorySyncKey))
	internal.POST("/directory/sync", syncHandler.SyncDirectory)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Employee profile
	protected.GET("/profile", authHandler.GetProfile)

	// Goal plan routes
	plans := protected.Group("/goal-plans")
	plans.POST("", goalPlanHandler.CreatePlan)
	plans.GET("", goalPlanHandler.GetMyPlans)
	plans.GET("/month/:month", goalPlanHandler.GetPlanForMonth)
	plans.GET("/:id", goalPlanHandler.GetPlan)
	plans.PUT("/:id", goalPlanHandler.UpdatePlan)
	plans.DELETE("/:id", goalPlanHandler.DeletePlan)
	plans.POST("/:id/submit", goalPlanHandler.SubmitPlan)
	plans.POST("/:id/approve", goalPlanHandler.ApprovePlan)
	plans.POST("/:id/reject", goalPlanHandler.RejectPlan)
	plans.POST("/:id/request-edit", goalPlanHandler.RequestEdit)
	plans.POST("/:id/actuals", goalPlanHandler.SubmitActuals)

	// Review inbox routes
	reviews := protected.Group("/reviews")
	reviews.GET("/direct-reports", reviewHandler.GetDirectReports)
	reviews.GET("/hr", reviewHandler.GetHRQueue)

	log.Infof("Starting PeopleOps backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
