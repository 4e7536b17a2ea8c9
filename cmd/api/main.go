package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MappingProcimec/mapping-erp/api/swagger" // swagger docs
	"github.com/MappingProcimec/mapping-erp/internal/config"
	"github.com/MappingProcimec/mapping-erp/internal/database"
	"github.com/MappingProcimec/mapping-erp/internal/handler"
	"github.com/MappingProcimec/mapping-erp/internal/repository"
	"github.com/MappingProcimec/mapping-erp/internal/service"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
	"github.com/MappingProcimec/mapping-erp/pkg/logging"
)

// @title           Purchase Approval API
// @version         1.0
// @description     Dynamic approval workflow engine for purchase requests.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	})
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	if err := database.SeedReferenceData(db, logger); err != nil {
		logger.Fatal("failed to seed reference data", zap.Error(err))
	}

	policy, err := workflow.NewPolicy(cfg.Approval.AreaThreshold, cfg.Approval.ExecThreshold)
	if err != nil {
		logger.Fatal("invalid approval thresholds", zap.Error(err))
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)

	workflowService := service.NewWorkflowService(requestRepo, eventRepo, referenceRepo, txManager, policy, logger)
	userService := service.NewUserService(userRepo, cfg.Auth.JWTSecret, logger)
	referenceService := service.NewReferenceService(referenceRepo)

	if cfg.Bootstrap.AdminPassword != "" {
		if err := userService.EnsureAdmin(context.Background(),
			cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
	}

	// Initialize Handlers
	requestHandler := handler.NewRequestHandler(workflowService)
	userHandler := handler.NewUserHandler(userService)
	referenceHandler := handler.NewReferenceHandler(referenceService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	requestHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	referenceHandler.RegisterRoutes(router.Group(""))

	logger.Info("server listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
