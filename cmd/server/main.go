package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bridge/internal/config"
	"bridge/internal/handler"
	"bridge/internal/repository"
	"bridge/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Haraj Poe Bridge")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize the optional turn-log repository
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.DSN != "" {
		repo, err = repository.NewPostgresRepository(
			cfg.PostgreSQL.DSN,
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		log.Println("✅ Connected to PostgreSQL, turn logging enabled")
	} else {
		log.Println("⚠️  DATABASE_URL not set - turn logging disabled")
	}

	// Initialize services
	retryPolicy := service.RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelay) * time.Millisecond,
		MaxDelay:   time.Duration(cfg.Retry.MaxDelay) * time.Millisecond,
	}
	harajClient := service.NewHarajClient(&cfg.Haraj, retryPolicy)
	bridge := service.NewBridge(
		service.NewMemoryStore(),
		service.NewExtractor(),
		service.NewDialogueController(),
		harajClient,
		repo,
		service.BridgeOptions{
			Mode:         cfg.Dialogue.Mode,
			Page:         cfg.Search.Page,
			Limit:        cfg.Search.Limit,
			DisplayLimit: cfg.Search.DisplayLimit,
		},
	)

	log.Println("✅ Services initialized")
	log.Printf("   - Haraj endpoint: %s", cfg.Haraj.GraphQLURL)
	log.Printf("   - Dialogue mode: %s", cfg.Dialogue.Mode)

	// Initialize handlers
	poeHandler := handler.NewPoeHandler(bridge)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "haraj-poe-bridge",
			"version": Version,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Webhook endpoint
	router.POST("/poe", poeHandler.HandleTurn)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
