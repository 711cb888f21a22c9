package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rentwheels-backend/config"
	"rentwheels-backend/database"
	"rentwheels-backend/routes"
	"rentwheels-backend/services"
	"rentwheels-backend/utils"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg := config.Get()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect()

	// Train the intent model. A training failure degrades the chat to
	// plain message relay instead of taking the server down.
	classifier := utils.NewIntentClassifier()
	if err := classifier.Train(utils.TrainingCorpus()); err != nil {
		log.Printf("WARNING: intent model training failed, booking suggestions disabled: %v", err)
	} else {
		log.Println("Intent model trained successfully")
	}

	// Build the real-time chat pipeline
	db := database.GetMongoDB()
	registry := services.NewSessionRegistry()
	analyzer := services.NewAnalyzerService(classifier, cfg.Chat.RecentWindow, cfg.Chat.ConfidenceThreshold)
	vehicleService := services.NewVehicleService(db)
	bookingService := services.NewBookingService(db)
	conversationService := services.NewConversationService(db)

	hub := services.NewChatHub(
		registry,
		analyzer,
		vehicleService,
		bookingService,
		conversationService,
		cfg.Chat.MinMessagesForAnalysis,
		cfg.Chat.LookupTimeout,
	)
	go hub.Run()

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, allowed := range cfg.Security.AllowedOrigins {
			if origin == allowed {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.Printf("WARNING: invalid trusted proxies: %v", err)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := database.HealthCheck(); err != nil {
			status = "degraded"
		}
		c.JSON(200, gin.H{
			"status":        status,
			"timestamp":     time.Now(),
			"model_trained": classifier.Trained(),
		})
	})

	// Setup all routes
	routes.SetupRoutes(router, hub, db)

	// Log available endpoints
	logAvailableEndpoints(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Port)
		log.Printf("Chat websocket URL: ws://localhost:%s/ws", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// logAvailableEndpoints logs all registered routes
func logAvailableEndpoints(router *gin.Engine) {
	var lines []string
	for _, route := range router.Routes() {
		lines = append(lines, route.Method+" "+route.Path)
	}
	log.Printf("Available endpoints:\n  %s", strings.Join(lines, "\n  "))
}
