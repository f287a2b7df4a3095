// main.go - Podcast Episode Catalog Server
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"podcastbe/internal/config"
	"podcastbe/internal/database"
	"podcastbe/internal/handlers"
	"podcastbe/internal/importer"
	"podcastbe/internal/services"
	"podcastbe/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Environment)

	// Initialize database connection
	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize asset storage
	var store storage.Store
	var localStore *storage.LocalStore
	switch cfg.StorageDriver {
	case "r2":
		store, err = storage.NewR2Store(cfg.R2Config)
		if err != nil {
			log.Fatal("Failed to initialize R2 storage:", err)
		}
	default:
		localStore, err = storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
		store = localStore
	}

	// Initialize services
	episodeService := services.NewEpisodeService(db)
	uploadService := services.NewUploadService(store)

	// Initialize handlers
	episodeHandler := handlers.NewEpisodeHandler(episodeService, uploadService)

	var resolver handlers.AssetResolver
	if localStore != nil {
		resolver = localStore
	}
	feedHandler := handlers.NewFeedHandler(episodeService, resolver, cfg.Feed, cfg.PublicBaseURL)

	// Initialize rate limiter
	rateLimiter := NewRateLimiter()

	// Setup router
	router := setupRouter(cfg, rateLimiter)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		dbStats := database.Stats()

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": database.Health() == nil,
			"app":      "podcast-episode-catalog",
			"storage":  cfg.StorageDriver,
			"database_stats": gin.H{
				"open_connections": dbStats.OpenConnections,
				"in_use":           dbStats.InUse,
				"idle":             dbStats.Idle,
			},
		})
	})

	// Setup routes
	setupRoutes(router, episodeHandler, feedHandler)

	// Serve uploaded assets byte-for-byte from local storage
	if localStore != nil {
		router.Static("/uploads", localStore.Root())
	}

	// Start the drop-directory importer when configured
	if cfg.ImportDir != "" {
		if err := os.MkdirAll(cfg.ImportDir, 0o755); err != nil {
			log.Fatal("Failed to create import directory:", err)
		}
		imp, err := importer.New(cfg.ImportDir, episodeService, uploadService, 500*time.Millisecond)
		if err != nil {
			log.Fatal("Failed to start importer:", err)
		}
		defer imp.Close()
		log.Printf("Importer watching %s", cfg.ImportDir)
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Podcast catalog server starting on port %s", cfg.Port)
		log.Printf("Environment: %s", cfg.Environment)
		log.Printf("Database: %s", cfg.DBPath)
		log.Printf("Storage driver: %s", cfg.StorageDriver)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func setupRouter(cfg *config.Config, rateLimiter *RateLimiter) *gin.Engine {
	router := gin.Default()

	// GZIP compression, skipping already-compressed audio payloads
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{
		".mp3", ".m4a", ".aac", ".ogg", ".wav", ".flac"})))

	// Rate limiting
	router.Use(createRateLimitMiddleware(rateLimiter))

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			"Range", "Accept-Ranges",
			"Cache-Control", "If-None-Match", "If-Modified-Since",
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Range", "Accept-Ranges",
			"Cache-Control", "Last-Modified", "ETag",
		},
		MaxAge: 12 * 3600,
	}))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Next()
	})

	return router
}

func setupRoutes(
	router *gin.Engine,
	episodeHandler *handlers.EpisodeHandler,
	feedHandler *handlers.FeedHandler,
) {
	api := router.Group("/api")

	// ===============================
	// EPISODE CATALOG
	// ===============================
	api.POST("/episodes", episodeHandler.CreateEpisode)
	api.GET("/episodes", episodeHandler.GetEpisodes)
	api.GET("/episodes/stats", episodeHandler.GetStats)
	api.GET("/episodes/:id", episodeHandler.GetEpisode)
	api.POST("/episodes/:id/play", episodeHandler.IncrementPlayCount)

	// ===============================
	// RSS FEED
	// ===============================
	router.GET("/feed.xml", feedHandler.GetFeed)
}

// Rate limiter shared across handlers
type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.RWMutex
}

type Visitor struct {
	requests int
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
	}
	go rl.cleanupRoutine()
	return rl
}

func (rl *RateLimiter) Allow(ip string, limit int, window time.Duration) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	visitor, exists := rl.visitors[ip]
	now := time.Now()

	if !exists || now.Sub(visitor.lastSeen) > window {
		rl.visitors[ip] = &Visitor{
			requests: 1,
			lastSeen: now,
		}
		return true
	}

	if visitor.requests >= limit {
		return false
	}

	visitor.requests++
	visitor.lastSeen = now
	return true
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, visitor := range rl.visitors {
		if visitor.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

func createRateLimitMiddleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		path := c.Request.URL.Path

		var limit int
		window := time.Minute

		if strings.HasSuffix(path, "/play") {
			limit = 300 // play ticks are cheap and frequent
		} else if strings.HasPrefix(path, "/uploads/") {
			limit = 600
		} else {
			limit = 120
		}

		if !rateLimiter.Allow(ip, limit, window) {
			c.Header("Retry-After", "60")
			c.JSON(429, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
