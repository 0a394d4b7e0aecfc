package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/auth"
	"github.com/kevin-phan-25/pantrypal/internal/cache"
	"github.com/kevin-phan-25/pantrypal/internal/config"
	"github.com/kevin-phan-25/pantrypal/internal/events"
	"github.com/kevin-phan-25/pantrypal/internal/handlers"
	"github.com/kevin-phan-25/pantrypal/internal/products"
	"github.com/kevin-phan-25/pantrypal/internal/recipes"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/internal/vision"
	"github.com/kevin-phan-25/pantrypal/pkg/logger"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("🥫 Starting PantryPal API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	appLogger.Info("💾 Storage Configuration",
		zap.String("backend", cfg.StorageBackend),
		zap.String("sqlite_path", cfg.SQLitePath),
		zap.String("data_file", cfg.DataFilePath),
	)

	appLogger.Info("🔐 Auth Configuration",
		zap.Int("secret_length", len(cfg.JWTSecret)),
		zap.Int("scan_quota", cfg.ScanQuota),
	)

	if cfg.UseCache {
		appLogger.Info("⚡ Cache Configuration (Optional)",
			zap.String("redis_host", cfg.RedisHost),
			zap.String("redis_port", cfg.RedisPort),
			zap.Int("cache_ttl", cfg.CacheTTL),
		)
	} else {
		appLogger.Info("⚡ Cache Configuration",
			zap.Bool("enabled", false),
			zap.String("note", "Cache is disabled (USE_CACHE=false)"),
		)
	}

	if cfg.UseKafka {
		appLogger.Info("📡 Kafka Configuration (Optional - audit + notifications)",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_audit", cfg.KafkaTopicAudit),
			zap.String("topic_notifications", cfg.KafkaTopicNotification),
		)
	} else {
		appLogger.Info("📡 Kafka Configuration",
			zap.Bool("enabled", false),
			zap.String("note", "Kafka is disabled (USE_KAFKA=false)"),
		)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage backend
	appLogger.Info("🔧 Initializing store...")
	store, err := newStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer store.Close()
	appLogger.Info("✅ Store initialized successfully")

	// Initialize event publisher (audit + expiry notifications)
	var publisher events.Publisher
	if cfg.UseKafka {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicAudit, cfg.KafkaTopicNotification, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
			publisher = events.NewInMemoryPublisher(appLogger)
		} else {
			publisher = kafkaPublisher
		}
	} else {
		publisher = events.NewInMemoryPublisher(appLogger)
	}
	defer publisher.Close()

	// Initialize cache (optional)
	var cacheClient cache.Cache
	if cfg.UseCache {
		appLogger.Info("🔧 Initializing cache (Redis)...")
		cacheClient = cache.NewCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB, appLogger)
		defer cacheClient.Close()
	}
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second

	// Upstream clients
	resolver := products.NewResolver(cfg.ProductAPIURL, appLogger)
	scanner := vision.NewClient(cfg.VisionAPIURL, cfg.VisionAPIKey, appLogger)
	suggester := recipes.NewClient(cfg.RecipeAPIURL, cfg.RecipeAPIKey, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, appLogger)

	// Initialize handlers
	inventoryHandler := handlers.NewInventoryHandler(appLogger, store, resolver, publisher, cacheClient, cacheTTL)
	shoppingHandler := handlers.NewShoppingHandler(appLogger, store, publisher, cacheClient, cacheTTL)
	scanHandler := handlers.NewScanHandler(appLogger, store, scanner, cfg.ScanQuota)
	recipesHandler := handlers.NewRecipesHandler(appLogger, store, suggester)
	accountHandler := handlers.NewAccountHandler(appLogger, store, cfg.ScanQuota)
	expirationsHandler := handlers.NewExpirationsHandler(appLogger, store, publisher)

	// Initialize router
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.POST("/check-expirations", expirationsHandler.Check)

		// Protected endpoints (require a bearer credential)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, appLogger))
		{
			protected.POST("/inventory", inventoryHandler.AddItem)
			protected.GET("/inventory", inventoryHandler.ListInventory)
			protected.PUT("/item/:id", inventoryHandler.EditItem)
			protected.DELETE("/item/:id", inventoryHandler.DeleteItem)

			protected.GET("/shopping", shoppingHandler.List)
			protected.POST("/shopping", shoppingHandler.Add)
			protected.DELETE("/shopping/:key", shoppingHandler.Remove)
			protected.DELETE("/shopping", shoppingHandler.Clear)

			protected.POST("/scan", scanHandler.Scan)
			protected.GET("/recipes", recipesHandler.Suggest)
			protected.GET("/account", accountHandler.Get)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("🌐 Starting HTTP server", zap.String("address", ":"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// newStore picks the storage backend from configuration.
func newStore(cfg *config.Config, appLogger *zap.Logger) (repository.Store, error) {
	switch cfg.StorageBackend {
	case "file":
		return repository.NewFileStore(cfg.DataFilePath, appLogger)
	case "memory":
		appLogger.Warn("Using in-memory store, state is lost on restart")
		return repository.NewMemoryStore(), nil
	default:
		return repository.NewSQLiteStore(cfg.SQLitePath, appLogger)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "pantrypal-api",
	})
}
