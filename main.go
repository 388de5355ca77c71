package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mawlid1431/Arts/cache"
	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/database"
	"github.com/mawlid1431/Arts/email"
	"github.com/mawlid1431/Arts/handlers"
	"github.com/mawlid1431/Arts/kafka"
	"github.com/mawlid1431/Arts/middleware"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load(logger)

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Initialize Redis cache
	redisClient, err := cache.InitRedis(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	// Initialize Kafka producer. Order events are best-effort, so a missing
	// broker degrades to log-only instead of refusing to start.
	producer, err := kafka.InitProducer(cfg.Kafka.Broker, logger)
	if err != nil {
		logger.Warn("Kafka unavailable, order events disabled", zap.Error(err))
		producer = nil
	}

	sender := email.NewSMTPSender(cfg, logger)

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing("nujuum-arts")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("nujuum-arts"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Product endpoints
	productHandler := handlers.NewProductHandler(db, redisClient, logger)
	router.GET("/api/products", productHandler.GetProducts)
	router.GET("/api/products/:id", productHandler.GetProduct)
	router.POST("/api/products", productHandler.CreateProduct)
	router.PUT("/api/products/:id", productHandler.UpdateProduct)
	router.DELETE("/api/products/:id", productHandler.DeleteProduct)

	// Order endpoints
	orderHandler := handlers.NewOrderHandler(db, producer, sender, cfg.Kafka.Topic, logger)
	router.GET("/api/orders", orderHandler.GetOrders)
	router.GET("/api/orders/:id", orderHandler.GetOrder)
	router.POST("/api/orders", orderHandler.CreateOrder)
	router.PATCH("/api/orders/:id", orderHandler.UpdateOrder)
	router.PUT("/api/orders/:id", orderHandler.UpdateOrder)

	// Contact endpoints
	contactHandler := handlers.NewContactHandler(db, sender, logger)
	router.POST("/api/contact", contactHandler.SubmitContact)
	router.GET("/api/contact", contactHandler.GetMessages)

	// Admin auth endpoint
	authHandler := handlers.NewAuthHandler(cfg, logger)
	router.POST("/api/admin/auth", authHandler.Login)

	// Dashboard endpoint with a background refresher
	dashboardHandler := handlers.NewDashboardHandler(db, orderHandler, logger)
	refresherCtx, stopRefresher := context.WithCancel(context.Background())
	dashboardHandler.StartRefresher(refresherCtx, cfg.DashboardRefresh)
	router.GET("/api/dashboard", dashboardHandler.GetDashboard)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Nujuum Arts API started", zap.String("port", cfg.Port))

	gracefulShutdown(srv, db, redisClient, producer, stopRefresher, shutdownTracing, logger)
}

// gracefulShutdown handles SIGINT/SIGTERM and shuts down all services gracefully
func gracefulShutdown(
	srv *http.Server,
	db *sql.DB,
	redisClient *redis.Client,
	producer sarama.SyncProducer,
	stopRefresher func(),
	shutdownTracing func(),
	logger *zap.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received. Exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopRefresher()

	// Stop HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server stopped gracefully")
	}

	// Close Kafka producer
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", zap.Error(err))
		} else {
			logger.Info("Kafka producer closed gracefully")
		}
	}

	// Close database
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	} else {
		logger.Info("Database connection closed gracefully")
	}

	// Close Redis cache
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis cache", zap.Error(err))
	} else {
		logger.Info("Redis cache closed gracefully")
	}

	// Shutdown tracing
	shutdownTracing()
	logger.Info("Nujuum Arts API exited gracefully")
}
