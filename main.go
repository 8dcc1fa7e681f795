package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sari-store/sari-backend/controllers"
	"github.com/sari-store/sari-backend/logger"
	"github.com/sari-store/sari-backend/middleware"
	awspkg "github.com/sari-store/sari-backend/pkg/aws"
	ddbpkg "github.com/sari-store/sari-backend/pkg/dynamodb"
	"github.com/sari-store/sari-backend/repository"
	"github.com/sari-store/sari-backend/routes"
	"github.com/sari-store/sari-backend/services"
)

const serviceName = "checkout-service"

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	// CloudWatch Logs tee is optional; the logger always writes to stdout.
	cwLogs, cwErr := awspkg.NewCloudWatchLogsClient(context.Background(), serviceName)

	var log *zap.Logger
	if cwErr == nil && cwLogs.IsEnabled() {
		log, err = logger.NewWithWriter(cfg.Env, cwLogs)
	} else {
		log, err = logger.New(cfg.Env)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	if cwErr != nil {
		log.Warn("CloudWatch logs client init failed (non-fatal)", zap.Error(cwErr))
	}

	// --- AWS / DynamoDB setup ---
	awsCfg, err := awspkg.LoadConfig(context.Background())
	if err != nil {
		log.Fatal("Failed to load AWS config", zap.Error(err))
	}
	ddbClient := ddbpkg.NewClientFromConfig(awsCfg)

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// --- Service wiring ---
	cartRepo := repository.NewDynamoCartRepository(ddbClient, cfg.CartTable)
	invRepo := repository.NewDynamoInventoryRepository(ddbClient, cfg.InventoryTable)
	orderRepo := repository.NewDynamoOrderRepository(ddbClient, cfg.OrdersTable)
	executor := repository.NewDynamoTransactionExecutor(ddbClient, cfg.InventoryTable, cfg.OrdersTable)

	checkoutService := services.NewCheckoutService(cartRepo, invRepo, orderRepo, executor, cfg.Fulfillment, log).
		WithMetrics(metricsClient)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		checkoutService.WithIdempotency(repository.NewRedisIdempotencyStore(redisClient, cfg.IdempotencyTTL))
		log.Info("Checkout idempotency guard enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	if cfg.OrderTopicARN != "" {
		checkoutService.WithNotifications(awspkg.NewSNSClient(awsCfg), cfg.OrderTopicARN)
		log.Info("Order event notifications enabled", zap.String("topic_arn", cfg.OrderTopicARN))
	}

	checkoutController := controllers.NewCheckoutController(checkoutService)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(metricsClient, serviceName))

	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, checkoutController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Info("Checkout Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Checkout Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Checkout Service stopped gracefully")
}
