package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cart-service/controllers"
	"cart-service/database"
	"cart-service/logger"
	"cart-service/middleware"
	"cart-service/models"
	aws_pkg "cart-service/pkg/aws"
	"cart-service/repository"
	"cart-service/routes"
	"cart-service/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "cart-service"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- AWS setup (non-fatal: the service runs without AWS locally) ---
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	cloudWatchEnabled := awsErr == nil && os.Getenv("CLOUDWATCH_ENABLED") == "true"

	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cloudWatchEnabled {
		w, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, os.Getenv("CLOUDWATCH_LOG_GROUP"), serviceName, true)
		if err != nil {
			log.Printf("CloudWatch Logs init failed (non-fatal): %v", err)
		} else {
			cwWriter = w
		}
	}

	// Pass an untyped nil when shipping is off; a nil *CloudWatchLogsClient
	// inside an io.Writer is not nil.
	var appLogger *zap.Logger
	var err error
	if cwWriter != nil {
		appLogger, err = logger.New(getEnv("APP_ENV", "development"), cwWriter)
	} else {
		appLogger, err = logger.New(getEnv("APP_ENV", "development"), nil)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer appLogger.Sync()

	if awsErr != nil {
		appLogger.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	}

	cfg, err := LoadConfig(ctx, func(ctx context.Context) (aws_pkg.SecretGetter, error) {
		if awsErr != nil {
			return nil, awsErr
		}
		return aws_pkg.NewSecretsClient(awsCfg), nil
	})
	if err != nil {
		appLogger.Fatal("Config load failed", zap.Error(err))
	}

	// --- Storage ---
	db, err := database.ConnectPostgres(cfg.Postgres, appLogger, models.Migrate)
	if err != nil {
		appLogger.Fatal("DB connection failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL, appLogger)
	if err != nil {
		appLogger.Fatal("Redis setup failed", zap.Error(err))
	}

	var snsClient aws_pkg.SNSPublisher
	var metricsClient *aws_pkg.MetricsClient
	if awsErr == nil {
		snsClient = newSNSPublisher(awsCfg, cfg.CartSNSTopicARN)
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	}

	tokenService, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		appLogger.Fatal("Token service init failed", zap.Error(err))
	}

	if err := routes.RegisterValidators(); err != nil {
		appLogger.Fatal("Validator registration failed", zap.Error(err))
	}

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	rateLimiter := middleware.NewRateLimiter(ctx, rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitBurst, 5*time.Minute)
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.SecurityHeaders(),
		middleware.MetricsMiddleware(metricsClient, serviceName),
		middleware.RequestLogger(appLogger),
		rateLimiter.Middleware(),
		middleware.Timeout(30*time.Second),
	)

	// --- Dependency injection ---
	cartRepo := repository.NewGormCartRepository(db)
	cartItemRepo := repository.NewGormCartItemRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	catalogRepo := repository.NewCachedCatalogRepository(
		repository.NewGormCatalogRepository(db),
		redisClient,
		cfg.ProductCacheTTL,
		appLogger,
	)

	accountService := services.NewAccountService(
		repository.NewGormTransactor(db),
		userRepo,
		tokenService,
		metricsClient,
		appLogger,
		services.NewCartProvisioner(appLogger),
	)
	cartItemService := services.NewCartItemService(
		cartRepo,
		cartItemRepo,
		catalogRepo,
		snsClient,
		cfg.CartSNSTopicARN,
		metricsClient,
		appLogger,
	)
	catalogService := services.NewCatalogService(catalogRepo, appLogger)

	auth := middleware.AuthMiddleware(tokenService, cfg.TrustGatewayHeaders)
	routes.RegisterAccountRoutes(r, controllers.NewAccountController(accountService))
	routes.RegisterCartRoutes(r, auth, controllers.NewCartItemController(cartItemService))
	routes.RegisterCatalogRoutes(r, auth, controllers.NewCatalogController(catalogService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Cart Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	appLogger.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		appLogger.Error("Database close error", zap.Error(err))
	}

	appLogger.Info("Cart Service stopped gracefully")
}

// newSNSPublisher returns nil when no topic is configured so the service
// skips publishing instead of failing every call.
func newSNSPublisher(cfg sdkaws.Config, topicArn string) aws_pkg.SNSPublisher {
	if topicArn == "" {
		return nil
	}
	return aws_pkg.NewSNSClient(cfg)
}
