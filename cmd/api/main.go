// @title Quiz Results API
// @version 1.0
// @description Scores quiz attempts and serves per-user, per-company and per-quiz statistics.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "quiz-results/cmd/api/docs"
	"quiz-results/internal/adapter"
	"quiz-results/internal/cache"
	"quiz-results/internal/config"
	"quiz-results/internal/database"
	"quiz-results/internal/domain"
	"quiz-results/internal/handler"
	"quiz-results/internal/logger"
	"quiz-results/internal/middleware"
	"quiz-results/internal/repository"
	"quiz-results/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	submitRole, err := domain.ParseRole(cfg.Scoring.SubmitRole)
	if err != nil {
		appLogger.Fatal("Invalid scoring.submit_role", zap.Error(err))
	}
	mergePolicy, err := domain.ParseResultMergePolicy(cfg.Scoring.MergePolicy)
	if err != nil {
		appLogger.Fatal("Invalid scoring.merge_policy", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN(), database.DefaultPoolConfig)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// The answer cache is best effort, so a missing Redis only disables it.
	var answerStore domain.Cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, answer cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		answerStore = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis")
	}

	// Initialize repositories
	catalog := repository.NewQuizCatalogRepository(db)
	results := repository.NewSQLXResultRepository(db)
	membership := repository.NewSQLXMembershipRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	authorizer := service.NewAuthorizer(membership, cfg.MembershipTimeout())
	answerCache := service.NewAnswerCacheService(answerStore, cfg.AnswerTTL(), cfg.CacheOperationTimeout())
	exporter := adapter.NewFileExporter(cfg.Export.Dir)

	authService, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	attemptService := service.NewAttemptService(catalog, results, authorizer, answerCache, txManager, service.AttemptConfig{
		SubmitRole:            submitRole,
		MergePolicy:           mergePolicy,
		StrictLength:          cfg.Scoring.StrictLength,
		CacheWriteConcurrency: cfg.Scoring.CacheWriteConcurrency,
	})
	aggregationService := service.NewAggregationService(results, catalog, authorizer, answerCache, exporter)
	appLogger.Info("Services initialized",
		zap.String("submitRole", string(submitRole)),
		zap.String("mergePolicy", string(mergePolicy)),
		zap.String("exportDir", cfg.Export.Dir),
	)

	// Initialize handlers
	attemptHandler := handler.NewAttemptHandler(attemptService)
	resultHandler := handler.NewResultHandler(aggregationService)
	var cachePinger handler.CachePinger
	if answerStore != nil {
		cachePinger = answerStore
	}
	healthHandler := handler.NewHealthHandler(db, cachePinger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/healthz", healthHandler.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), middleware.Protected(authService), attemptHandler, resultHandler)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
