package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"physique-coach/internal/config"
	apihttp "physique-coach/internal/http"
	"physique-coach/internal/llm"
	"physique-coach/internal/service"
	"physique-coach/internal/telemetry"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := telemetry.NewLogger(cfg.Production)
	defer logger.Sync()

	shutdownTracing, err := telemetry.Setup(ctx, tracingOptions(cfg))
	if err != nil {
		logger.Fatal("setup tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("shutdown tracing", zap.Error(err))
		}
	}()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	llmClient := llm.NewOllamaClient(llm.ClientConfig{
		BaseURL:        cfg.OllamaBaseURL,
		Models:         llm.ModelSet{Vision: cfg.VisionModel, Writer: cfg.WriterModel},
		Timeout:        cfg.LLMTimeout(),
		Retries:        cfg.LLMTransportRetries,
		BackoffBase:    cfg.LLMBackoffBase(),
		MaxPromptBytes: cfg.MaxPromptBytes,
	}, logger)
	ratingSvc := service.NewRatingService(llmClient, cfg.RatingMaxRetries, logger)
	evaluator := service.NewCategoryEvaluator(ratingSvc, llmClient, cfg.CategoryConcurrency, logger)
	detector := service.NewRedundancyDetector(llmClient, logger)
	rewriter := service.NewPlanRewriter(llmClient, logger)
	aggregator := service.NewAggregator(llmClient, detector, rewriter, catalog.Families, logger)
	trainer := service.NewTrainerService(evaluator, aggregator, catalog, logger)

	var runLimiter service.RunRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			runLimiter = service.NewRedisRunRateLimiter(redisClient, cfg.RunRateWindow(), cfg.RunRateLimit)
		}
		cancel()
	}

	runHandler := apihttp.NewRunHandler(logger, trainer, runLimiter, cfg.MaxImageDimension)
	router := apihttp.NewRouter(logger, runHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, "physique-coach-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func tracingOptions(cfg *config.Config) telemetry.Options {
	opts := telemetry.Options{ServiceName: cfg.OTelServiceName, OTLPEndpoint: cfg.OTLPEndpoint}
	if cfg.TraceStdout {
		opts.Stdout = os.Stderr
	}
	return opts
}
