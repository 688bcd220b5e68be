package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"physique-coach/internal/config"
	"physique-coach/internal/llm"
	"physique-coach/internal/photos"
	"physique-coach/internal/report"
	"physique-coach/internal/service"
	"physique-coach/internal/telemetry"
)

func main() {
	os.Exit(run())
}

// run devuelve el codigo de salida para que los defers (flush de spans y logs) se ejecuten.
func run() (exitCode int) {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
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

	set, err := photos.NewLoader(cfg.FrontImage, cfg.SideImage, cfg.BackImage, cfg.MaxImageDimension).Load()
	if err != nil {
		logger.Fatal("load photos", zap.Error(err))
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

	logger.Info("starting run",
		zap.Int("categories", len(trainer.Categories())),
		zap.String("vision_model", cfg.VisionModel),
		zap.String("writer_model", cfg.WriterModel),
	)

	result, err := trainer.Run(ctx, set)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		exitCode = 1
		return
	}

	writer := report.Writer{AffirmationsPath: cfg.AffirmationsPath, FinalWorkoutPath: cfg.FinalWorkoutPath}
	if err := writer.Write(result); err != nil {
		logger.Error("write artifacts", zap.Error(err))
		exitCode = 1
		return
	}

	logger.Info("run complete",
		zap.String("run_id", result.RunID),
		zap.Strings("redundant_exercises", result.RedundantExercises),
		zap.Bool("rewritten", result.Rewritten),
		zap.String("affirmations", cfg.AffirmationsPath),
		zap.String("final_workout", cfg.FinalWorkoutPath),
	)
	return 0
}

func tracingOptions(cfg *config.Config) telemetry.Options {
	opts := telemetry.Options{ServiceName: cfg.OTelServiceName, OTLPEndpoint: cfg.OTLPEndpoint}
	if cfg.TraceStdout {
		opts.Stdout = os.Stderr
	}
	return opts
}
