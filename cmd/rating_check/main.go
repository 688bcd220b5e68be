package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"physique-coach/internal/config"
	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
	"physique-coach/internal/photos"
	"physique-coach/internal/service"
	"physique-coach/internal/telemetry"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// rating_check mide con que frecuencia el modelo de vision entrega una
// calificacion valida al primer intento, por categoria y vista.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	samples := cfg.RatingCheckSamples
	if samples <= 0 {
		log.Fatalf("RATING_CHECK_SAMPLES must be positive, got %d", samples)
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{ServiceName: cfg.OTelServiceName + "-rating-check", OTLPEndpoint: cfg.OTLPEndpoint})
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	set, err := photos.NewLoader(cfg.FrontImage, cfg.SideImage, cfg.BackImage, cfg.MaxImageDimension).Load()
	if err != nil {
		log.Fatalf("load photos: %v", err)
	}

	llmClient := llm.NewOllamaClient(llm.ClientConfig{
		BaseURL:        cfg.OllamaBaseURL,
		Models:         llm.ModelSet{Vision: cfg.VisionModel, Writer: cfg.WriterModel},
		Timeout:        cfg.LLMTimeout(),
		Retries:        cfg.LLMTransportRetries,
		BackoffBase:    cfg.LLMBackoffBase(),
		MaxPromptBytes: cfg.MaxPromptBytes,
	}, zap.NewNop())
	ratingSvc := service.NewRatingService(llmClient, cfg.RatingMaxRetries, zap.NewNop())

	var results []probeResult
	for _, cat := range catalog.ActiveCategories() {
		if cat.Unrated {
			continue
		}
		for _, vp := range cat.Views {
			res, err := probe(ctx, ratingSvc, set, cat, vp, samples)
			if err != nil {
				log.Fatalf("probe %s/%s: %v", cat.ID, vp.View, err)
			}
			color := colorGreen
			if res.Valid < res.Samples {
				color = colorRed
			}
			fmt.Printf("%s[%s/%s]%s %s%d/%d valid%s\n", colorCyan, cat.ID, vp.View, colorReset, color, res.Valid, res.Samples, colorReset)
			results = append(results, res)
		}
	}

	fmt.Println("==== Resumen ====")
	fmt.Println(summarize(results))
}

type probeResult struct {
	CategoryID string
	View       domain.View
	Samples    int
	Valid      int
}

// probe pide samples opiniones crudas (sin reintentos) y cuenta las validas.
func probe(ctx context.Context, ratings *service.RatingService, set domain.PhotoSet, cat domain.Category, vp domain.ViewPrompt, samples int) (probeResult, error) {
	res := probeResult{CategoryID: cat.ID, View: vp.View, Samples: samples}
	image, ok := set.Image(vp.View)
	if !ok {
		return res, fmt.Errorf("%w %s", service.ErrMissingPhoto, vp.View)
	}
	for i := 0; i < samples; i++ {
		text, err := ratings.Describe(ctx, image, vp.Prompt+service.RatingPromptSuffix)
		if err != nil {
			return res, err
		}
		if service.IsValidRating(text) {
			res.Valid++
		}
	}
	return res, nil
}

func summarize(results []probeResult) string {
	var total, valid int
	worst := ""
	worstRate := 2.0
	for _, r := range results {
		total += r.Samples
		valid += r.Valid
		if r.Samples == 0 {
			continue
		}
		rate := float64(r.Valid) / float64(r.Samples)
		if rate < worstRate {
			worstRate = rate
			worst = fmt.Sprintf("%s/%s", r.CategoryID, r.View)
		}
	}
	if total == 0 {
		return "sin muestras"
	}
	return fmt.Sprintf("Validas al primer intento: %d/%d (%.0f%%) | Peor: %s (%.0f%%)",
		valid, total, 100*float64(valid)/float64(total), worst, 100*worstRate)
}
