package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
)

// ErrMissingPhoto indica que una categoria requiere una vista que no fue provista.
var ErrMissingPhoto = errors.New("missing photo for view")

// opinionSource es lo que el evaluador necesita del RatingService.
type opinionSource interface {
	Fuse(ctx context.Context, image []byte, prompt string) (string, error)
	Describe(ctx context.Context, image []byte, prompt string) (string, error)
}

// CategoryEvaluator convierte una definicion de categoria en una entrada del transcript.
type CategoryEvaluator struct {
	ratings     opinionSource
	llmClient   llm.LLMClient
	concurrency int
	logger      *zap.Logger
}

// NewCategoryEvaluator crea el evaluador. concurrency <= 1 evalua en serie.
func NewCategoryEvaluator(ratings opinionSource, llmClient llm.LLMClient, concurrency int, logger *zap.Logger) *CategoryEvaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryEvaluator{
		ratings:     ratings,
		llmClient:   llmClient,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Evaluate obtiene una opinion fusionada por cada vista de la categoria y, si hay
// mas de una, las integra con una llamada adicional. Solo toca las vistas declaradas.
func (e *CategoryEvaluator) Evaluate(ctx context.Context, cat domain.Category, photos domain.PhotoSet) (domain.TranscriptEntry, error) {
	ctx, span := otel.Tracer("physique-coach/service").Start(ctx, "category.evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", cat.ID), attribute.Int("category.views", len(cat.Views)))

	if len(cat.Views) == 0 {
		return domain.TranscriptEntry{}, fmt.Errorf("category %s has no views", cat.ID)
	}

	start := time.Now()
	perView := make([]string, 0, len(cat.Views))
	for _, vp := range cat.Views {
		image, ok := photos.Image(vp.View)
		if !ok {
			err := fmt.Errorf("category %s: %w %s", cat.ID, ErrMissingPhoto, vp.View)
			span.SetStatus(codes.Error, "missing photo")
			return domain.TranscriptEntry{}, err
		}

		var (
			text string
			err  error
		)
		if cat.Unrated {
			text, err = e.ratings.Describe(ctx, image, vp.Prompt)
		} else {
			text, err = e.ratings.Fuse(ctx, image, vp.Prompt)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "view opinion")
			return domain.TranscriptEntry{}, fmt.Errorf("category %s view %s: %w", cat.ID, vp.View, err)
		}
		e.logger.Debug("view rated", zap.String("category", cat.ID), zap.String("view", string(vp.View)), zap.String("rating", text))
		perView = append(perView, text)
	}

	summary := perView[0]
	if len(perView) > 1 {
		var err error
		summary, err = e.llmClient.Generate(ctx, llm.Request{
			Agent:  llm.AgentVision,
			Prompt: buildCategoryFusionPrompt(cat, perView),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "category fusion")
			return domain.TranscriptEntry{}, fmt.Errorf("category %s fusion: %w", cat.ID, err)
		}
	}

	e.logger.Info("category evaluated",
		zap.String("category", cat.ID),
		zap.Int("views", len(cat.Views)),
		zap.Duration("latency", time.Since(start)),
	)
	return domain.TranscriptEntry{CategoryID: cat.ID, Label: cat.Label, Summary: summary}, nil
}

// EvaluateAll evalua todas las categorias y arma el transcript en el orden configurado,
// independiente del orden en que terminen. Ante el primer error no devuelve transcript.
func (e *CategoryEvaluator) EvaluateAll(ctx context.Context, cats []domain.Category, photos domain.PhotoSet) (*domain.Transcript, error) {
	results := make([]domain.TranscriptEntry, len(cats))

	if e.concurrency == 1 {
		for i, cat := range cats {
			entry, err := e.Evaluate(ctx, cat, photos)
			if err != nil {
				return nil, err
			}
			results[i] = entry
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, cat := range cats {
			g.Go(func() error {
				entry, err := e.Evaluate(gctx, cat, photos)
				if err != nil {
					return err
				}
				results[i] = entry
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	transcript := domain.NewTranscript()
	for _, entry := range results {
		if !transcript.Append(entry) {
			return nil, fmt.Errorf("category %s evaluated twice", entry.CategoryID)
		}
	}
	return transcript, nil
}

func buildCategoryFusionPrompt(cat domain.Category, perView []string) string {
	var b strings.Builder
	b.WriteString(cat.FusionPrompt)
	for i, vp := range cat.Views {
		b.WriteString("\n\n")
		b.WriteString(vp.View.Label())
		b.WriteString(":\n\n")
		b.WriteString(perView[i])
	}
	return b.String()
}
