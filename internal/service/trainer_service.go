package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"physique-coach/internal/domain"
)

// TrainerService ejecuta una corrida completa: todas las categorias y luego la agregacion.
type TrainerService struct {
	evaluator  *CategoryEvaluator
	aggregator *Aggregator
	categories []domain.Category
	logger     *zap.Logger
}

func NewTrainerService(
	evaluator *CategoryEvaluator,
	aggregator *Aggregator,
	catalog domain.Catalog,
	logger *zap.Logger,
) *TrainerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainerService{
		evaluator:  evaluator,
		aggregator: aggregator,
		categories: catalog.ActiveCategories(),
		logger:     logger,
	}
}

// Categories devuelve la tabla activa en orden de corrida.
func (s *TrainerService) Categories() []domain.Category {
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Run devuelve un reporte completo o un error; nunca un reporte parcial.
func (s *TrainerService) Run(ctx context.Context, photos domain.PhotoSet) (domain.Report, error) {
	runID := uuid.NewString()
	started := time.Now().UTC()
	log := s.logger.With(zap.String("run_id", runID))
	log.Info("run started", zap.Int("categories", len(s.categories)))

	transcript, err := s.evaluator.EvaluateAll(ctx, s.categories, photos)
	if err != nil {
		log.Error("category evaluation failed", zap.Error(err))
		return domain.Report{}, fmt.Errorf("evaluate categories: %w", err)
	}
	if transcript.Len() != len(s.categories) {
		return domain.Report{}, fmt.Errorf("transcript has %d entries, expected %d", transcript.Len(), len(s.categories))
	}

	result, err := s.aggregator.Aggregate(ctx, transcript)
	if err != nil {
		log.Error("aggregation failed", zap.Error(err))
		return domain.Report{}, fmt.Errorf("aggregate: %w", err)
	}

	report := domain.Report{
		RunID:              runID,
		Transcript:         transcript.Entries(),
		WeakAreas:          result.WeakAreas,
		Affirmations:       result.Affirmations,
		DraftPlan:          result.DraftPlan,
		RedundantExercises: result.RedundantExercises,
		FinalPlan:          result.FinalPlan,
		Rewritten:          result.Rewritten,
		StartedAt:          started,
		FinishedAt:         time.Now().UTC(),
	}
	log.Info("run finished",
		zap.Bool("rewritten", report.Rewritten),
		zap.Duration("latency", report.FinishedAt.Sub(started)),
	)
	return report, nil
}
