package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
)

// ErrEmptyTranscript evita agregar antes de que existan evaluaciones.
var ErrEmptyTranscript = errors.New("transcript has no entries")

// AggregateResult contiene los textos producidos por la etapa de agregacion.
type AggregateResult struct {
	WeakAreas          string
	Affirmations       string
	DraftPlan          string
	RedundantExercises []string
	FinalPlan          string
	Rewritten          bool
}

// Aggregator elige las cuatro areas mas debiles y genera el plan final.
// Ninguna de sus salidas pasa por la compuerta de validez numerica.
type Aggregator struct {
	llmClient llm.LLMClient
	detector  *RedundancyDetector
	rewriter  *PlanRewriter
	families  []domain.ExerciseFamily
	logger    *zap.Logger
}

func NewAggregator(
	llmClient llm.LLMClient,
	detector *RedundancyDetector,
	rewriter *PlanRewriter,
	families []domain.ExerciseFamily,
	logger *zap.Logger,
) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		llmClient: llmClient,
		detector:  detector,
		rewriter:  rewriter,
		families:  families,
		logger:    logger,
	}
}

// Aggregate ejecuta en orden: ranking, afirmaciones, borrador, deteccion y reescritura.
func (a *Aggregator) Aggregate(ctx context.Context, transcript *domain.Transcript) (AggregateResult, error) {
	if transcript.Len() == 0 {
		return AggregateResult{}, ErrEmptyTranscript
	}

	weak, err := a.llmClient.Generate(ctx, llm.Request{
		Agent:  llm.AgentVision,
		Prompt: buildRankingPrompt(transcript),
	})
	if err != nil {
		return AggregateResult{}, fmt.Errorf("rank weak areas: %w", err)
	}
	a.logger.Info("weak areas ranked")

	affirmations, err := a.llmClient.Generate(ctx, llm.Request{
		Agent:  llm.AgentWriter,
		Prompt: buildAffirmationPrompt(weak),
	})
	if err != nil {
		return AggregateResult{}, fmt.Errorf("generate affirmations: %w", err)
	}

	draft, err := a.llmClient.Generate(ctx, llm.Request{
		Agent:  llm.AgentWriter,
		Prompt: buildWorkoutPrompt(weak),
	})
	if err != nil {
		return AggregateResult{}, fmt.Errorf("generate workout: %w", err)
	}

	redundant, err := a.detector.Detect(ctx, draft, a.families)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("detect redundant exercises: %w", err)
	}

	final, rewritten, err := a.rewriter.Rewrite(ctx, draft, redundant)
	if err != nil {
		return AggregateResult{}, err
	}
	if !rewritten {
		a.logger.Info("final workout same as draft")
	}

	return AggregateResult{
		WeakAreas:          weak,
		Affirmations:       affirmations,
		DraftPlan:          draft,
		RedundantExercises: redundant,
		FinalPlan:          final,
		Rewritten:          rewritten,
	}, nil
}

func buildRankingPrompt(transcript *domain.Transcript) string {
	return "summarize the four categories listed below with the lowest numerical ratings." +
		"  Where there is a tie and multiple categories have a low numerical rating, exercise judgement based on the surrounding descriptions to determine which four areas need the most work." +
		"  For each of the four lowest-rated areas, include information relevant to creating a customized workout to address the lagging area.\n\n" +
		transcript.Text()
}

func buildAffirmationPrompt(weakAreas string) string {
	return "generate a set of positive affirmations and mental-practice visualizations that an athlete can repeat daily" +
		" to stay motivated and confident while working on the following lagging areas:\n\n" + weakAreas
}

func buildWorkoutPrompt(weakAreas string) string {
	return "generate a set of customized workouts for an athlete to address the following lagging areas:\n\n" + weakAreas
}
