package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
)

// affirmativeMarkers se buscan como subcadenas; cualquier otra respuesta cuenta como "no".
var affirmativeMarkers = []string{"Yes", "yes", "affirmative", "Affirmative"}

// IsAffirmative interpreta una respuesta si/no del modelo.
func IsAffirmative(answer string) bool {
	for _, m := range affirmativeMarkers {
		if strings.Contains(answer, m) {
			return true
		}
	}
	return false
}

// RedundancyDetector pregunta al modelo si el plan ya incluye ejercicios de cada familia.
type RedundancyDetector struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewRedundancyDetector(llmClient llm.LLMClient, logger *zap.Logger) *RedundancyDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedundancyDetector{llmClient: llmClient, logger: logger}
}

// Detect consulta cada ejercicio de cada familia. Si algun miembro ya aparece en el
// plan, toda la familia se marca. Devuelve los nombres marcados sin repetidos, en el
// orden de las familias.
func (d *RedundancyDetector) Detect(ctx context.Context, plan string, families []domain.ExerciseFamily) ([]string, error) {
	var redundant []string
	seen := make(map[string]struct{})

	for _, family := range families {
		found := false
		for _, exercise := range family.Exercises {
			answer, err := d.llmClient.Generate(ctx, llm.Request{
				Agent:  llm.AgentVision,
				Prompt: buildExerciseQuestion(exercise, plan),
			})
			if err != nil {
				return nil, fmt.Errorf("check exercise %q: %w", exercise, err)
			}
			yes := IsAffirmative(answer)
			d.logger.Debug("exercise check", zap.String("family", family.Name), zap.String("exercise", exercise), zap.Bool("present", yes))
			found = found || yes
		}
		if !found {
			continue
		}
		d.logger.Info("exercise family already in plan", zap.String("family", family.Name))
		for _, exercise := range family.Exercises {
			if _, ok := seen[exercise]; ok {
				continue
			}
			seen[exercise] = struct{}{}
			redundant = append(redundant, exercise)
		}
	}
	return redundant, nil
}

func buildExerciseQuestion(exercise, plan string) string {
	return "Is the following exercise already in the workout below: " + exercise + "?  Please answer yes or no.\n\n" + plan
}

// PlanRewriter reescribe el plan reemplazando ejercicios que el atleta ya hace.
type PlanRewriter struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewPlanRewriter(llmClient llm.LLMClient, logger *zap.Logger) *PlanRewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanRewriter{llmClient: llmClient, logger: logger}
}

// Rewrite devuelve el plan intacto si no hay ejercicios redundantes; si los hay pide
// al agente redactor una version con progresiones mas avanzadas. El bool indica si se reescribio.
func (r *PlanRewriter) Rewrite(ctx context.Context, plan string, redundant []string) (string, bool, error) {
	if len(redundant) == 0 {
		return plan, false, nil
	}
	out, err := r.llmClient.Generate(ctx, llm.Request{
		Agent:  llm.AgentWriter,
		Prompt: buildRewritePrompt(plan, redundant),
	})
	if err != nil {
		return "", false, fmt.Errorf("rewrite plan: %w", err)
	}
	r.logger.Info("plan rewritten", zap.Strings("replaced", redundant))
	return out, true, nil
}

func buildRewritePrompt(plan string, redundant []string) string {
	return "The athlete is already doing the following exercises: " + strings.Join(redundant, ", ") +
		".  Rewrite the workout below so that it doesn't contain any of the aforementioned exercises." +
		"  When an exercise is removed, replace it with a more intense exercise in the same category that will challenge the athlete." +
		"  When an exercise is removed, try to replace it with a more advanced exercise in a similar progression." +
		"  For instance, if hanging leg raises are to be removed then some potential replacements might be ice-cream makers" +
		" or some other exercise starting a calisthenic progression to a front lever.  Replace exercises in the following workout:\n\n" + plan
}
