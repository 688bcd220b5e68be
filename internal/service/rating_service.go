package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"physique-coach/internal/llm"
)

// DefaultRatingMaxRetries es el tope de reintentos por contenido invalido (16 intentos en total).
const DefaultRatingMaxRetries = 15

// RatingPromptSuffix fuerza al modelo a devolver siempre un numero.
const RatingPromptSuffix = "  Where there is insufficient information or the task is impossible, always make a best guess number from the information provided.  Please always produce a number."

// refusalPhrases son subcadenas (sensibles a mayusculas) que invalidan una calificacion.
var refusalPhrases = []string{"inappropriate", "not appropriate", "not to judge"}

// IsValidRating indica si la respuesta no contiene rechazos y tiene al menos un digito.
func IsValidRating(text string) bool {
	for _, phrase := range refusalPhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}

// RatingService obtiene calificaciones numericas del agente de vision.
type RatingService struct {
	llmClient  llm.LLMClient
	maxRetries int
	logger     *zap.Logger
}

func NewRatingService(llmClient llm.LLMClient, maxRetries int, logger *zap.Logger) *RatingService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		llmClient:  llmClient,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Acquire envia el pedido y lo reenvia identico mientras la respuesta sea invalida,
// hasta maxRetries veces. Agotados los reintentos devuelve la ultima respuesta sin error.
// Solo los errores de transporte se propagan.
func (s *RatingService) Acquire(ctx context.Context, image []byte, prompt string) (string, error) {
	req := llm.Request{Agent: llm.AgentVision, Prompt: prompt, Image: image}

	var text string
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		out, err := s.llmClient.Generate(ctx, req)
		if err != nil {
			return "", fmt.Errorf("rating attempt %d: %w", attempt+1, err)
		}
		text = out
		if IsValidRating(text) {
			return text, nil
		}
		s.logger.Debug("rating rejected", zap.Int("attempt", attempt+1), zap.String("response", text))
	}

	s.logger.Warn("rating retries exhausted, keeping last response", zap.Int("attempts", s.maxRetries+1))
	return text, nil
}

// Fuse pide tres calificaciones independientes con el mismo prompt y las integra
// en una sola con una llamada de texto. Siempre son 3 adquisiciones + 1 fusion.
func (s *RatingService) Fuse(ctx context.Context, image []byte, basePrompt string) (string, error) {
	prompt := basePrompt + RatingPromptSuffix

	opinions := make([]string, 0, 3)
	for _, label := range []string{"A", "B", "C"} {
		text, err := s.Acquire(ctx, image, prompt)
		if err != nil {
			return "", fmt.Errorf("opinion %s: %w", label, err)
		}
		opinions = append(opinions, text)
	}

	fused, err := s.llmClient.Generate(ctx, llm.Request{
		Agent:  llm.AgentVision,
		Prompt: buildOpinionFusionPrompt(opinions),
	})
	if err != nil {
		return "", fmt.Errorf("fuse opinions: %w", err)
	}
	return fused, nil
}

// Describe pide una unica opinion sin compuerta numerica.
func (s *RatingService) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	text, err := s.llmClient.Generate(ctx, llm.Request{Agent: llm.AgentVision, Prompt: prompt, Image: image})
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}
	return text, nil
}

func buildOpinionFusionPrompt(opinions []string) string {
	var b strings.Builder
	b.WriteString("integrate these descriptions to generate an overall number for the person.")
	for i, op := range opinions {
		b.WriteString("\n\nDescription ")
		b.WriteByte(byte('A' + i))
		b.WriteString(":\n\n")
		b.WriteString(op)
	}
	return b.String()
}
