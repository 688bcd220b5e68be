package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	// ErrAgentUnavailable indica que el servidor de modelos no respondio con exito.
	ErrAgentUnavailable = errors.New("llm agent unavailable")
	// ErrPromptTooLarge se devuelve antes de cualquier I/O si el prompt excede el limite.
	ErrPromptTooLarge = errors.New("llm prompt exceeds size limit")
)

// LLMClient define la interfaz para pedir una opinion a un modelo.
type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request es un pedido efimero al servidor de modelos. Image es opcional.
type Request struct {
	Agent  Agent
	Prompt string
	Image  []byte
}

// ClientConfig agrupa los parametros de transporte del cliente Ollama.
type ClientConfig struct {
	BaseURL        string
	Models         ModelSet
	Timeout        time.Duration
	Retries        int
	BackoffBase    time.Duration
	MaxPromptBytes int
}

// OllamaClient implementa LLMClient contra el endpoint /api/generate de Ollama.
type OllamaClient struct {
	baseURL        string
	models         ModelSet
	client         *http.Client
	retries        int
	backoffBase    time.Duration
	maxPromptBytes int
	logger         *zap.Logger
}

// NewOllamaClient construye un cliente HTTP apuntando al servidor local de modelos.
func NewOllamaClient(cfg ClientConfig, logger *zap.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		models:         cfg.Models,
		client:         &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		retries:        cfg.Retries,
		backoffBase:    cfg.BackoffBase,
		maxPromptBytes: cfg.MaxPromptBytes,
		logger:         logger,
	}
}

func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := otel.Tracer("physique-coach/llm").Start(ctx, "ollama.generate")
	defer span.End()

	model, err := c.models.Resolve(req.Agent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve model")
		return "", err
	}
	span.SetAttributes(
		attribute.String("llm.agent", string(req.Agent)),
		attribute.String("llm.model", model),
		attribute.Int("llm.prompt_bytes", len(req.Prompt)),
		attribute.Bool("llm.has_image", len(req.Image) > 0),
	)

	if c.maxPromptBytes > 0 && len(req.Prompt) > c.maxPromptBytes {
		err := fmt.Errorf("%w: %d bytes (max %d)", ErrPromptTooLarge, len(req.Prompt), c.maxPromptBytes)
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt too large")
		return "", err
	}

	body := generateRequest{
		Model:  model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if len(req.Image) > 0 {
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Image)}
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var (
		text    string
		attempt int
	)
	op := func() error {
		attempt++
		out, err := c.post(ctx, bodyBytes)
		if err != nil {
			c.logger.Warn("llm request failed",
				zap.Error(err),
				zap.String("model", model),
				zap.Int("attempt", attempt),
			)
			return err
		}
		text = out
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.retries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		span.SetAttributes(attribute.Int("llm.attempts", attempt))
		span.RecordError(err)
		// Cancelacion del llamador: no es una caida del agente.
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "canceled")
			return "", ctxErr
		}
		span.SetStatus(codes.Error, "agent unavailable")
		return "", fmt.Errorf("%w: model=%s attempts=%d: %w", ErrAgentUnavailable, model, attempt, err)
	}
	span.SetAttributes(attribute.Int("llm.attempts", attempt))
	return text, nil
}

func (c *OllamaClient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoffBase
	b.MaxInterval = 30 * c.backoffBase
	b.MaxElapsedTime = 0
	return b
}

// post realiza un intento HTTP. Los errores no reintentables se marcan como permanentes.
func (c *OllamaClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("llm error body", zap.Int("status", resp.StatusCode), zap.String("body", string(respBody)))
		err := fmt.Errorf("llm http error: status=%d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", backoff.Permanent(fmt.Errorf("unmarshal response: %w", err))
	}
	if gr.Error != "" {
		return "", backoff.Permanent(fmt.Errorf("llm api error: %s", gr.Error))
	}
	return gr.Response, nil
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}
