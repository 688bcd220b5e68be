package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del entrenador.
type Config struct {
	OllamaBaseURL        string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	VisionModel          string `env:"VISION_MODEL" envDefault:"llava"`
	WriterModel          string `env:"WRITER_MODEL" envDefault:"gpt-oss:20b"`
	LLMTimeoutSeconds    int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"300"`
	LLMTransportRetries  int    `env:"LLM_TRANSPORT_RETRIES" envDefault:"3"`
	LLMBackoffBaseMS     int    `env:"LLM_BACKOFF_BASE_MS" envDefault:"1000"`
	RatingMaxRetries     int    `env:"RATING_MAX_RETRIES" envDefault:"15"`
	MaxPromptBytes       int    `env:"MAX_PROMPT_BYTES" envDefault:"200000"`
	CategoryConcurrency  int    `env:"CATEGORY_CONCURRENCY" envDefault:"1"`
	CatalogPath          string `env:"CATALOG_PATH"`
	FrontImage           string `env:"FRONT_IMAGE" envDefault:"image_front.jpeg"`
	SideImage            string `env:"SIDE_IMAGE" envDefault:"image_side.jpeg"`
	BackImage            string `env:"BACK_IMAGE" envDefault:"image_back.jpeg"`
	MaxImageDimension    int    `env:"MAX_IMAGE_DIMENSION" envDefault:"1024"`
	AffirmationsPath     string `env:"AFFIRMATIONS_PATH" envDefault:"Affirmations.txt"`
	FinalWorkoutPath     string `env:"FINAL_WORKOUT_PATH" envDefault:"FinalWorkout.txt"`
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	RunRateLimit         int    `env:"RUN_RATE_LIMIT" envDefault:"2"`
	RunRateWindowMinutes int    `env:"RUN_RATE_WINDOW_MINUTES" envDefault:"60"`
	Production           bool   `env:"PRODUCTION" envDefault:"false"`
	OTelServiceName      string `env:"OTEL_SERVICE_NAME" envDefault:"physique-coach"`
	OTLPEndpoint         string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceStdout          bool   `env:"TRACE_STDOUT" envDefault:"false"`
	RatingCheckSamples   int    `env:"RATING_CHECK_SAMPLES" envDefault:"3"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) LLMBackoffBase() time.Duration {
	return time.Duration(c.LLMBackoffBaseMS) * time.Millisecond
}

func (c *Config) RunRateWindow() time.Duration {
	return time.Duration(c.RunRateWindowMinutes) * time.Minute
}
