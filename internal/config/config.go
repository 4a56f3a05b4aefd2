package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	RetrievalBackendIndex = "index"
	RetrievalBackendLocal = "local"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Static bearer token for the HTTP API. Empty leaves the API open.
	APIToken string `envconfig:"API_TOKEN"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `envconfig:"OPENAI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
	GenerationModel     string `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`

	RetrievalBackend    string `envconfig:"RETRIEVAL_BACKEND" default:"index"`
	RetrievalTopK       int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`
	StoreQueryEmbedding bool   `envconfig:"STORE_QUERY_EMBEDDING" default:"false"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"meeting-assistant"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	JiraDomain   string `envconfig:"JIRA_DOMAIN"`
	JiraEmail    string `envconfig:"JIRA_EMAIL"`
	JiraAPIToken string `envconfig:"JIRA_API_TOKEN"`

	FirefliesWebhookSecret string `envconfig:"FIREFLIES_WEBHOOK_SECRET"`

	NATSURL   string `envconfig:"NATS_URL"`
	NATSToken string `envconfig:"NATS_TOKEN"`

	BackfillInterval time.Duration `envconfig:"BACKFILL_INTERVAL" default:"30s"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Release     string `envconfig:"RELEASE"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("MEETING", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.RetrievalBackend {
	case RetrievalBackendIndex, RetrievalBackendLocal:
	default:
		return fmt.Errorf("invalid MEETING_RETRIEVAL_BACKEND %q: want %q or %q",
			c.RetrievalBackend, RetrievalBackendIndex, RetrievalBackendLocal)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("MEETING_EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.RetrievalTopK < 0 {
		return fmt.Errorf("MEETING_RETRIEVAL_TOP_K must not be negative, got %d", c.RetrievalTopK)
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasJira() bool {
	return c.JiraDomain != "" && c.JiraEmail != "" && c.JiraAPIToken != ""
}

func (c *Config) HasNATS() bool {
	return c.NATSURL != ""
}

// SlogLevel maps LOG_LEVEL to a slog level. Debug forces debug output.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
