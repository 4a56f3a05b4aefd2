package admin

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberyard/meetingassist/internal/config"
	"github.com/timberyard/meetingassist/internal/database"
	"github.com/timberyard/meetingassist/internal/openai"
	"github.com/timberyard/meetingassist/internal/repository"
	"github.com/timberyard/meetingassist/internal/retrieval"
	"github.com/timberyard/meetingassist/internal/service"
	"github.com/timberyard/meetingassist/internal/storage"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

// app holds the dependencies shared by the daemon commands. Optional
// integrations are nil when their configuration is missing.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool

	meetingTypes *repository.MeetingTypeRepository
	personas     *repository.PersonaRepository
	transcripts  *repository.TranscriptRepository
	knowledge    *repository.KnowledgeRepository
	txRunner     *repository.TxRunner

	s3 *storage.S3Client
	ai *openai.Client

	shutdownTelemetry func()
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// loadApp reads configuration, migrates unless told not to, and connects
// to every configured backend.
func loadApp(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		Debug:       cfg.Debug,
	})
	if err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", slog.Any("error", err))
		shutdownTelemetry = func() {}
	}

	if migrate {
		if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
			shutdownTelemetry()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		shutdownTelemetry()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	a := &app{
		cfg:               cfg,
		logger:            logger,
		pool:              pool,
		meetingTypes:      repository.NewMeetingTypeRepository(pool),
		personas:          repository.NewPersonaRepository(pool),
		transcripts:       repository.NewTranscriptRepository(pool),
		knowledge:         repository.NewKnowledgeRepository(pool),
		txRunner:          repository.NewTxRunner(pool),
		shutdownTelemetry: shutdownTelemetry,
	}

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("object storage ready", slog.String("bucket", cfg.S3Bucket))
		a.s3 = s3Client
	}

	if cfg.HasOpenAI() {
		a.ai = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			GenerationModel:     cfg.GenerationModel,
		})
		logger.Info("model provider configured",
			slog.String("embedding_model", cfg.EmbeddingModel),
			slog.String("generation_model", cfg.GenerationModel),
		)
	}

	return a, nil
}

func (a *app) Close() {
	a.pool.Close()
	a.shutdownTelemetry()
}

// The accessors below return untyped nils for missing integrations so the
// services' nil checks see them.

func (a *app) objectStore() service.ObjectStore {
	if a.s3 == nil {
		return nil
	}
	return a.s3
}

func (a *app) embedder() service.EmbeddingClient {
	if a.ai == nil {
		return nil
	}
	return a.ai
}

func (a *app) generator() service.Generator {
	if a.ai == nil {
		return nil
	}
	return a.ai
}

func (a *app) bucket() string {
	if a.s3 == nil {
		return ""
	}
	return a.s3.Bucket()
}

// ranker picks the similarity backend named by RETRIEVAL_BACKEND.
func (a *app) ranker() retrieval.Ranker {
	if a.cfg.RetrievalBackend == config.RetrievalBackendLocal {
		return retrieval.NewLocalRanker(a.knowledge, a.logger)
	}
	return retrieval.NewIndexRanker(a.knowledge, a.logger)
}

func (a *app) ingestionService() *service.IngestionService {
	return service.NewIngestionService(a.embedder(), a.knowledge, a.txRunner, a.objectStore(), a.logger)
}

func (a *app) exportService() *service.ExportService {
	return service.NewExportService(a.transcripts, a.meetingTypes, a.personas, a.objectStore(), a.bucket())
}
