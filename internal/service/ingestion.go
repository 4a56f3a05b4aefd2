package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/extract"
	"github.com/timberyard/meetingassist/internal/retrieval"
	"github.com/timberyard/meetingassist/internal/storage"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

// DefaultEmbedConcurrency bounds concurrent embedding calls per item.
const DefaultEmbedConcurrency = 4

// IngestionService extracts, chunks and embeds knowledge items
type IngestionService struct {
	embedder    EmbeddingClient
	knowledge   KnowledgeRepositoryInterface
	txRunner    TxRunner
	objects     ObjectStore
	logger      *slog.Logger
	uuidGen     UUIDGenerator
	now         Clock
	concurrency int
	retryWait   time.Duration
}

// NewIngestionService creates a new IngestionService. objects may be nil when
// object storage is not configured.
func NewIngestionService(
	embedder EmbeddingClient,
	knowledge KnowledgeRepositoryInterface,
	txRunner TxRunner,
	objects ObjectStore,
	logger *slog.Logger,
) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{
		embedder:    embedder,
		knowledge:   knowledge,
		txRunner:    txRunner,
		objects:     objects,
		logger:      logger,
		uuidGen:     &DefaultUUIDGenerator{},
		now:         utcNow,
		concurrency: DefaultEmbedConcurrency,
		retryWait:   defaultRetryWait,
	}
}

// IngestInput describes a file to add to the knowledge base. Exactly one of
// Content and ObjectKey is used; Content wins when both are set.
type IngestInput struct {
	ItemID    string
	FileName  string
	Content   []byte
	ObjectKey string
	Kind      domain.KnowledgeKind
	Title     string
}

// IngestResult reports what was indexed
type IngestResult struct {
	ItemID string `json:"itemId"`
	Chunks int    `json:"chunks"`
}

// Ingest extracts text from a file and indexes it. Re-ingesting the same
// ItemID replaces its chunks.
func (s *IngestionService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Ingest", telemetry.SpanAttributes{
		ItemID:    in.ItemID,
		Operation: "ingest",
	})
	defer span.End()

	if strings.TrimSpace(in.ItemID) == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("itemId is required"))
	}
	if in.Kind == "" {
		in.Kind = domain.KnowledgeKindDocument
	}

	data, name, err := s.load(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	text, err := extract.ExtractFile(name, data)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	title := in.Title
	if title == "" {
		title = name
	}
	item := domain.NewKnowledgeItem(in.ItemID, in.Kind, title, text, s.now())

	chunks, err := s.IndexItem(ctx, item)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return &IngestResult{ItemID: in.ItemID, Chunks: chunks}, nil
}

func (s *IngestionService) load(ctx context.Context, in IngestInput) ([]byte, string, error) {
	if len(in.Content) > 0 {
		if in.FileName == "" {
			return nil, "", domain.Wrap(domain.ErrMissingRequiredField, errors.New("fileName is required"))
		}
		return in.Content, in.FileName, nil
	}
	if in.ObjectKey == "" {
		return nil, "", domain.Wrap(domain.ErrMissingRequiredField, errors.New("content or objectKey is required"))
	}
	if s.objects == nil {
		return nil, "", domain.ErrStorageNotConfigured
	}
	data, err := s.objects.GetObject(ctx, in.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, "object not found", err)
		}
		return nil, "", domain.Wrap(domain.ErrStorageOperationFailed, err)
	}
	name := in.FileName
	if name == "" {
		name = in.ObjectKey
	}
	return data, name, nil
}

// CreateDocumentInput is a plain-text knowledge document
type CreateDocumentInput struct {
	ID    string
	Title string
	Text  string
}

// CreateDocument stores a document without embedding it; the backfill
// worker indexes it later.
func (s *IngestionService) CreateDocument(ctx context.Context, in CreateDocumentInput) (*domain.KnowledgeItem, error) {
	id := in.ID
	if id == "" {
		id = s.uuidGen.NewString()
	}
	item := domain.NewKnowledgeItem(id, domain.KnowledgeKindDocument, in.Title, in.Text, s.now())
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, err)
	}
	if err := s.knowledge.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	return item, nil
}

// IndexItem chunks and embeds item, then stores the item and replaces its
// chunks in one transaction. It returns the number of chunks written.
func (s *IngestionService) IndexItem(ctx context.Context, item *domain.KnowledgeItem) (int, error) {
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return 0, domain.Wrap(domain.ErrMissingRequiredField, err)
	}
	if s.embedder == nil {
		return 0, domain.ErrRetrievalNotConfigured
	}

	texts := chunksOf(item.Text)
	if len(texts) == 0 {
		return 0, domain.Wrap(domain.ErrMissingRequiredField, fmt.Errorf("item %s has no indexable text", item.ID))
	}
	chunks := make([]domain.KnowledgeItem, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := retryOnce(gctx, s.retryWait, func(ctx context.Context) ([]float32, error) {
				return s.embedder.GenerateEmbedding(ctx, text)
			})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			chunks[i] = domain.KnowledgeItem{
				ID:        domain.ChunkID(item.ID, i),
				Kind:      item.Kind,
				Title:     item.Title,
				Text:      text,
				SourceID:  item.ID,
				Embedding: vec,
				CreatedAt: item.UpdatedAt,
				UpdatedAt: item.UpdatedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if domain.CodeOf(err) == "" {
			err = domain.Wrap(domain.ErrEmbeddingService, err)
		}
		return 0, err
	}

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Knowledge().Upsert(ctx, item); err != nil {
			return err
		}
		return repos.Knowledge().ReplaceChunks(ctx, item.ID, chunks)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store chunks for %s: %w", item.ID, err)
	}

	s.logger.InfoContext(ctx, "indexed knowledge item",
		slog.String("item_id", item.ID),
		slog.String("kind", string(item.Kind)),
		slog.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// chunksOf splits text for embedding. Text the chunk pattern cannot split,
// such as a single line of whitespace-free content longer than a chunk, is
// embedded whole.
func chunksOf(text string) []string {
	chunks := retrieval.ChunkText(text)
	if len(chunks) == 0 && strings.TrimSpace(text) != "" {
		return []string{text}
	}
	return chunks
}

// Backfill indexes up to limit pending items and returns how many succeeded.
// A failing item is logged and skipped.
func (s *IngestionService) Backfill(ctx context.Context, limit int) (int, error) {
	pending, err := s.knowledge.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending knowledge: %w", err)
	}

	indexed := 0
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		item := pending[i]
		if _, err := s.IndexItem(ctx, &item); err != nil {
			s.logger.WarnContext(ctx, "backfill failed for item",
				slog.String("item_id", item.ID),
				slog.Any("error", err),
			)
			continue
		}
		indexed++
	}
	return indexed, nil
}
