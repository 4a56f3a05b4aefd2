package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/storage"
)

type ingestionFixture struct {
	svc       *IngestionService
	embedder  *MockEmbeddingClient
	knowledge *MockKnowledgeRepository
	objects   *MockObjectStore
	tx        *testTxRunner
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		embedder:  new(MockEmbeddingClient),
		knowledge: new(MockKnowledgeRepository),
		objects:   new(MockObjectStore),
	}
	f.tx = &testTxRunner{repos: &testTxRepos{knowledge: f.knowledge}}
	f.svc = NewIngestionService(f.embedder, f.knowledge, f.tx, f.objects, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc.now = func() time.Time { return fixedNow }
	f.svc.retryWait = 0
	return f
}

func TestIngestionService_Ingest_Text(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	text := strings.Repeat("word ", 300) // 1500 chars, two chunks
	f.embedder.On("GenerateEmbedding", mock.Anything, mock.AnythingOfType("string")).Return([]float32{1, 2}, nil)
	f.knowledge.On("Upsert", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.ID == "handbook" && k.Title == "handbook.txt" && k.Embedding == nil && k.Kind == domain.KnowledgeKindDocument
	})).Return(nil)
	f.knowledge.On("ReplaceChunks", mock.Anything, "handbook", mock.MatchedBy(func(chunks []domain.KnowledgeItem) bool {
		if len(chunks) != 2 {
			return false
		}
		for i, c := range chunks {
			if c.ID != fmt.Sprintf("handbook-chunk%d", i) || c.SourceID != "handbook" || len(c.Embedding) != 2 {
				return false
			}
		}
		return chunks[0].Text+chunks[1].Text == text
	})).Return(nil)

	res, err := f.svc.Ingest(ctx, IngestInput{ItemID: "handbook", FileName: "handbook.txt", Content: []byte(text)})
	require.NoError(t, err)
	assert.Equal(t, &IngestResult{ItemID: "handbook", Chunks: 2}, res)
	assert.True(t, f.tx.called)
	f.embedder.AssertNumberOfCalls(t, "GenerateEmbedding", 2)
	f.knowledge.AssertExpectations(t)
}

func TestIngestionService_Ingest_ObjectKey(t *testing.T) {
	f := newIngestionFixture()

	f.objects.On("GetObject", mock.Anything, "uploads/notes.md").Return([]byte("Team agreed on Postgres."), nil)
	f.embedder.On("GenerateEmbedding", mock.Anything, "Team agreed on Postgres.").Return([]float32{1}, nil)
	f.knowledge.On("Upsert", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.Title == "Architecture notes" && k.Kind == domain.KnowledgeKindTranscript
	})).Return(nil)
	f.knowledge.On("ReplaceChunks", mock.Anything, "notes", mock.Anything).Return(nil)

	res, err := f.svc.Ingest(context.Background(), IngestInput{
		ItemID:    "notes",
		ObjectKey: "uploads/notes.md",
		Kind:      domain.KnowledgeKindTranscript,
		Title:     "Architecture notes",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)
}

func TestIngestionService_Ingest_ObjectMissing(t *testing.T) {
	f := newIngestionFixture()
	f.objects.On("GetObject", mock.Anything, "nope.txt").Return(nil, fmt.Errorf("%w: nope.txt", storage.ErrObjectNotFound))

	_, err := f.svc.Ingest(context.Background(), IngestInput{ItemID: "x", ObjectKey: "nope.txt"})
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
}

func TestIngestionService_Ingest_NoStorage(t *testing.T) {
	f := newIngestionFixture()
	f.svc.objects = nil

	_, err := f.svc.Ingest(context.Background(), IngestInput{ItemID: "x", ObjectKey: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}

func TestIngestionService_Ingest_Validation(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, IngestInput{FileName: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = f.svc.Ingest(ctx, IngestInput{ItemID: "a", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = f.svc.Ingest(ctx, IngestInput{ItemID: "a"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestIngestionService_Ingest_ExtractionErrorsPropagate(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, IngestInput{ItemID: "a", FileName: "diagram.vsdx", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = f.svc.Ingest(ctx, IngestInput{ItemID: "a", FileName: "deck.pptx", Content: []byte("not a zip")})
	assert.ErrorIs(t, err, domain.ErrParse)

	assert.False(t, f.tx.called)
}

func TestIngestionService_IndexItem_EmbeddingFailure(t *testing.T) {
	f := newIngestionFixture()
	f.embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	item := domain.NewKnowledgeItem("doc", domain.KnowledgeKindDocument, "", "some text", fixedNow)
	_, err := f.svc.IndexItem(context.Background(), item)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	assert.False(t, f.tx.called)
}

func TestIngestionService_IndexItem_NoIndexableText(t *testing.T) {
	f := newIngestionFixture()

	item := domain.NewKnowledgeItem("doc", domain.KnowledgeKindDocument, "", "\n\n", fixedNow)
	_, err := f.svc.IndexItem(context.Background(), item)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestIngestionService_CreateDocument(t *testing.T) {
	f := newIngestionFixture()
	f.svc.uuidGen = NewMockUUIDGenerator("generated-id")

	f.knowledge.On("Upsert", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
		return k.ID == "generated-id" && k.Title == "FAQ" && k.Text == "Q: A" && !k.HasEmbedding()
	})).Return(nil)

	item, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{Title: "FAQ", Text: "Q: A"})
	require.NoError(t, err)
	assert.Equal(t, "generated-id", item.ID)
	f.embedder.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)

	_, err = f.svc.CreateDocument(context.Background(), CreateDocumentInput{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestIngestionService_Backfill(t *testing.T) {
	f := newIngestionFixture()

	f.knowledge.On("ListPending", mock.Anything, 10).Return([]domain.KnowledgeItem{
		{ID: "ok", Kind: domain.KnowledgeKindDocument, Text: "good text"},
		{ID: "bad", Kind: domain.KnowledgeKindTranscript, Text: "fails"},
	}, nil)
	f.embedder.On("GenerateEmbedding", mock.Anything, "good text").Return([]float32{1}, nil)
	f.embedder.On("GenerateEmbedding", mock.Anything, "fails").Return(nil, errors.New("boom"))
	f.knowledge.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.knowledge.On("ReplaceChunks", mock.Anything, "ok", mock.Anything).Return(nil)

	n, err := f.svc.Backfill(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.knowledge.AssertNotCalled(t, "ReplaceChunks", mock.Anything, "bad", mock.Anything)
}

func TestIngestionService_Backfill_ListError(t *testing.T) {
	f := newIngestionFixture()
	f.knowledge.On("ListPending", mock.Anything, 5).Return(nil, errors.New("db down"))

	_, err := f.svc.Backfill(context.Background(), 5)
	assert.Error(t, err)
}
