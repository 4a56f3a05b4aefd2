package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/jira"
	"github.com/timberyard/meetingassist/internal/pagination"
	"github.com/timberyard/meetingassist/internal/retrieval"
)

// MockMeetingTypeRepository is a mock implementation of MeetingTypeRepositoryInterface
type MockMeetingTypeRepository struct {
	mock.Mock
}

func (m *MockMeetingTypeRepository) GetByID(ctx context.Context, id string) (*domain.MeetingType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeetingType), args.Error(1)
}

func (m *MockMeetingTypeRepository) List(ctx context.Context) ([]*domain.MeetingType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MeetingType), args.Error(1)
}

func (m *MockMeetingTypeRepository) Upsert(ctx context.Context, mt *domain.MeetingType) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

// MockPersonaRepository is a mock implementation of PersonaRepositoryInterface
type MockPersonaRepository struct {
	mock.Mock
}

func (m *MockPersonaRepository) GetByID(ctx context.Context, id string) (*domain.Persona, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Persona), args.Error(1)
}

func (m *MockPersonaRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Persona, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Persona), args.Error(1)
}

func (m *MockPersonaRepository) List(ctx context.Context) ([]*domain.Persona, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Persona), args.Error(1)
}

func (m *MockPersonaRepository) Upsert(ctx context.Context, p *domain.Persona) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockTranscriptRepository is a mock implementation of TranscriptRepositoryInterface
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Create(ctx context.Context, t *domain.Transcript) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTranscriptRepository) GetByID(ctx context.Context, id string) (*domain.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Transcript, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*TranscriptPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TranscriptPageResult), args.Error(1)
}

func (m *MockTranscriptRepository) ListAll(ctx context.Context) ([]*domain.Transcript, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transcript), args.Error(1)
}

// MockKnowledgeRepository is a mock implementation of KnowledgeRepositoryInterface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) Upsert(ctx context.Context, k *domain.KnowledgeItem) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ReplaceChunks(ctx context.Context, sourceID string, chunks []domain.KnowledgeItem) error {
	args := m.Called(ctx, sourceID, chunks)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) ListEmbedded(ctx context.Context) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ListPending(ctx context.Context, limit int) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) SearchByEmbedding(ctx context.Context, query []float32, k int) ([]domain.ScoredItem, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredItem), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data any) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockIssueFetcher is a mock implementation of IssueFetcher
type MockIssueFetcher struct {
	mock.Mock
}

func (m *MockIssueFetcher) GetIssue(ctx context.Context, issueID string) (*jira.Issue, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jira.Issue), args.Error(1)
}

// MockRanker is a mock implementation of retrieval.Ranker
type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) Rank(ctx context.Context, query []float32, k int) (retrieval.RankResult, error) {
	args := m.Called(ctx, query, k)
	return args.Get(0).(retrieval.RankResult), args.Error(1)
}

// MockUUIDGenerator returns the given ids in order
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

type testTxRepos struct {
	meetingTypes MeetingTypeRepositoryInterface
	personas     PersonaRepositoryInterface
	knowledge    KnowledgeRepositoryInterface
	transcripts  TranscriptRepositoryInterface
}

func (t *testTxRepos) MeetingTypes() MeetingTypeRepositoryInterface {
	return t.meetingTypes
}

func (t *testTxRepos) Personas() PersonaRepositoryInterface {
	return t.personas
}

func (t *testTxRepos) Knowledge() KnowledgeRepositoryInterface {
	return t.knowledge
}

func (t *testTxRepos) Transcripts() TranscriptRepositoryInterface {
	return t.transcripts
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}

func intPtr(v int) *int { return &v }
