package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/pagination"
)

// MeetingTypeRepositoryInterface defines persistence for meeting types
type MeetingTypeRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.MeetingType, error)
	List(ctx context.Context) ([]*domain.MeetingType, error)
	Upsert(ctx context.Context, m *domain.MeetingType) error
}

// PersonaRepositoryInterface defines persistence for personas
type PersonaRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Persona, error)
	// GetByIDs returns the personas that exist, in the order of ids.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Persona, error)
	List(ctx context.Context) ([]*domain.Persona, error)
	Upsert(ctx context.Context, p *domain.Persona) error
}

// TranscriptRepositoryInterface defines persistence for transcripts
type TranscriptRepositoryInterface interface {
	Create(ctx context.Context, t *domain.Transcript) error
	GetByID(ctx context.Context, id string) (*domain.Transcript, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Transcript, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*TranscriptPageResult, error)
	ListAll(ctx context.Context) ([]*domain.Transcript, error)
}

// TranscriptSummary is a listing row for a transcript
type TranscriptSummary struct {
	ID              string    `json:"id"`
	MeetingID       string    `json:"meetingId"`
	MeetingTypeID   string    `json:"meetingTypeId"`
	MeetingTypeName string    `json:"meetingTypeName,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"createdAt"`
}

type TranscriptPageResult struct {
	Items      []*TranscriptSummary
	NextCursor string
	HasMore    bool
}

// KnowledgeRepositoryInterface defines persistence for knowledge items and their chunks
type KnowledgeRepositoryInterface interface {
	Upsert(ctx context.Context, k *domain.KnowledgeItem) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	// ReplaceChunks deletes every chunk of sourceID and inserts chunks.
	ReplaceChunks(ctx context.Context, sourceID string, chunks []domain.KnowledgeItem) error
	ListEmbedded(ctx context.Context) ([]domain.KnowledgeItem, error)
	// ListPending returns top-level items that have neither an embedding nor chunks.
	ListPending(ctx context.Context, limit int) ([]domain.KnowledgeItem, error)
	SearchByEmbedding(ctx context.Context, query []float32, k int) ([]domain.ScoredItem, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// Clock returns the current time (for testing)
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
