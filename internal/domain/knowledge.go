package domain

import (
	"fmt"
	"time"
)

// KnowledgeKind distinguishes ingested documents from stored meeting transcripts
type KnowledgeKind string

const (
	KnowledgeKindDocument   KnowledgeKind = "document"
	KnowledgeKindTranscript KnowledgeKind = "transcript"
)

// KnowledgeItem is a retrievable unit of text with an optional embedding.
// A nil Embedding means the item has not been embedded yet and is never ranked.
type KnowledgeItem struct {
	ID        string
	Kind      KnowledgeKind
	Title     string
	Text      string
	SourceID  string // parent document or transcript id for chunks
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScoredItem is a KnowledgeItem paired with its similarity to a query.
type ScoredItem struct {
	Item  KnowledgeItem
	Score float64
}

// KnowledgeRef is the compact reference recorded for retrieved knowledge.
type KnowledgeRef struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// NewKnowledgeItem creates a KnowledgeItem without an embedding
func NewKnowledgeItem(id string, kind KnowledgeKind, title, text string, now time.Time) *KnowledgeItem {
	return &KnowledgeItem{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasEmbedding reports whether the item can take part in ranking.
func (k *KnowledgeItem) HasEmbedding() bool {
	return len(k.Embedding) > 0
}

// Label is the display name used when formatting the item.
func (k *KnowledgeItem) Label() string {
	if k.Title != "" {
		return k.Title
	}
	return k.ID
}

// ChunkID names the i-th chunk of a source item.
func ChunkID(itemID string, i int) string {
	return fmt.Sprintf("%s-chunk%d", itemID, i)
}

// RefsOf reduces scored items to references, preserving order.
func RefsOf(items []ScoredItem) []KnowledgeRef {
	refs := make([]KnowledgeRef, 0, len(items))
	for _, s := range items {
		refs = append(refs, KnowledgeRef{ID: s.Item.ID, Score: s.Score})
	}
	return refs
}

// ParseKnowledgeKind parses a kind, defaulting empty input to document.
func ParseKnowledgeKind(s string) (KnowledgeKind, error) {
	switch KnowledgeKind(s) {
	case "":
		return KnowledgeKindDocument, nil
	case KnowledgeKindDocument, KnowledgeKindTranscript:
		return KnowledgeKind(s), nil
	}
	return "", Wrap(ErrInvalidKnowledgeKind, fmt.Errorf("unknown kind %q", s))
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if k.Text == "" {
		return fmt.Errorf("knowledge item Text is required")
	}

	switch k.Kind {
	case KnowledgeKindDocument, KnowledgeKindTranscript:
	default:
		return fmt.Errorf("knowledge item Kind is invalid: %s", k.Kind)
	}

	return nil
}
