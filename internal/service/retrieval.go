package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/retrieval"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

// MaxQueryK caps the number of results a knowledge query may request.
const MaxQueryK = 50

// QueryInput is a knowledge query by vector or by text. A nil K asks for
// DefaultTopK results; an explicit K <= 0 asks for none.
type QueryInput struct {
	Vector []float32
	Query  string
	K      *int
}

// QueryHit is one ranked knowledge item
type QueryHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// RetrievalService answers knowledge queries
type RetrievalService struct {
	ranker    retrieval.Ranker
	embedder  EmbeddingClient
	retryWait time.Duration
}

// NewRetrievalService creates a new RetrievalService. embedder may be nil,
// in which case only vector queries are accepted.
func NewRetrievalService(ranker retrieval.Ranker, embedder EmbeddingClient) *RetrievalService {
	return &RetrievalService{ranker: ranker, embedder: embedder, retryWait: defaultRetryWait}
}

// Query returns up to K items most similar to the query
func (s *RetrievalService) Query(ctx context.Context, in QueryInput) ([]QueryHit, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Query", telemetry.SpanAttributes{Operation: "query"})
	defer span.End()

	if s.ranker == nil {
		return nil, domain.ErrRetrievalNotConfigured
	}

	k := DefaultTopK
	if in.K != nil {
		k = min(*in.K, MaxQueryK)
	}

	vec := in.Vector
	if len(vec) == 0 {
		q := strings.TrimSpace(in.Query)
		if q == "" {
			return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("queryVector or query is required"))
		}
		if k <= 0 {
			return []QueryHit{}, nil
		}
		if s.embedder == nil {
			return nil, domain.ErrRetrievalNotConfigured
		}
		var err error
		vec, err = retryOnce(ctx, s.retryWait, func(ctx context.Context) ([]float32, error) {
			return s.embedder.GenerateEmbedding(ctx, q)
		})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	if k <= 0 {
		return []QueryHit{}, nil
	}

	res, err := s.ranker.Rank(ctx, vec, k)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to rank knowledge: %w", err)
	}

	hits := make([]QueryHit, 0, len(res.Items))
	for _, it := range res.Items {
		hits = append(hits, QueryHit{ID: it.Item.ID, Score: it.Score, Text: it.Item.Text})
	}
	return hits, nil
}
