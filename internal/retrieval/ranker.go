package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timberyard/meetingassist/internal/domain"
)

// Ranker returns the k stored items most similar to a query embedding.
type Ranker interface {
	Rank(ctx context.Context, query []float32, k int) (RankResult, error)
}

// CandidateSource lists every item that carries an embedding.
type CandidateSource interface {
	ListEmbedded(ctx context.Context) ([]domain.KnowledgeItem, error)
}

// VectorIndex answers nearest-neighbour queries on the managed index.
type VectorIndex interface {
	SearchByEmbedding(ctx context.Context, query []float32, k int) ([]domain.ScoredItem, error)
	MismatchedDimensionIDs(ctx context.Context, dims, limit int) ([]string, error)
}

// maxMismatchWarnings bounds the excluded ids reported per index query.
const maxMismatchWarnings = 20

// LocalRanker loads all embedded candidates and scores them in process.
type LocalRanker struct {
	source CandidateSource
	logger *slog.Logger
}

func NewLocalRanker(source CandidateSource, logger *slog.Logger) *LocalRanker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalRanker{source: source, logger: logger}
}

func (r *LocalRanker) Rank(ctx context.Context, query []float32, k int) (RankResult, error) {
	if k <= 0 {
		return RankResult{Items: []domain.ScoredItem{}}, nil
	}
	candidates, err := r.source.ListEmbedded(ctx)
	if err != nil {
		return RankResult{}, fmt.Errorf("failed to load candidates: %w", err)
	}

	res := Rank(query, candidates, k)
	for _, w := range res.Warnings {
		r.logger.WarnContext(ctx, "excluded candidate from ranking",
			slog.String("item_id", w.ItemID),
			slog.String("reason", w.Err.Error()),
		)
	}
	return res, nil
}

// IndexRanker delegates ranking to the pgvector index. The index only
// compares vectors of the query's length; the rest are reported as warnings.
type IndexRanker struct {
	index  VectorIndex
	logger *slog.Logger
}

func NewIndexRanker(index VectorIndex, logger *slog.Logger) *IndexRanker {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexRanker{index: index, logger: logger}
}

func (r *IndexRanker) Rank(ctx context.Context, query []float32, k int) (RankResult, error) {
	if k <= 0 {
		return RankResult{Items: []domain.ScoredItem{}}, nil
	}
	items, err := r.index.SearchByEmbedding(ctx, query, k)
	if err != nil {
		return RankResult{}, fmt.Errorf("index search failed: %w", err)
	}
	if items == nil {
		items = []domain.ScoredItem{}
	}
	return RankResult{Items: items, Warnings: r.dimensionWarnings(ctx, len(query))}, nil
}

func (r *IndexRanker) dimensionWarnings(ctx context.Context, dims int) []Warning {
	ids, err := r.index.MismatchedDimensionIDs(ctx, dims, maxMismatchWarnings)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to check embedding dimensions", slog.Any("error", err))
		return nil
	}

	var warnings []Warning
	for _, id := range ids {
		w := Warning{
			ItemID: id,
			Err:    domain.Wrap(domain.ErrDimensionMismatch, fmt.Errorf("stored vector is not %d-dimensional", dims)),
		}
		warnings = append(warnings, w)
		r.logger.WarnContext(ctx, "excluded candidate from ranking",
			slog.String("item_id", w.ItemID),
			slog.String("reason", w.Err.Error()),
		)
	}
	return warnings
}
