package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultBatchSize is the number of pending items indexed per run.
const DefaultBatchSize = 25

// Backfiller indexes knowledge items that have no embedding yet
type Backfiller interface {
	Backfill(ctx context.Context, limit int) (int, error)
}

// BackfillProcessor embeds pending documents and transcripts
type BackfillProcessor struct {
	backfiller Backfiller
	batchSize  int
	logger     *slog.Logger
}

// NewBackfillProcessor creates a new BackfillProcessor instance
func NewBackfillProcessor(backfiller Backfiller, batchSize int, logger *slog.Logger) *BackfillProcessor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackfillProcessor{backfiller: backfiller, batchSize: batchSize, logger: logger}
}

// ProcessJobs implements the JobProcessor interface. A full batch is followed
// immediately by another, so a backlog drains in one run.
func (p *BackfillProcessor) ProcessJobs(ctx context.Context) error {
	total := 0
	for {
		n, err := p.backfiller.Backfill(ctx, p.batchSize)
		total += n
		if err != nil {
			return fmt.Errorf("backfill failed after %d items: %w", total, err)
		}
		if n < p.batchSize {
			break
		}
	}
	if total > 0 {
		p.logger.InfoContext(ctx, "backfilled knowledge embeddings", slog.Int("items", total))
	}
	return nil
}
