package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/jobs"
)

func BackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed knowledge items that have no vector yet",
		Long:  "Run the embedding backfill once until no pending documents or transcripts remain",
		RunE:  runBackfill,
	}

	cmd.Flags().Int("batch", jobs.DefaultBatchSize, "Items embedded per batch")

	return cmd
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	batch, _ := cmd.Flags().GetInt("batch")

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.ai == nil {
		return domain.ErrRetrievalNotConfigured
	}

	counter := &countingBackfiller{next: a.ingestionService()}
	if err := jobs.NewBackfillProcessor(counter, batch, a.logger).ProcessJobs(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d items\n", counter.total)
	return nil
}

type countingBackfiller struct {
	next  jobs.Backfiller
	total int
}

func (c *countingBackfiller) Backfill(ctx context.Context, limit int) (int, error) {
	n, err := c.next.Backfill(ctx, limit)
	c.total += n
	return n, err
}
