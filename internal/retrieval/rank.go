package retrieval

import (
	"fmt"
	"sort"

	"github.com/timberyard/meetingassist/internal/domain"
)

// Warning records a candidate excluded from ranking.
type Warning struct {
	ItemID string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.ItemID, w.Err)
}

// RankResult is the ranked output plus the candidates that were skipped.
type RankResult struct {
	Items    []domain.ScoredItem
	Warnings []Warning
}

// Rank scores candidates against query and returns at most k of them in
// descending score order. Equal scores keep their input order. Candidates
// without an embedding are dropped silently; candidates whose dimension
// differs from the query, or whose vector has zero norm, are dropped with a
// warning.
func Rank(query []float32, candidates []domain.KnowledgeItem, k int) RankResult {
	var res RankResult
	if k <= 0 {
		res.Items = []domain.ScoredItem{}
		return res
	}

	scored := make([]domain.ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasEmbedding() {
			continue
		}
		score, err := CosineSimilarity(query, c.Embedding)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{ItemID: c.ID, Err: err})
			continue
		}
		scored = append(scored, domain.ScoredItem{Item: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	res.Items = scored
	return res
}
