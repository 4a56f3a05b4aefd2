// Package retrieval ranks stored knowledge against a query embedding and
// renders the winners for prompt inclusion.
package retrieval

import (
	"errors"
	"fmt"
	"math"

	"github.com/timberyard/meetingassist/internal/domain"
)

var errZeroNorm = errors.New("zero-norm vector")

// CosineSimilarity returns dot(a,b)/(|a||b|), unclamped. Vectors of different
// length fail with ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.Wrap(domain.ErrDimensionMismatch, fmt.Errorf("got %d and %d", len(a), len(b)))
	}
	if len(a) == 0 {
		return 0, errZeroNorm
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, errZeroNorm
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
