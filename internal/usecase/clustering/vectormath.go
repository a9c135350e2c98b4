package clustering

import (
	"fmt"
	"math"

	"github.com/objones25/FeedbackFlow/internal/domain"
)

// CosineSimilarity returns dot(a,b) / (|a|*|b|) with float64 accumulation.
// A zero-norm operand yields 0 ("as dissimilar as possible"), never a division
// by zero. Vectors of differing length fail with domain.ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CosineDistance returns 1 - CosineSimilarity(a, b).
func CosineDistance(a, b []float32) (float64, error) {
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// UpdateCentroid folds a new point into a running mean.
// newCount is the member count after adding the point; the result equals
// recomputing the mean of all members from scratch, up to rounding.
func UpdateCentroid(current, point []float32, newCount int) []float32 {
	out := make([]float32, len(current))
	n := float64(newCount)
	for i := range current {
		out[i] = float32((float64(current[i])*(n-1) + float64(point[i])) / n)
	}
	return out
}
