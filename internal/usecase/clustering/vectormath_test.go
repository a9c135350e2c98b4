package clustering

import (
	"errors"
	"math"
	"testing"

	"github.com/objones25/FeedbackFlow/internal/domain"
)

func TestCosineSimilarity_Symmetry(t *testing.T) {
	a := []float32{0.8, 0.2, 0.1, 0.3}
	b := []float32{0.1, 0.8, 0.3, 0.2}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity not symmetric: %f vs %f", ab, ba)
	}
}

func TestCosineSimilarity_Self(t *testing.T) {
	a := []float32{0.8, 0.2, 0.1, 0.3}
	sim, err := CosineSimilarity(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim-1) > 1e-9 {
		t.Errorf("self-similarity = %f, want 1", sim)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim) > 1e-9 {
		t.Errorf("orthogonal similarity = %f, want 0", sim)
	}
}

func TestCosineSimilarity_ZeroNorm(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim != 0 {
		t.Errorf("zero-norm similarity = %f, want 0", sim)
	}

	dist, err := CosineDistance([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist != 1 {
		t.Errorf("zero-norm distance = %f, want 1", dist)
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosineDistance_ComplementsSimilarity(t *testing.T) {
	a := []float32{0.8, 0.2, 0.1, 0.3}
	b := []float32{0.82, 0.19, 0.11, 0.29}

	sim, _ := CosineSimilarity(a, b)
	dist, _ := CosineDistance(a, b)
	if math.Abs(sim+dist-1) > 1e-12 {
		t.Errorf("sim + dist = %f, want 1", sim+dist)
	}
}

func TestUpdateCentroid_MatchesBatchMean(t *testing.T) {
	points := [][]float32{
		{0.8, 0.2, 0.1},
		{0.82, 0.19, 0.11},
		{0.1, 0.8, 0.3},
		{0.4, 0.4, 0.4},
	}

	centroid := make([]float32, 3)
	copy(centroid, points[0])
	for i := 1; i < len(points); i++ {
		centroid = UpdateCentroid(centroid, points[i], i+1)
	}

	for d := 0; d < 3; d++ {
		var sum float64
		for _, p := range points {
			sum += float64(p[d])
		}
		want := sum / float64(len(points))
		if math.Abs(float64(centroid[d])-want) > 1e-5 {
			t.Errorf("centroid[%d] = %f, want %f", d, centroid[d], want)
		}
	}
}

func TestUpdateCentroid_SinglePoint(t *testing.T) {
	got := UpdateCentroid([]float32{0, 0}, []float32{0.5, 0.7}, 1)
	if got[0] != 0.5 || got[1] != 0.7 {
		t.Errorf("centroid of one point = %v", got)
	}
}
