package clustering

import (
	"errors"
	"math"
	"testing"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/domain/cluster"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

func mergeFixture(t *testing.T) (cluster.Cluster, cluster.Cluster, []item.Item) {
	t.Helper()
	pool := []item.Item{
		mkItem(t, "a", "fast shipping service", []float32{1, 0}),
		mkItem(t, "b", "quick shipping times", []float32{1, 0.1}),
		mkItem(t, "c", "billing invoice wrong", []float32{0, 1}),
	}
	c1 := cluster.Reconstruct("c-1", []string{"a", "b"}, []float32{1, 0.05}, "shipping", 0.9)
	c2 := cluster.Reconstruct("c-2", []string{"c"}, []float32{0, 1}, "billing", 0.5)
	return c1, c2, pool
}

func TestMerge_Conservation(t *testing.T) {
	c1, c2, pool := mergeFixture(t)

	merged, err := New().Merge(c1, c2, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a", "b", "c"}
	got := merged.MemberIDs()
	if len(got) != len(want) {
		t.Fatalf("member count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMerge_WeightedCentroid(t *testing.T) {
	c1, c2, pool := mergeFixture(t)

	merged, err := New().Merge(c1, c2, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Weights 2/3 and 1/3 of the input centroids.
	want := []float64{2.0 / 3.0, 0.05*2.0/3.0 + 1.0/3.0}
	centroid := merged.Centroid()
	for i := range want {
		if math.Abs(float64(centroid[i])-want[i]) > 1e-6 {
			t.Errorf("centroid[%d] = %f, want %f", i, centroid[i], want[i])
		}
	}
}

func TestMerge_FreshIDInputsUntouched(t *testing.T) {
	c1, c2, pool := mergeFixture(t)

	merged, err := New().Merge(c1, c2, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.ID() == c1.ID() || merged.ID() == c2.ID() {
		t.Error("merged cluster must carry a new id")
	}
	if c1.Size() != 2 || c2.Size() != 1 {
		t.Error("inputs must not be mutated")
	}
}

func TestMerge_RecomputesTheme(t *testing.T) {
	c1, c2, pool := mergeFixture(t)

	merged, err := New().Merge(c1, c2, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Theme() == "" || merged.Theme() == "Empty cluster" {
		t.Errorf("theme = %q", merged.Theme())
	}
	if merged.Confidence() < 0 || merged.Confidence() > 1 {
		t.Errorf("confidence = %f out of range", merged.Confidence())
	}
}

func TestMerge_EmptyCluster(t *testing.T) {
	c1, _, pool := mergeFixture(t)
	empty := cluster.Cluster{}

	if _, err := New().Merge(c1, empty, pool); !errors.Is(err, domain.ErrEmptyCluster) {
		t.Errorf("expected ErrEmptyCluster, got %v", err)
	}
	if _, err := New().Merge(empty, c1, pool); !errors.Is(err, domain.ErrEmptyCluster) {
		t.Errorf("expected ErrEmptyCluster, got %v", err)
	}
}

func TestMerge_MissingMember(t *testing.T) {
	c1, c2, pool := mergeFixture(t)

	_, err := New().Merge(c1, c2, pool[:2]) // "c" missing
	if !errors.Is(err, domain.ErrMissingMember) {
		t.Errorf("expected ErrMissingMember, got %v", err)
	}
}

func TestMerge_CentroidDimensionMismatch(t *testing.T) {
	c1, _, pool := mergeFixture(t)
	c3 := cluster.Reconstruct("c-3", []string{"c"}, []float32{0, 1, 0}, "", 0.5)

	_, err := New().Merge(c1, c3, pool)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
