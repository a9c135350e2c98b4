package clustering

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/domain/cluster"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// Merge combines two clusters into a fresh one. The new centroid is the
// member-count-weighted average of the input centroids; theme and confidence
// are recomputed over the combined member set resolved from pool. Inputs are
// not mutated and the result carries a new id.
func (e *Engine) Merge(c1, c2 cluster.Cluster, pool []item.Item) (cluster.Cluster, error) {
	if c1.Size() == 0 || c2.Size() == 0 {
		return cluster.Cluster{}, domain.ErrEmptyCluster
	}

	cent1, cent2 := c1.Centroid(), c2.Centroid()
	if len(cent1) != len(cent2) {
		return cluster.Cluster{}, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(cent1), len(cent2))
	}

	byID := make(map[string]item.Item, len(pool))
	for i := range pool {
		byID[pool[i].ID()] = pool[i]
	}

	memberIDs := append(c1.MemberIDs(), c2.MemberIDs()...)
	members := make([]item.Item, 0, len(memberIDs))
	for _, id := range memberIDs {
		it, ok := byID[id]
		if !ok {
			return cluster.Cluster{}, fmt.Errorf("%w: %s", domain.ErrMissingMember, id)
		}
		members = append(members, it)
	}

	n1, n2 := float64(c1.Size()), float64(c2.Size())
	w1 := n1 / (n1 + n2)
	w2 := n2 / (n1 + n2)

	centroid := make([]float32, len(cent1))
	for i := range centroid {
		centroid[i] = float32(float64(cent1[i])*w1 + float64(cent2[i])*w2)
	}

	return cluster.Reconstruct(
		uuid.NewString(),
		memberIDs,
		centroid,
		GenerateTheme(members),
		Confidence(members, centroid),
	), nil
}
