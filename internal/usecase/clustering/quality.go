package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/domain/cluster"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// Quality summarizes how well a completed clustering separates the data.
type Quality struct {
	SilhouetteScore      float64 `json:"silhouette_score"`
	IntraClusterDistance float64 `json:"intra_cluster_distance"`
	InterClusterDistance float64 `json:"inter_cluster_distance"`
	ClusterSizes         []int   `json:"cluster_sizes"`
}

// Evaluate computes intra-cluster cohesion, inter-cluster separation, and an
// approximate silhouette score for a completed clustering. Members are
// resolved from pool; an unresolvable id fails with domain.ErrMissingMember.
func (e *Engine) Evaluate(result cluster.Result, pool []item.Item) (Quality, error) {
	clusters := result.Clusters()
	if len(clusters) == 0 {
		return Quality{ClusterSizes: []int{}}, nil
	}

	byID := make(map[string]item.Item, len(pool))
	for i := range pool {
		byID[pool[i].ID()] = pool[i]
	}

	sizes := make([]int, len(clusters))
	var intraDists []float64

	for ci := range clusters {
		c := clusters[ci]
		sizes[ci] = c.Size()

		members := make([]item.Item, 0, c.Size())
		for _, id := range c.MemberIDs() {
			it, ok := byID[id]
			if !ok {
				return Quality{}, fmt.Errorf("%w: %s in cluster %s", domain.ErrMissingMember, id, c.ID())
			}
			members = append(members, it)
		}

		for i := range members {
			for j := i + 1; j < len(members); j++ {
				d, err := CosineDistance(members[i].Embedding(), members[j].Embedding())
				if err != nil {
					return Quality{}, fmt.Errorf("intra pair in cluster %s: %w", c.ID(), err)
				}
				intraDists = append(intraDists, d)
			}
		}
	}

	var interDists []float64
	for i := range clusters {
		for j := i + 1; j < len(clusters); j++ {
			ci, cj := clusters[i], clusters[j]
			d, err := CosineDistance(ci.Centroid(), cj.Centroid())
			if err != nil {
				return Quality{}, fmt.Errorf("centroid pair (%s, %s): %w", ci.ID(), cj.ID(), err)
			}
			interDists = append(interDists, d)
		}
	}

	q := Quality{ClusterSizes: sizes}
	if len(intraDists) > 0 {
		q.IntraClusterDistance = stat.Mean(intraDists, nil)
	}
	if len(interDists) > 0 {
		q.InterClusterDistance = stat.Mean(interDists, nil)
	}

	if q.InterClusterDistance > 0 {
		denom := q.InterClusterDistance
		if q.IntraClusterDistance > denom {
			denom = q.IntraClusterDistance
		}
		q.SilhouetteScore = clamp((q.InterClusterDistance-q.IntraClusterDistance)/denom, -1, 1)
	}

	return q, nil
}
