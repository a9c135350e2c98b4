// Package clustering implements the incremental online clustering engine:
// a single greedy pass that partitions embedded feedback sentences into
// cohesive groups with running centroids, themes, and confidence scores.
package clustering

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/objones25/FeedbackFlow/internal/domain/cluster"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// Limits bounds a single clustering run.
type Limits struct {
	MaxItems       int // hard cap on input size
	MaxClusters    int // open-cluster cap; overflow items become outliers
	MinClusterSize int // smaller clusters are dissolved to outliers
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{MaxItems: 10000, MaxClusters: 50, MinClusterSize: 2}
}

// Engine is the clustering engine. Stateless between calls: each invocation
// owns its clusters, so independent invocations may run concurrently.
type Engine struct {
	limits Limits
}

// New creates an engine with default limits.
func New() *Engine {
	return &Engine{limits: DefaultLimits()}
}

// WithLimits overrides the run limits.
func (e *Engine) WithLimits(l Limits) *Engine {
	if l.MaxItems > 0 {
		e.limits.MaxItems = l.MaxItems
	}
	if l.MaxClusters > 0 {
		e.limits.MaxClusters = l.MaxClusters
	}
	if l.MinClusterSize > 0 {
		e.limits.MinClusterSize = l.MinClusterSize
	}
	return e
}

// open is the working state of one cluster during a pass. The domain value is
// rebuilt wholesale after every insertion.
type open struct {
	value   cluster.Cluster
	members []item.Item
}

// Cluster partitions items into feedback groups in a single pass over input
// order. Each item joins the open cluster with the highest centroid similarity
// strictly above threshold (ties: earliest cluster), or starts a new cluster.
// Duplicate ids within one call are processed once. Clusters below the minimum
// size are dissolved to outliers; once the cluster cap is reached, remaining
// items go straight to outliers. The returned result together with the
// outliers is a duplicate-free partition of the input ids.
func (e *Engine) Cluster(items []item.Item, threshold float64) (cluster.Result, error) {
	if err := validateThreshold(threshold); err != nil {
		return cluster.Result{}, err
	}
	if err := validateItems(items, e.limits); err != nil {
		return cluster.Result{}, err
	}

	var (
		clusters []*open
		outliers []string
		seen     = make(map[string]bool, len(items))
	)

	for i := range items {
		it := items[i]
		if seen[it.ID()] {
			continue
		}

		if len(clusters) >= e.limits.MaxClusters {
			// Cluster cap reached: the rest of the batch is not assigned in
			// this pass, route it to outliers to keep the partition complete.
			for j := i; j < len(items); j++ {
				if id := items[j].ID(); !seen[id] {
					seen[id] = true
					outliers = append(outliers, id)
				}
			}
			break
		}
		seen[it.ID()] = true

		best := -1
		bestSim := threshold
		for j, oc := range clusters {
			centroid := oc.value.Centroid()
			sim, err := CosineSimilarity(it.Embedding(), centroid)
			if err != nil {
				return cluster.Result{}, fmt.Errorf("similarity to cluster %s: %w", oc.value.ID(), err)
			}
			// Strictly above threshold; earliest cluster wins ties.
			if sim > bestSim {
				best = j
				bestSim = sim
			}
		}

		if best >= 0 {
			clusters[best] = assign(clusters[best], it)
		} else {
			clusters = append(clusters, newOpen(it))
		}
	}

	kept := make([]cluster.Cluster, 0, len(clusters))
	for _, oc := range clusters {
		if oc.value.Size() < e.limits.MinClusterSize {
			outliers = append(outliers, oc.value.MemberIDs()...)
			continue
		}
		kept = append(kept, oc.value)
	}

	// Largest first; stable keeps creation order for equal sizes.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Size() > kept[j].Size()
	})

	return cluster.NewResult(kept, outliers), nil
}

// newOpen starts a cluster whose sole member is the given item.
func newOpen(it item.Item) *open {
	members := []item.Item{it}
	centroid := it.Embedding()
	return &open{
		value: cluster.Reconstruct(
			uuid.NewString(),
			[]string{it.ID()},
			centroid,
			GenerateTheme(members),
			Confidence(members, centroid),
		),
		members: members,
	}
}

// assign appends the item and rebuilds the cluster value: centroid via the
// running mean, theme and confidence over all current members.
func assign(oc *open, it item.Item) *open {
	members := append(oc.members, it)
	memberIDs := append(oc.value.MemberIDs(), it.ID())
	centroid := UpdateCentroid(oc.value.Centroid(), it.Embedding(), len(members))
	return &open{
		value: cluster.Reconstruct(
			oc.value.ID(),
			memberIDs,
			centroid,
			GenerateTheme(members),
			Confidence(members, centroid),
		),
		members: members,
	}
}
