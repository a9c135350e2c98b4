package clustering

import (
	"fmt"
	"sort"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// MaxNeighborResults bounds the maxResults parameter of FindSimilar.
const MaxNeighborResults = 100

// Neighbor is a single similarity hit.
type Neighbor struct {
	Item       item.Item
	Similarity float64
}

// FindSimilar returns the pool items with similarity to target of at least
// threshold, sorted descending (ties: pool order), truncated to maxResults.
// The target itself is excluded from the pool by id.
func (e *Engine) FindSimilar(
	target item.Item, pool []item.Item, threshold float64, maxResults int,
) ([]Neighbor, error) {
	if maxResults < 1 || maxResults > MaxNeighborResults {
		return nil, fmt.Errorf("%w: maxResults %d not in [1,%d]",
			domain.ErrInvalidArgument, maxResults, MaxNeighborResults)
	}

	neighbors := make([]Neighbor, 0, len(pool))
	for i := range pool {
		candidate := pool[i]
		if candidate.ID() == target.ID() {
			continue
		}
		sim, err := CosineSimilarity(target.Embedding(), candidate.Embedding())
		if err != nil {
			return nil, fmt.Errorf("similarity to %s: %w", candidate.ID(), err)
		}
		if sim >= threshold {
			neighbors = append(neighbors, Neighbor{Item: candidate, Similarity: sim})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})

	if len(neighbors) > maxResults {
		neighbors = neighbors[:maxResults]
	}
	return neighbors, nil
}
