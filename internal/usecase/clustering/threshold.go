package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

const (
	// defaultThreshold is returned when the batch is too small to sample.
	defaultThreshold = 0.3
	// thresholdSampleFloor is the minimum batch size for sampling.
	thresholdSampleFloor = 10
	// thresholdSampleLimit caps the number of sampled items.
	thresholdSampleLimit = 100

	thresholdMargin = 0.1
	thresholdMin    = 0.1
	thresholdMax    = 0.8
)

// SuggestThreshold derives a data-driven clustering threshold: the mean
// pairwise similarity over the first min(100, n) items plus a margin, clamped
// to [0.1, 0.8]. Batches below 10 items fall back to the fixed default.
func (e *Engine) SuggestThreshold(items []item.Item) (float64, error) {
	if len(items) < thresholdSampleFloor {
		return defaultThreshold, nil
	}

	sample := items
	if len(sample) > thresholdSampleLimit {
		sample = sample[:thresholdSampleLimit]
	}

	sims := make([]float64, 0, len(sample)*(len(sample)-1)/2)
	for i := range sample {
		for j := i + 1; j < len(sample); j++ {
			sim, err := CosineSimilarity(sample[i].Embedding(), sample[j].Embedding())
			if err != nil {
				return 0, fmt.Errorf("pair (%s, %s): %w", sample[i].ID(), sample[j].ID(), err)
			}
			sims = append(sims, sim)
		}
	}

	mean := stat.Mean(sims, nil)
	return clamp(mean+thresholdMargin, thresholdMin, thresholdMax), nil
}
