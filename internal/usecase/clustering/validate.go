package clustering

import (
	"fmt"
	"math"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// validateThreshold checks that the similarity threshold is in [0,1].
func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v not in [0,1]", domain.ErrInvalidThreshold, threshold)
	}
	return nil
}

// validateItems runs the single up-front validation pass over the whole batch.
// Any failure aborts the call before clustering work begins (all-or-nothing).
func validateItems(items []item.Item, limits Limits) error {
	if len(items) == 0 {
		return domain.ErrEmptyInput
	}
	if len(items) > limits.MaxItems {
		return fmt.Errorf("%w: %d items, max %d", domain.ErrTooManyItems, len(items), limits.MaxItems)
	}

	dim := 0
	for i := range items {
		it := &items[i]
		if it.ID() == "" {
			return domain.NewInvalidItem(i, "missing id")
		}
		if it.Text() == "" {
			return domain.NewInvalidItem(i, "missing text")
		}
		emb := it.Embedding()
		if len(emb) == 0 {
			return domain.NewInvalidItem(i, "empty embedding")
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return domain.NewInvalidItem(i, fmt.Sprintf("embedding dimension %d, expected %d", len(emb), dim))
		}
		for d, v := range emb {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return domain.NewInvalidItem(i, fmt.Sprintf("embedding[%d] is not finite", d))
			}
		}
	}
	return nil
}
