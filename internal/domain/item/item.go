// Package item holds the feedback item aggregate: one sentence of feedback
// with its embedding and optional sentiment.
package item

import (
	"fmt"
	"math"

	"github.com/objones25/FeedbackFlow/internal/domain"
)

// Item is an atomic unit submitted for clustering (immutable value object).
// Integer identifiers from upstream sources are stringified by callers.
type Item struct {
	id        string
	text      string
	embedding []float32
	sentiment domain.Sentiment
	scored    bool
}

// New validates and creates an Item.
// The embedding must be non-empty and contain only finite numbers.
func New(id, text string, embedding []float32) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if text == "" {
		return Item{}, fmt.Errorf("text is required")
	}
	if len(embedding) == 0 {
		return Item{}, fmt.Errorf("embedding is required")
	}
	for i, v := range embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Item{}, fmt.Errorf("embedding[%d] is not a finite number", i)
		}
	}

	emb := make([]float32, len(embedding))
	copy(emb, embedding)

	return Item{id: id, text: text, embedding: emb}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(id, text string, embedding []float32, sentiment domain.Sentiment, scored bool) Item {
	return Item{id: id, text: text, embedding: embedding, sentiment: sentiment, scored: scored}
}

// ID returns the item identifier.
func (it *Item) ID() string { return it.id }

// Text returns the semantic payload.
func (it *Item) Text() string { return it.text }

// Embedding returns the embedding vector.
func (it *Item) Embedding() []float32 { return it.embedding }

// Sentiment returns the sentiment assigned at ingestion, if any.
func (it *Item) Sentiment() (domain.Sentiment, bool) { return it.sentiment, it.scored }

// WithSentiment returns a copy with the sentiment set.
func (it *Item) WithSentiment(s domain.Sentiment) Item {
	return Item{id: it.id, text: it.text, embedding: it.embedding, sentiment: s, scored: true}
}
