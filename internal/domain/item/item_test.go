package item

import (
	"math"
	"testing"

	"github.com/objones25/FeedbackFlow/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	it, err := New("42", "great product quality", []float32{0.8, 0.2, 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID() != "42" {
		t.Errorf("ID() = %q", it.ID())
	}
	if it.Text() != "great product quality" {
		t.Errorf("Text() = %q", it.Text())
	}
	if len(it.Embedding()) != 3 {
		t.Errorf("Embedding() = %v", it.Embedding())
	}
	if _, ok := it.Sentiment(); ok {
		t.Error("new item should have no sentiment")
	}
}

func TestNew_CopiesEmbedding(t *testing.T) {
	emb := []float32{0.1, 0.2}
	it, err := New("1", "text", emb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	emb[0] = 9.9
	if it.Embedding()[0] != 0.1 {
		t.Error("embedding should be copied, not aliased")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		id, text  string
		embedding []float32
	}{
		{"empty id", "", "text", []float32{0.1}},
		{"empty text", "1", "", []float32{0.1}},
		{"empty embedding", "1", "text", nil},
		{"nan embedding", "1", "text", []float32{float32(math.NaN()), 0.5, 0.3}},
		{"inf embedding", "1", "text", []float32{0.5, float32(math.Inf(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.id, tt.text, tt.embedding); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWithSentiment(t *testing.T) {
	it, _ := New("1", "bad support experience", []float32{0.1, 0.8})
	scored := it.WithSentiment(domain.Sentiment{
		Label: domain.SentimentNegative, Score: -0.7, Confidence: 0.9,
	})

	s, ok := scored.Sentiment()
	if !ok {
		t.Fatal("expected sentiment to be set")
	}
	if s.Label != domain.SentimentNegative {
		t.Errorf("Label = %q", s.Label)
	}
	if _, ok := it.Sentiment(); ok {
		t.Error("original item must not be mutated")
	}
}
