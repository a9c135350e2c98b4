package feedback

import (
	"context"
	"time"

	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
)

// Repository defines the storage contract for feedback items and clustering results.
type Repository interface {
	SaveItems(ctx context.Context, items []domitem.Item) error
	ListItems(ctx context.Context) ([]domitem.Item, error)
	GetItem(ctx context.Context, id string) (domitem.Item, error)
	DeleteItem(ctx context.Context, id string) error
	SaveResult(ctx context.Context, result domcluster.Result) error
	GetResult(ctx context.Context) (domcluster.Result, error)
	LastRunAt(ctx context.Context) (time.Time, error)
	CachedThreshold(ctx context.Context) (float64, error)
	CacheThreshold(ctx context.Context, threshold float64) error
	InvalidateThreshold(ctx context.Context) error
}

// Embedder vectorizes a single text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in one API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// SentimentScorer classifies the polarity of a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (domain.Sentiment, error)
}

// Analyzer produces a structured breakdown of a feedback text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}
