package feedbackflow

import "context"

// Embedder converts text to vector embeddings.
// Required for Ingest and Similar.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Optional — if the provided Embedder also implements BatchEmbedder,
// ingestion will use it for significantly better throughput.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// SentimentScorer classifies the polarity of a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (Sentiment, error)
}

// Analyzer produces a structured breakdown of a feedback text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}
