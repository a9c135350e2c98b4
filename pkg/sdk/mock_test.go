package feedbackflow

import (
	"context"

	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	"github.com/objones25/FeedbackFlow/internal/usecase/clustering"
	feedbackuc "github.com/objones25/FeedbackFlow/internal/usecase/feedback"
)

// --- feedbackUseCase mock ---

type mockFeedbackUC struct {
	ingestFn   func(ctx context.Context, texts []string) ([]domitem.Item, error)
	regroupFn  func(ctx context.Context, threshold float64) (domcluster.Result, error)
	previewFn  func(ctx context.Context, threshold float64) (domcluster.Result, error)
	latestFn   func(ctx context.Context) (domcluster.Result, error)
	mergeFn    func(ctx context.Context, id1, id2 string) (domcluster.Cluster, error)
	similarFn  func(ctx context.Context, text string, threshold float64, maxResults int) ([]clustering.Neighbor, error)
	suggestFn  func(ctx context.Context) (float64, error)
	evaluateFn func(ctx context.Context) (clustering.Quality, error)
	trendsFn   func(ctx context.Context) ([]feedbackuc.ClusterTrend, error)
	analyzeFn  func(ctx context.Context, text string) (domain.Analysis, error)
}

func (m *mockFeedbackUC) Ingest(ctx context.Context, texts []string) ([]domitem.Item, error) {
	return m.ingestFn(ctx, texts)
}

func (m *mockFeedbackUC) Regroup(ctx context.Context, threshold float64) (domcluster.Result, error) {
	return m.regroupFn(ctx, threshold)
}

func (m *mockFeedbackUC) Preview(ctx context.Context, threshold float64) (domcluster.Result, error) {
	return m.previewFn(ctx, threshold)
}

func (m *mockFeedbackUC) Latest(ctx context.Context) (domcluster.Result, error) {
	return m.latestFn(ctx)
}

func (m *mockFeedbackUC) MergeClusters(ctx context.Context, id1, id2 string) (domcluster.Cluster, error) {
	return m.mergeFn(ctx, id1, id2)
}

func (m *mockFeedbackUC) Similar(
	ctx context.Context, text string, threshold float64, maxResults int,
) ([]clustering.Neighbor, error) {
	return m.similarFn(ctx, text, threshold, maxResults)
}

func (m *mockFeedbackUC) SuggestThreshold(ctx context.Context) (float64, error) {
	return m.suggestFn(ctx)
}

func (m *mockFeedbackUC) Evaluate(ctx context.Context) (clustering.Quality, error) {
	return m.evaluateFn(ctx)
}

func (m *mockFeedbackUC) Trends(ctx context.Context) ([]feedbackuc.ClusterTrend, error) {
	return m.trendsFn(ctx)
}

func (m *mockFeedbackUC) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	return m.analyzeFn(ctx, text)
}

// --- provider mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}
