package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	"github.com/objones25/FeedbackFlow/internal/metrics"
	"github.com/objones25/FeedbackFlow/internal/usecase/clustering"
)

// Service orchestrates feedback ingestion, clustering runs and analysis
// on top of the storage and inference providers.
type Service struct {
	repo             Repository
	batch            BatchEmbedder
	embedder         Embedder
	sentiment        SentimentScorer
	analyzer         Analyzer
	engine           *clustering.Engine
	defaultThreshold float64
	logger           *zap.Logger
}

// New creates a feedback service.
func New(
	repo Repository,
	batch BatchEmbedder,
	embedder Embedder,
	sentiment SentimentScorer,
	analyzer Analyzer,
	engine *clustering.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:             repo,
		batch:            batch,
		embedder:         embedder,
		sentiment:        sentiment,
		analyzer:         analyzer,
		engine:           engine,
		defaultThreshold: 0.3,
		logger:           logger,
	}
}

// WithDefaultThreshold overrides the similarity threshold used when the caller passes none.
func (s *Service) WithDefaultThreshold(t float64) *Service {
	if t > 0 {
		s.defaultThreshold = t
	}
	return s
}

// DefaultThreshold returns the threshold used when the caller passes none.
func (s *Service) DefaultThreshold() float64 { return s.defaultThreshold }

// Ingest splits raw feedback texts into sentences, scores and vectorizes
// them, and persists the resulting items. Returns the stored items.
func (s *Service) Ingest(ctx context.Context, texts []string) ([]domitem.Item, error) {
	sentences := make([]string, 0, len(texts))
	for _, text := range texts {
		sentences = append(sentences, SplitSentences(text)...)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("no sentences to ingest: %w", domain.ErrEmptyInput)
	}

	res, err := s.batch.BatchEmbed(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("vectorize sentences: %w", err)
	}
	if len(res.Embeddings) != len(sentences) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(sentences), len(res.Embeddings), domain.ErrProviderError)
	}

	items := make([]domitem.Item, 0, len(sentences))
	for i, sentence := range sentences {
		it, err := domitem.New(uuid.NewString(), sentence, res.Embeddings[i])
		if err != nil {
			return nil, fmt.Errorf("build item [%d]: %w", i, err)
		}

		// Sentiment не критичен для кластеризации, поэтому ошибку не поднимаем
		sent, serr := s.sentiment.Score(ctx, sentence)
		if serr != nil {
			s.logger.Warn("sentiment scoring failed, storing unscored",
				zap.String("item_id", it.ID()), zap.Error(serr))
		} else {
			it = it.WithSentiment(sent)
		}

		items = append(items, it)
	}

	if err := s.repo.SaveItems(ctx, items); err != nil {
		return nil, fmt.Errorf("save items: %w", err)
	}

	// Пул изменился, закешированный порог больше не актуален
	if err := s.repo.InvalidateThreshold(ctx); err != nil {
		s.logger.Warn("threshold cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("feedback ingested",
		zap.Int("texts", len(texts)),
		zap.Int("items", len(items)),
		zap.Int("tokens", res.TotalTokens))

	return items, nil
}

// Item returns a single stored feedback item by id.
func (s *Service) Item(ctx context.Context, id string) (domitem.Item, error) {
	it, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// RemoveItem deletes a stored feedback item and prunes it from the latest
// persisted clustering result so downstream reads stay consistent.
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if err := s.repo.InvalidateThreshold(ctx); err != nil {
		s.logger.Warn("threshold cache invalidation failed", zap.Error(err))
	}

	if err := s.pruneFromResult(ctx, id); err != nil {
		return err
	}

	s.logger.Info("feedback item removed", zap.String("item_id", id))
	return nil
}

func (s *Service) pruneFromResult(ctx context.Context, id string) error {
	result, err := s.repo.GetResult(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get result: %w", err)
	}

	touched := false

	clusters := make([]domcluster.Cluster, 0, len(result.Clusters()))
	for _, c := range result.Clusters() {
		members := c.MemberIDs()
		kept := make([]string, 0, len(members))
		for _, m := range members {
			if m == id {
				touched = true
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			continue
		}
		if len(kept) == len(members) {
			clusters = append(clusters, c)
			continue
		}
		clusters = append(clusters, domcluster.Reconstruct(c.ID(), kept, c.Centroid(), c.Theme(), c.Confidence()))
	}

	outliers := make([]string, 0, len(result.Outliers()))
	for _, o := range result.Outliers() {
		if o == id {
			touched = true
			continue
		}
		outliers = append(outliers, o)
	}

	if !touched {
		return nil
	}

	if err := s.repo.SaveResult(ctx, domcluster.NewResult(clusters, outliers)); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// LastRunAt returns the timestamp of the most recent persisted clustering run.
func (s *Service) LastRunAt(ctx context.Context) (time.Time, error) {
	at, err := s.repo.LastRunAt(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("last run: %w", err)
	}
	return at, nil
}

// Regroup runs clustering over all stored items and persists the result.
// A non-positive threshold falls back to the configured default.
func (s *Service) Regroup(ctx context.Context, threshold float64) (domcluster.Result, error) {
	result, err := s.cluster(ctx, threshold)
	if err != nil {
		metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return domcluster.Result{}, err
	}

	if err := s.repo.SaveResult(ctx, result); err != nil {
		metrics.ClusteringRunsTotal.WithLabelValues("error").Inc()
		return domcluster.Result{}, fmt.Errorf("save result: %w", err)
	}

	metrics.ClusteringRunsTotal.WithLabelValues("success").Inc()
	metrics.ClusteringClusters.Set(float64(len(result.Clusters())))
	metrics.ClusteringOutliers.Set(float64(len(result.Outliers())))

	return result, nil
}

// Preview runs clustering over all stored items without persisting the result.
func (s *Service) Preview(ctx context.Context, threshold float64) (domcluster.Result, error) {
	return s.cluster(ctx, threshold)
}

func (s *Service) cluster(ctx context.Context, threshold float64) (domcluster.Result, error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domcluster.Result{}, fmt.Errorf("list items: %w", err)
	}

	start := time.Now()
	result, err := s.engine.Cluster(items, threshold)
	if err != nil {
		return domcluster.Result{}, fmt.Errorf("cluster: %w", err)
	}
	metrics.ClusteringRunDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("clustering run finished",
		zap.Float64("threshold", threshold),
		zap.Int("items", len(items)),
		zap.Int("clusters", len(result.Clusters())),
		zap.Int("outliers", len(result.Outliers())),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

// Latest returns the most recently persisted clustering result.
func (s *Service) Latest(ctx context.Context) (domcluster.Result, error) {
	result, err := s.repo.GetResult(ctx)
	if err != nil {
		return domcluster.Result{}, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// MergeClusters merges two clusters of the latest result into one and
// persists the updated result. Returns the merged cluster.
func (s *Service) MergeClusters(ctx context.Context, id1, id2 string) (domcluster.Cluster, error) {
	if id1 == id2 {
		return domcluster.Cluster{}, fmt.Errorf("cannot merge a cluster with itself: %w", domain.ErrInvalidArgument)
	}

	result, err := s.repo.GetResult(ctx)
	if err != nil {
		return domcluster.Cluster{}, fmt.Errorf("get result: %w", err)
	}

	c1, ok := result.ClusterByID(id1)
	if !ok {
		return domcluster.Cluster{}, fmt.Errorf("cluster %s: %w", id1, domain.ErrNotFound)
	}
	c2, ok := result.ClusterByID(id2)
	if !ok {
		return domcluster.Cluster{}, fmt.Errorf("cluster %s: %w", id2, domain.ErrNotFound)
	}

	pool, err := s.repo.ListItems(ctx)
	if err != nil {
		return domcluster.Cluster{}, fmt.Errorf("list items: %w", err)
	}

	merged, err := s.engine.Merge(c1, c2, pool)
	if err != nil {
		return domcluster.Cluster{}, fmt.Errorf("merge: %w", err)
	}

	clusters := make([]domcluster.Cluster, 0, len(result.Clusters())-1)
	for _, c := range result.Clusters() {
		if c.ID() == id1 || c.ID() == id2 {
			continue
		}
		clusters = append(clusters, c)
	}
	clusters = append(clusters, merged)
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].Size() > clusters[j].Size() })

	updated := domcluster.NewResult(clusters, result.Outliers())
	if err := s.repo.SaveResult(ctx, updated); err != nil {
		return domcluster.Cluster{}, fmt.Errorf("save result: %w", err)
	}

	s.logger.Info("clusters merged",
		zap.String("from", id1), zap.String("into", id2),
		zap.String("merged_id", merged.ID()), zap.Int("size", merged.Size()))

	return merged, nil
}

// Similar vectorizes the query text and returns the stored items most similar to it.
func (s *Service) Similar(
	ctx context.Context, text string, threshold float64, maxResults int,
) ([]clustering.Neighbor, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty: %w", domain.ErrEmptyInput)
	}
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	target, err := domitem.New(uuid.NewString(), text, res.Embedding)
	if err != nil {
		return nil, fmt.Errorf("build query item: %w", err)
	}

	pool, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	neighbors, err := s.engine.FindSimilar(target, pool, threshold, maxResults)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	return neighbors, nil
}

// SuggestThreshold estimates a clustering threshold from the stored items.
// The estimate is cached briefly and invalidated whenever the pool changes.
func (s *Service) SuggestThreshold(ctx context.Context) (float64, error) {
	if cached, err := s.repo.CachedThreshold(ctx); err == nil {
		return cached, nil
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	suggested, err := s.engine.SuggestThreshold(items)
	if err != nil {
		return 0, fmt.Errorf("suggest threshold: %w", err)
	}

	if err := s.repo.CacheThreshold(ctx, suggested); err != nil {
		s.logger.Warn("threshold caching failed", zap.Error(err))
	}
	return suggested, nil
}

// Evaluate computes quality metrics for the latest persisted clustering result.
func (s *Service) Evaluate(ctx context.Context) (clustering.Quality, error) {
	result, err := s.repo.GetResult(ctx)
	if err != nil {
		return clustering.Quality{}, fmt.Errorf("get result: %w", err)
	}

	pool, err := s.repo.ListItems(ctx)
	if err != nil {
		return clustering.Quality{}, fmt.Errorf("list items: %w", err)
	}

	quality, err := s.engine.Evaluate(result, pool)
	if err != nil {
		return clustering.Quality{}, fmt.Errorf("evaluate: %w", err)
	}
	return quality, nil
}

// ClusterTrend is the sentiment breakdown of one cluster in the latest result.
type ClusterTrend struct {
	ClusterID string  `json:"cluster_id"`
	Theme     string  `json:"theme"`
	Size      int     `json:"size"`
	Positive  int     `json:"positive"`
	Negative  int     `json:"negative"`
	Neutral   int     `json:"neutral"`
	Unscored  int     `json:"unscored"`
	AvgScore  float64 `json:"avg_score"`
}

// Trends returns the per-cluster sentiment distribution of the latest result,
// in cluster order (largest-first).
func (s *Service) Trends(ctx context.Context) ([]ClusterTrend, error) {
	result, err := s.repo.GetResult(ctx)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	pool, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	byID := make(map[string]domitem.Item, len(pool))
	for _, it := range pool {
		byID[it.ID()] = it
	}

	clusters := result.Clusters()
	trends := make([]ClusterTrend, 0, len(clusters))
	for _, c := range clusters {
		trend := ClusterTrend{ClusterID: c.ID(), Theme: c.Theme(), Size: c.Size()}
		var scoreSum float64
		var scored int

		for _, id := range c.MemberIDs() {
			it, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("member %s of cluster %s: %w", id, c.ID(), domain.ErrMissingMember)
			}
			sent, has := it.Sentiment()
			if !has {
				trend.Unscored++
				continue
			}
			scored++
			scoreSum += sent.Score
			switch sent.Label {
			case domain.SentimentPositive:
				trend.Positive++
			case domain.SentimentNegative:
				trend.Negative++
			case domain.SentimentNeutral:
				trend.Neutral++
			}
		}

		if scored > 0 {
			trend.AvgScore = scoreSum / float64(scored)
		}
		trends = append(trends, trend)
	}

	return trends, nil
}

// Analyze produces a structured breakdown of a single feedback text.
func (s *Service) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Analysis{}, fmt.Errorf("text is empty: %w", domain.ErrEmptyInput)
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return analysis, nil
}
