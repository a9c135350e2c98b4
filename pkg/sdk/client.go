package feedbackflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/objones25/FeedbackFlow/internal/db"
	dbRedis "github.com/objones25/FeedbackFlow/internal/db/redis"
	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	feedbackrepo "github.com/objones25/FeedbackFlow/internal/repository/feedback"
	openaiTransport "github.com/objones25/FeedbackFlow/internal/transport/openai"
	"github.com/objones25/FeedbackFlow/internal/usecase/clustering"
	feedbackuc "github.com/objones25/FeedbackFlow/internal/usecase/feedback"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "feedbackflow:"
	defaultMaxResults       = 10

	defaultEmbeddingModel = "text-embedding-3-small"
	defaultChatModel      = "gpt-4o-mini"
)

// Внутренний интерфейс для подмены в тестах.
type feedbackUseCase interface {
	Ingest(ctx context.Context, texts []string) ([]domitem.Item, error)
	Regroup(ctx context.Context, threshold float64) (domcluster.Result, error)
	Preview(ctx context.Context, threshold float64) (domcluster.Result, error)
	Latest(ctx context.Context) (domcluster.Result, error)
	MergeClusters(ctx context.Context, id1, id2 string) (domcluster.Cluster, error)
	Similar(ctx context.Context, text string, threshold float64, maxResults int) ([]clustering.Neighbor, error)
	SuggestThreshold(ctx context.Context) (float64, error)
	Evaluate(ctx context.Context) (clustering.Quality, error)
	Trends(ctx context.Context) ([]feedbackuc.ClusterTrend, error)
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

// Client is the FeedbackFlow SDK entry point.
type Client struct {
	store   db.Store
	feedSvc feedbackUseCase
	obs     *observer
}

// New creates a FeedbackFlow Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("feedbackflow: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("feedbackflow: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("feedbackflow: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := feedbackrepo.New(store, cfg.keyPrefix)

	engine := clustering.New()
	if cfg.maxItems > 0 || cfg.maxClusters > 0 || cfg.minClusterSize > 0 {
		engine = engine.WithLimits(clustering.Limits{
			MaxItems:       cfg.maxItems,
			MaxClusters:    cfg.maxClusters,
			MinClusterSize: cfg.minClusterSize,
		})
	}

	// Провайдеры noop если не заданы: read-only операции работают,
	// Ingest/Similar/Analyze вернут ошибку.
	var domEmb feedbackuc.Embedder = noopEmbedder{}
	var domBatch feedbackuc.BatchEmbedder = noopBatchEmbedder{}
	var domSent feedbackuc.SentimentScorer = noopSentimentScorer{}
	var domAn feedbackuc.Analyzer = noopAnalyzer{}

	if cfg.openaiKey != "" {
		embCfg := &openaiTransport.Config{
			APIKey:  cfg.openaiKey,
			BaseURL: cfg.openaiBaseURL,
			Model:   defaultEmbeddingModel,
			Logger:  zap.NewNop(),
		}
		chatCfg := &openaiTransport.Config{
			APIKey:  cfg.openaiKey,
			BaseURL: cfg.openaiBaseURL,
			Model:   defaultChatModel,
			Logger:  zap.NewNop(),
		}
		emb := openaiTransport.NewEmbedder(embCfg)
		domEmb, domBatch = emb, emb
		domSent = openaiTransport.NewSentimentScorer(chatCfg)
		domAn = openaiTransport.NewAnalyzer(chatCfg)
	}

	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
		domBatch = &batchAdapter{inner: cfg.embedder}
	}
	if cfg.sentiment != nil {
		domSent = &sentimentAdapter{inner: cfg.sentiment}
	}
	if cfg.analyzer != nil {
		domAn = &analyzerAdapter{inner: cfg.analyzer}
	}

	svc := feedbackuc.New(repo, domBatch, domEmb, domSent, domAn, engine, zap.NewNop())
	if cfg.defaultThreshold > 0 {
		svc = svc.WithDefaultThreshold(cfg.defaultThreshold)
	}

	return &Client{store: store, feedSvc: svc, obs: obs}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest splits raw feedback texts into sentences, vectorizes and scores
// them, and persists the resulting items.
func (c *Client) Ingest(ctx context.Context, texts []string) (_ []Item, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	items, err := c.feedSvc.Ingest(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, fromInternalItem(it))
	}
	return out, nil
}

// Run reclusters all stored items at the given threshold and persists the
// result. A threshold of 0 uses the configured default.
func (c *Client) Run(ctx context.Context, threshold float64) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("run", start, err) }()

	res, err := c.feedSvc.Regroup(ctx, threshold)
	if err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}
	return fromInternalResult(res), nil
}

// Preview clusters all stored items at the given threshold without
// persisting the result.
func (c *Client) Preview(ctx context.Context, threshold float64) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err) }()

	res, err := c.feedSvc.Preview(ctx, threshold)
	if err != nil {
		return Result{}, fmt.Errorf("preview: %w", err)
	}
	return fromInternalResult(res), nil
}

// Clusters returns the latest persisted clustering result.
func (c *Client) Clusters(ctx context.Context) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("clusters", start, err) }()

	res, err := c.feedSvc.Latest(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("clusters: %w", err)
	}
	return fromInternalResult(res), nil
}

// Merge combines two clusters of the latest result into one and persists
// the updated result.
func (c *Client) Merge(ctx context.Context, id1, id2 string) (_ Cluster, err error) {
	start := time.Now()
	defer func() { c.obs.observe("merge", start, err) }()

	merged, err := c.feedSvc.MergeClusters(ctx, id1, id2)
	if err != nil {
		return Cluster{}, fmt.Errorf("merge: %w", err)
	}
	return fromInternalCluster(merged), nil
}

// Similar returns stored items similar to the query text, most similar
// first. Zero threshold uses the configured default; zero maxResults
// defaults to 10.
func (c *Client) Similar(
	ctx context.Context, text string, threshold float64, maxResults int,
) (_ []Neighbor, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	neighbors, err := c.feedSvc.Similar(ctx, text, threshold, maxResults)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := make([]Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, Neighbor{
			ID:         n.Item.ID(),
			Text:       n.Item.Text(),
			Similarity: n.Similarity,
		})
	}
	return out, nil
}

// SuggestThreshold estimates a clustering threshold from the stored items.
func (c *Client) SuggestThreshold(ctx context.Context) (_ float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest_threshold", start, err) }()

	t, err := c.feedSvc.SuggestThreshold(ctx)
	if err != nil {
		return 0, fmt.Errorf("suggest threshold: %w", err)
	}
	return t, nil
}

// Quality evaluates the latest persisted result against the stored items.
func (c *Client) Quality(ctx context.Context) (_ Quality, err error) {
	start := time.Now()
	defer func() { c.obs.observe("quality", start, err) }()

	q, err := c.feedSvc.Evaluate(ctx)
	if err != nil {
		return Quality{}, fmt.Errorf("quality: %w", err)
	}
	return Quality{
		SilhouetteScore:      q.SilhouetteScore,
		IntraClusterDistance: q.IntraClusterDistance,
		InterClusterDistance: q.InterClusterDistance,
		ClusterSizes:         q.ClusterSizes,
	}, nil
}

// Trends returns the per-cluster sentiment breakdown of the latest result.
func (c *Client) Trends(ctx context.Context) (_ []Trend, err error) {
	start := time.Now()
	defer func() { c.obs.observe("trends", start, err) }()

	trends, err := c.feedSvc.Trends(ctx)
	if err != nil {
		return nil, fmt.Errorf("trends: %w", err)
	}
	out := make([]Trend, 0, len(trends))
	for _, t := range trends {
		out = append(out, fromInternalTrend(t))
	}
	return out, nil
}

// Analyze produces a structured breakdown of a single feedback text.
func (c *Client) Analyze(ctx context.Context, text string) (_ Analysis, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analyze", start, err) }()

	a, err := c.feedSvc.Analyze(ctx, text)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return fromInternalAnalysis(a), nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// batchAdapter uses the provider's native batch call when it has one and
// falls back to per-text Embed otherwise.
type batchAdapter struct {
	inner Embedder
}

func (a *batchAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(BatchEmbedder); ok {
		r, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return domain.BatchEmbeddingResult{
			Embeddings:   r.Embeddings,
			PromptTokens: r.PromptTokens,
			TotalTokens:  r.TotalTokens,
		}, nil
	}
	return domain.BatchFallback(ctx, &embedderAdapter{inner: a.inner}, texts)
}

type sentimentAdapter struct {
	inner SentimentScorer
}

func (a *sentimentAdapter) Score(ctx context.Context, text string) (domain.Sentiment, error) {
	s, err := a.inner.Score(ctx, text)
	if err != nil {
		return domain.Sentiment{}, fmt.Errorf("score: %w", err)
	}
	return domain.Sentiment{
		Label:      domain.SentimentLabel(s.Label),
		Score:      s.Score,
		Confidence: s.Confidence,
	}, nil
}

type analyzerAdapter struct {
	inner Analyzer
}

func (a *analyzerAdapter) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	r, err := a.inner.Analyze(ctx, text)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return domain.Analysis{
		Category:    r.Category,
		Urgency:     r.Urgency,
		Themes:      r.Themes,
		ActionItems: r.ActionItems,
	}, nil
}

// noopEmbedder returns an error on Embed (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"feedbackflow: embedder not configured (use WithEmbedder)",
	)
}

type noopBatchEmbedder struct{}

func (noopBatchEmbedder) BatchEmbed(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, errors.New(
		"feedbackflow: embedder not configured (use WithEmbedder)",
	)
}

type noopSentimentScorer struct{}

func (noopSentimentScorer) Score(_ context.Context, _ string) (domain.Sentiment, error) {
	return domain.Sentiment{}, errors.New(
		"feedbackflow: sentiment scorer not configured (use WithSentimentScorer)",
	)
}

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(_ context.Context, _ string) (domain.Analysis, error) {
	return domain.Analysis{}, errors.New(
		"feedbackflow: analyzer not configured (use WithAnalyzer)",
	)
}
