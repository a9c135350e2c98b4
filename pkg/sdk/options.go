package feedbackflow

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder  Embedder
	sentiment SentimentScorer
	analyzer  Analyzer

	openaiKey     string
	openaiBaseURL string

	maxItems         int
	maxClusters      int
	minClusterSize   int
	defaultThreshold float64
	keyPrefix        string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI wires the bundled OpenAI providers for embeddings, sentiment
// and analysis in one call. An empty baseURL targets api.openai.com.
// Explicit WithEmbedder/WithSentimentScorer/WithAnalyzer override the
// corresponding bundled provider.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiKey = apiKey
		c.openaiBaseURL = baseURL
	})
}

// WithEmbedder sets the text embedding provider.
// Required for Ingest and Similar; stored results remain readable without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithSentimentScorer sets the sentiment provider used during ingestion.
// Optional: without it items are stored unscored and trend breakdowns
// report them as such.
func WithSentimentScorer(s SentimentScorer) Option {
	return optionFunc(func(c *clientConfig) {
		c.sentiment = s
	})
}

// WithAnalyzer sets the provider behind Analyze.
// Optional: without it Analyze returns an error.
func WithAnalyzer(a Analyzer) Option {
	return optionFunc(func(c *clientConfig) {
		c.analyzer = a
	})
}

// WithClusterLimits overrides the clustering run limits.
// Zero values keep the defaults (10000 items, 50 clusters, min size 2).
func WithClusterLimits(maxItems, maxClusters, minClusterSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxItems = maxItems
		c.maxClusters = maxClusters
		c.minClusterSize = minClusterSize
	})
}

// WithDefaultThreshold sets the similarity threshold used when a call
// passes none. Default: 0.3.
func WithDefaultThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultThreshold = t
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "feedbackflow:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
