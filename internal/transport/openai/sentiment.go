package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/objones25/FeedbackFlow/internal/domain"
	"github.com/objones25/FeedbackFlow/internal/metrics"
)

const sentimentSystemPrompt = `You are a sentiment classifier for product feedback.
Classify the sentiment of the user message and respond with a single JSON object:
{"label":"positive|negative|neutral","score":<float -1..1>,"confidence":<float 0..1>}
Respond with JSON only, no prose.`

// SentimentScorer classifies feedback polarity via a chat completion model.
type SentimentScorer struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// NewSentimentScorer creates a chat-based sentiment classifier.
func NewSentimentScorer(cfg *Config) *SentimentScorer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &SentimentScorer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

type sentimentDTO struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Score implements domain.SentimentScorer.
func (s *SentimentScorer) Score(ctx context.Context, text string) (domain.Sentiment, error) {
	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		User:        s.user,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues("sentiment", s.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("sentiment", s.model, "api_error").Inc()
		return domain.Sentiment{}, parseAPIError("sentiment", err)
	}

	if len(resp.Choices) == 0 {
		metrics.InferenceRequestsTotal.WithLabelValues("sentiment", s.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("sentiment", s.model, "empty_response").Inc()
		return domain.Sentiment{}, fmt.Errorf("empty sentiment response: %w", domain.ErrProviderError)
	}

	var dto sentimentDTO
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &dto); err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues("sentiment", s.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("sentiment", s.model, "parse_error").Inc()
		return domain.Sentiment{}, fmt.Errorf("parse sentiment response: %v: %w", err, domain.ErrProviderError)
	}

	result := domain.Sentiment{
		Label:      domain.SentimentLabel(dto.Label),
		Score:      clampRange(dto.Score, -1, 1),
		Confidence: clampRange(dto.Confidence, 0, 1),
	}
	if !result.Label.Valid() {
		metrics.InferenceRequestsTotal.WithLabelValues("sentiment", s.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("sentiment", s.model, "invalid_label").Inc()
		return domain.Sentiment{}, fmt.Errorf("invalid sentiment label %q: %w", dto.Label, domain.ErrProviderError)
	}

	metrics.InferenceRequestsTotal.WithLabelValues("sentiment", s.model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues("sentiment", s.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.InferenceTokensTotal.WithLabelValues("sentiment", s.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.InferenceTokensTotal.WithLabelValues("sentiment", s.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return result, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *SentimentScorer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
