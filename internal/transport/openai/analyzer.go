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

const analyzerSystemPrompt = `You are a product feedback analyst.
Break down the user message and respond with a single JSON object:
{"category":"<short category>","urgency":"low|medium|high","themes":["..."],"action_items":["..."]}
Respond with JSON only, no prose.`

// Analyzer produces structured feedback analyses via a chat completion model.
type Analyzer struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// NewAnalyzer creates a chat-based feedback analyzer.
func NewAnalyzer(cfg *Config) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

type analysisDTO struct {
	Category    string   `json:"category"`
	Urgency     string   `json:"urgency"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
}

// Analyze implements domain.Analyzer.
func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	start := time.Now()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		User:        a.user,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues("analysis", a.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("analysis", a.model, "api_error").Inc()
		return domain.Analysis{}, parseAPIError("analysis", err)
	}

	if len(resp.Choices) == 0 {
		metrics.InferenceRequestsTotal.WithLabelValues("analysis", a.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("analysis", a.model, "empty_response").Inc()
		return domain.Analysis{}, fmt.Errorf("empty analysis response: %w", domain.ErrProviderError)
	}

	var dto analysisDTO
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &dto); err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues("analysis", a.model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues("analysis", a.model, "parse_error").Inc()
		return domain.Analysis{}, fmt.Errorf("parse analysis response: %v: %w", err, domain.ErrProviderError)
	}

	switch dto.Urgency {
	case "low", "medium", "high":
	default:
		dto.Urgency = "medium"
	}

	metrics.InferenceRequestsTotal.WithLabelValues("analysis", a.model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues("analysis", a.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.InferenceTokensTotal.WithLabelValues("analysis", a.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.InferenceTokensTotal.WithLabelValues("analysis", a.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.Analysis{
		Category:    dto.Category,
		Urgency:     dto.Urgency,
		Themes:      dto.Themes,
		ActionItems: dto.ActionItems,
	}, nil
}
