package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/osintlab/intelgraph/internal/model"
)

// Client talks to an OpenAI-compatible chat endpoint and implements
// Extractor, BiasClassifier, and NLIClassifier. All calls share one
// rate limiter so a worker pool cannot exceed the provider quota.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewClient creates a client from config. An empty API key is an
// error here; callers that want heuristic-only operation should not
// construct a client at all.
func NewClient(cfg model.LLMConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     mdl,
		maxTokens: maxTokens,
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		logger:    logger.With("component", "llm"),
	}, nil
}

// Extract implements Extractor
func (c *Client) Extract(ctx context.Context, text string) (*Extraction, error) {
	raw, err := c.complete(ctx, extractSystemPrompt, fmt.Sprintf(extractPrompt, text), 0.3)
	if err != nil {
		return nil, err
	}

	var out Extraction
	if err := decodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}
	return &out, nil
}

// ClassifyBias implements BiasClassifier
func (c *Client) ClassifyBias(ctx context.Context, text string) (*BiasVerdict, error) {
	raw, err := c.complete(ctx, biasSystemPrompt, fmt.Sprintf(biasPrompt, text), 0.2)
	if err != nil {
		return nil, err
	}

	var out BiasVerdict
	if err := decodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("bias classification: %w", err)
	}
	out.Score = model.ClampConfidence(out.Score)
	return &out, nil
}

// Compare implements NLIClassifier
func (c *Client) Compare(ctx context.Context, a, b string) (*NLIVerdict, error) {
	raw, err := c.complete(ctx, nliSystemPrompt, fmt.Sprintf(nliPrompt, a, b), 0.2)
	if err != nil {
		return nil, err
	}

	var out NLIVerdict
	if err := decodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("nli comparison: %w", err)
	}
	out.Label = strings.ToLower(strings.TrimSpace(out.Label))
	out.Confidence = model.ClampConfidence(out.Confidence)
	return &out, nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	c.logger.Debug("completion",
		"model", c.model,
		"tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
