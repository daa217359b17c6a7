// Package anthropic implements the remote chat strategy on top of the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// ClientConfig contains configuration for the completion client.
type ClientConfig struct {
	// APIKey authenticates against the API.
	APIKey string

	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string

	// Model is the model name sent with every request.
	Model string

	// MaxTokens caps the reply length.
	MaxTokens int64

	// Timeout is the HTTP request timeout. Zero sets none.
	Timeout time.Duration

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:    apiKey,
		Model:     DefaultModel,
		MaxTokens: 512,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client sends a system prompt and one user turn and returns the text reply.
type Client struct {
	api    sdk.Client
	config ClientConfig
	log    *logger.Logger
}

// NewClient creates a completion client. SDK retries are disabled; the
// caller's circuit breaker decides when to stop calling.
func NewClient(config ClientConfig) *Client {
	defaults := DefaultClientConfig(config.APIKey)
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaults.MaxTokens
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Client{
		api:    sdk.NewClient(opts...),
		config: config,
		log:    config.Logger.With(logger.Component("anthropic"), logger.String("model", config.Model)),
	}
}

// Complete returns the concatenated text blocks of the reply.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()

	msg, err := c.api.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		fields := []logger.Field{logger.Latency(time.Since(start)), logger.Err(err)}
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			fields = append(fields, logger.Int("status", apiErr.StatusCode))
		}
		c.log.Warn("completion request failed", fields...)
		return "", shared.WrapError("chat", "Complete", shared.ErrExternalService, "completion request failed", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", shared.WrapError("chat", "Complete", shared.ErrExternalService, "completion returned no text", nil)
	}

	c.log.Debug("completion received", logger.Latency(time.Since(start)), logger.Int("chars", len(text)))
	return text, nil
}
