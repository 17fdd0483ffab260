package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	"natgpt/internal/ai/chain"
	"natgpt/internal/ai/component"
	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
	"natgpt/internal/service"
)

// Client is the eino-backed AIService.
type Client struct {
	cfg       *config.AIConfig
	chatChain *ChatChain
	titles    *chain.TitleChain
}

// NewClient builds the chat model for cfg.Provider and wraps it.
func NewClient(ctx context.Context, cfg *config.AIConfig, titleMaxLength int) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewClientWithModel(cfg, chatModel, titleMaxLength), nil
}

// NewClientWithModel wraps an existing chat model.
func NewClientWithModel(cfg *config.AIConfig, chatModel model.BaseChatModel, titleMaxLength int) *Client {
	return &Client{
		cfg:       cfg,
		chatChain: NewChatChain(chatModel, cfg.SystemPrompt),
		titles:    chain.NewTitleChain(chatModel, titleMaxLength),
	}
}

// GenerateResponse runs the chat chain over history.
func (c *Client) GenerateResponse(ctx context.Context, prompt string, history []conversation.Message, opts service.GenerateOptions) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.chatChain.Run(ctx, history, opts.Model)
	if err != nil {
		return "", err
	}

	logger := log.Debug().
		Str("provider", c.cfg.Provider).
		Int("history", len(history)).
		Int("prompt_tokens_est", c.EstimateTokens(prompt))
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		logger = logger.
			Int("prompt_tokens", resp.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", resp.ResponseMeta.Usage.CompletionTokens)
	}
	logger.Msg("chat completed")

	return resp.Content, nil
}

// GenerateTitle asks the model for a conversation title.
func (c *Client) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	title, err := c.titles.Run(ctx, firstMessage)
	return title, classify(err)
}

// IsAvailable reports whether credentials are configured.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.cfg.APIKey != ""
}

// MaxTokens returns the configured completion limit.
func (c *Client) MaxTokens() int {
	if c.cfg.Options.MaxTokens > 0 {
		return c.cfg.Options.MaxTokens
	}
	return DefaultMaxTokens
}

// EstimateTokens see the package-level EstimateTokens.
func (c *Client) EstimateTokens(text string) int {
	return EstimateTokens(text)
}
