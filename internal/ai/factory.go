package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"natgpt/internal/config"
	"natgpt/internal/service"
)

// New returns the AIService for cfg.Provider. Model providers without an API key fall
// back to the mock.
func New(ctx context.Context, cfg *config.AIConfig, titleMaxLength int) (service.AIService, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockClient(), nil
	case "http":
		return NewHTTPClient(cfg)
	case "", "openai", "azure", "ark":
		if cfg.APIKey == "" {
			log.Warn().Str("provider", cfg.Provider).Msg("AI API key not configured, using mock mode")
			return NewMockClient(), nil
		}
		client, err := NewClient(ctx, cfg, titleMaxLength)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
