package ai

import (
	"context"
	"fmt"

	"natgpt/internal/model/conversation"
	"natgpt/internal/service"
)

// MockClient answers without a model. Used when no API key is configured.
type MockClient struct{}

// NewMockClient creates the mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GenerateResponse echoes the prompt.
func (m *MockClient) GenerateResponse(ctx context.Context, prompt string, history []conversation.Message, opts service.GenerateOptions) (string, error) {
	reply := fmt.Sprintf("This is a mock response to: %q.", prompt)
	if len(history) > 1 {
		reply += fmt.Sprintf(" I can see %d earlier messages.", len(history)-1)
	}
	return reply, nil
}

// IsAvailable always true.
func (m *MockClient) IsAvailable(ctx context.Context) bool { return true }

// MaxTokens returns DefaultMaxTokens.
func (m *MockClient) MaxTokens() int { return DefaultMaxTokens }

// EstimateTokens see the package-level EstimateTokens.
func (m *MockClient) EstimateTokens(text string) int { return EstimateTokens(text) }
