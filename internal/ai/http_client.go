package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
	"natgpt/internal/service"
)

// CompletionMessage one context entry on the completion wire format.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest POST body of the completion endpoint.
type CompletionRequest struct {
	Prompt         string              `json:"prompt"`
	Context        []CompletionMessage `json:"context"`
	Model          string              `json:"model,omitempty"`
	IsFirstMessage bool                `json:"isFirstMessage,omitempty"`
}

// CompletionResponse successful reply of the completion endpoint.
type CompletionResponse struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

type statusResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient is an AIService calling a remote completion endpoint.
type HTTPClient struct {
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

// NewHTTPClient creates a client for cfg.Endpoint.
func NewHTTPClient(cfg *config.AIConfig) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: ai.endpoint is required for the http provider", ErrNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		maxTokens:  cfg.Options.MaxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ToCompletionMessages converts domain messages to the wire format.
func ToCompletionMessages(history []conversation.Message) []CompletionMessage {
	out := make([]CompletionMessage, 0, len(history))
	for _, m := range history {
		out = append(out, CompletionMessage{Role: m.Role().String(), Content: m.Content()})
	}
	return out
}

// GenerateResponse posts the prompt and history.
func (c *HTTPClient) GenerateResponse(ctx context.Context, prompt string, history []conversation.Message, opts service.GenerateOptions) (string, error) {
	resp, err := c.Complete(ctx, &CompletionRequest{
		Prompt:         prompt,
		Context:        ToCompletionMessages(history),
		Model:          opts.Model,
		IsFirstMessage: opts.IsFirstMessage,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Complete performs one POST to the endpoint.
func (c *HTTPClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, upstreamError(respBody, httpResp.Status))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion endpoint returned %d: %s", httpResp.StatusCode, upstreamError(respBody, httpResp.Status))
	}

	var out CompletionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	return &out, nil
}

// IsAvailable probes the endpoint with GET.
func (c *HTTPClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false
	}
	return status.OK
}

// MaxTokens returns the configured completion limit.
func (c *HTTPClient) MaxTokens() int {
	if c.maxTokens > 0 {
		return c.maxTokens
	}
	return DefaultMaxTokens
}

// EstimateTokens see the package-level EstimateTokens.
func (c *HTTPClient) EstimateTokens(text string) int {
	return EstimateTokens(text)
}

func upstreamError(body []byte, status string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return status
}

// IsRateLimited reports whether err came from a 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
