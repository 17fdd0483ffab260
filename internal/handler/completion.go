package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"natgpt/internal/ai"
	"natgpt/internal/model/conversation"
	"natgpt/internal/service"
)

// TitleGenerator produces a title for a conversation's first message.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, firstMessage string) (string, error)
}

// CompletionHandler serves /chat, the completion endpoint consumed by remote AIService clients.
type CompletionHandler struct {
	ai        service.AIService
	policy    service.ConversationPolicy
	retry     ai.RetryPolicy
	maxLength int
}

// NewCompletionHandler creates the handler.
func NewCompletionHandler(aiSvc service.AIService, policy service.ConversationPolicy, retry ai.RetryPolicy, maxLength int) *CompletionHandler {
	if maxLength <= 0 {
		maxLength = service.DefaultMaxMessageLength
	}
	return &CompletionHandler{ai: aiSvc, policy: policy, retry: retry, maxLength: maxLength}
}

// Status reports whether completions can be served
// @Summary      Completion availability
// @Tags         chat
// @Produce      json
// @Success      200  {object}  map[string]bool  "{\"ok\": true}"
// @Router       /api/v1/chat [get]
func (h *CompletionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": h.ai.IsAvailable(c.Request.Context())})
}

// Complete generates a reply for prompt and context
// @Summary      Chat completion
// @Description  Rate-limited upstream calls are retried with exponential backoff, at most 3 attempts (2s, then 4s).
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      ai.CompletionRequest   true  "Prompt and context"
// @Success      200      {object}  ai.CompletionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      429      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/v1/chat [post]
func (h *CompletionHandler) Complete(c *gin.Context) {
	var req ai.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Prompt is required")
		return
	}
	if utf8.RuneCountInString(req.Prompt) > h.maxLength {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Prompt is too long")
		return
	}

	history, err := toHistory(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid context", err.Error())
		return
	}
	if h.policy != nil {
		history = h.policy.TrimConversationIfNeeded(history)
	}

	ctx := c.Request.Context()
	if !h.ai.IsAvailable(ctx) {
		respondError(c, http.StatusServiceUnavailable, CodeUnavailable, "AI service is not available")
		return
	}

	var text string
	err = h.retry.Do(ctx, func(ctx context.Context) error {
		var genErr error
		text, genErr = h.ai.GenerateResponse(ctx, req.Prompt, history, service.GenerateOptions{
			Model:          req.Model,
			IsFirstMessage: req.IsFirstMessage,
		})
		return genErr
	})
	if err != nil {
		log.Error().Err(err).Int("prompt_length", utf8.RuneCountInString(req.Prompt)).Msg("completion failed")
		if ai.IsRateLimited(err) {
			respondError(c, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded. Please try again later.")
			return
		}
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate response")
		return
	}
	if strings.TrimSpace(text) == "" {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate response")
		return
	}

	resp := ai.CompletionResponse{Text: text}
	if req.IsFirstMessage {
		resp.Title = h.title(ctx, req.Prompt)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompletionHandler) title(ctx context.Context, prompt string) string {
	if tg, ok := h.ai.(TitleGenerator); ok {
		title, err := tg.GenerateTitle(ctx, prompt)
		if err == nil && title != "" {
			return title
		}
		if err != nil {
			log.Warn().Err(err).Msg("title generation failed, using heuristic")
		}
	}
	if h.policy != nil {
		return h.policy.GenerateTitle(prompt)
	}
	return conversation.DefaultTitle
}

// toHistory converts the wire context; the prompt is appended when context does not end with it.
func toHistory(req ai.CompletionRequest) ([]conversation.Message, error) {
	history := make([]conversation.Message, 0, len(req.Context)+1)
	for _, m := range req.Context {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role, err := conversation.ParseMessageRole(m.Role)
		if err != nil {
			return nil, err
		}
		msg, err := conversation.NewMessage(conversation.GenerateMessageID(), m.Content, role, time.Time{})
		if err != nil {
			return nil, err
		}
		history = append(history, msg)
	}

	if n := len(history); n == 0 || !history[n-1].IsFromUser() || history[n-1].Content() != strings.TrimSpace(req.Prompt) {
		msg, err := conversation.NewUserMessage(req.Prompt)
		if err != nil {
			return nil, err
		}
		history = append(history, msg)
	}
	return history, nil
}
