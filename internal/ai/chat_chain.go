package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"natgpt/internal/model/conversation"
)

// DefaultSystemPrompt is prepended to every completion unless overridden in config.
const DefaultSystemPrompt = "You are a helpful assistant. Answer clearly and concisely."

// ChatChain turns a conversation history into a chat model call.
type ChatChain struct {
	chatModel    model.BaseChatModel
	systemPrompt string
}

// NewChatChain creates the chain. An empty systemPrompt uses DefaultSystemPrompt.
func NewChatChain(chatModel model.BaseChatModel, systemPrompt string) *ChatChain {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ChatChain{chatModel: chatModel, systemPrompt: systemPrompt}
}

// Run generates the assistant reply for history. modelName overrides the configured model.
func (c *ChatChain) Run(ctx context.Context, history []conversation.Message, modelName string) (*schema.Message, error) {
	var opts []model.Option
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}
	resp, err := c.chatModel.Generate(ctx, c.buildMessages(history), opts...)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

func (c *ChatChain) buildMessages(history []conversation.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(c.systemPrompt))
	for _, m := range history {
		switch m.Role() {
		case conversation.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content(), nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content()))
		}
	}
	return messages
}
