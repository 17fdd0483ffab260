package chain

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const titleSystemPrompt = "You write short conversation titles. Reply with a title of at most six words " +
	"summarising the user's message. No quotes, no trailing punctuation."

// TitleChain asks the chat model for a conversation title.
// Flow: first user message -> title prompt -> ChatModel -> cleaned title
type TitleChain struct {
	chatModel model.BaseChatModel
	maxLength int
}

// NewTitleChain creates the chain; titles longer than maxLength runes are cut.
func NewTitleChain(chatModel model.BaseChatModel, maxLength int) *TitleChain {
	if maxLength <= 0 {
		maxLength = 50
	}
	return &TitleChain{chatModel: chatModel, maxLength: maxLength}
}

// Run returns a title for firstMessage, or "" when the model produced nothing usable.
func (c *TitleChain) Run(ctx context.Context, firstMessage string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(titleSystemPrompt),
		schema.UserMessage(firstMessage),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return cleanTitle(resp.Content, c.maxLength), nil
}

func cleanTitle(raw string, maxLength int) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.Trim(title, "\"'` ")
	title = strings.TrimRight(title, ".!?:;")
	title = strings.Join(strings.Fields(title), " ")

	if r := []rune(title); len(r) > maxLength {
		title = strings.TrimSpace(string(r[:maxLength]))
	}
	return title
}
