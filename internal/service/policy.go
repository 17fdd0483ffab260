package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-ego/gse"

	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
)

const (
	DefaultMaxMessages     = 200
	DefaultContextMessages = 50
	DefaultArchiveAfter    = 30 * 24 * time.Hour
	DefaultTitleMaxLength  = 50
)

// Segmenter splits text into word tokens whose concatenation is the input.
// *gse.Segmenter satisfies it.
type Segmenter interface {
	Cut(str string, hmm ...bool) []string
}

// LoadSegmenter loads the gse dictionary used for CJK-aware titles.
func LoadSegmenter() (*gse.Segmenter, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, err
	}
	return &seg, nil
}

// DefaultPolicy is the configurable ConversationPolicy.
type DefaultPolicy struct {
	maxMessages     int
	contextMessages int
	archiveAfter    time.Duration
	titleMaxLength  int
	segmenter       Segmenter
	now             func() time.Time
}

// NewDefaultPolicy builds a policy from cfg; zero values fall back to defaults.
// seg may be nil, in which case titles are cut on whitespace.
func NewDefaultPolicy(cfg config.ChatConfig, seg Segmenter) *DefaultPolicy {
	p := &DefaultPolicy{
		maxMessages:     cfg.MaxMessages,
		contextMessages: cfg.ContextMessages,
		archiveAfter:    cfg.ArchiveAfter,
		titleMaxLength:  cfg.TitleMaxLength,
		segmenter:       seg,
		now:             time.Now,
	}
	if p.maxMessages <= 0 {
		p.maxMessages = DefaultMaxMessages
	}
	if p.contextMessages <= 0 {
		p.contextMessages = DefaultContextMessages
	}
	if p.archiveAfter <= 0 {
		p.archiveAfter = DefaultArchiveAfter
	}
	if p.titleMaxLength <= 0 {
		p.titleMaxLength = DefaultTitleMaxLength
	}
	return p
}

// GenerateTitle derives a title from the first user message, cut on word boundaries.
func (p *DefaultPolicy) GenerateTitle(firstMessage string) string {
	text := strings.Join(strings.Fields(firstMessage), " ")
	if text == "" {
		return conversation.DefaultTitle
	}
	if utf8.RuneCountInString(text) <= p.titleMaxLength {
		return text
	}

	var words []string
	if p.segmenter != nil {
		words = p.segmenter.Cut(text, true)
	} else {
		for i, w := range strings.Fields(text) {
			if i > 0 {
				words = append(words, " ")
			}
			words = append(words, w)
		}
	}

	var b strings.Builder
	n := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if n+wl > p.titleMaxLength {
			break
		}
		b.WriteString(w)
		n += wl
	}

	title := strings.TrimSpace(b.String())
	if title == "" {
		// a single word longer than the limit
		title = string([]rune(text)[:p.titleMaxLength])
	}
	return title + "..."
}

// ShouldArchive reports whether conv has been idle longer than the archive threshold.
func (p *DefaultPolicy) ShouldArchive(conv *conversation.Conversation) bool {
	return p.now().Sub(conv.UpdatedAt()) > p.archiveAfter
}

// MaxMessageLimit returns the maximum number of messages per conversation.
func (p *DefaultPolicy) MaxMessageLimit() int {
	return p.maxMessages
}

// CanAddMessage reports whether another message fits.
func (p *DefaultPolicy) CanAddMessage(conv *conversation.Conversation) bool {
	return conv.MessageCount() < p.maxMessages
}

// TrimConversationIfNeeded keeps the most recent context messages.
func (p *DefaultPolicy) TrimConversationIfNeeded(messages []conversation.Message) []conversation.Message {
	if len(messages) <= p.contextMessages {
		return messages
	}
	out := make([]conversation.Message, p.contextMessages)
	copy(out, messages[len(messages)-p.contextMessages:])
	return out
}
