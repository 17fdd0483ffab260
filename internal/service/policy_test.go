package service

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
)

// splits on every rune, like a segmenter would for unspaced text
type runeSegmenter struct{}

func (runeSegmenter) Cut(str string, _ ...bool) []string {
	out := make([]string, 0, len(str))
	for _, r := range str {
		out = append(out, string(r))
	}
	return out
}

func TestDefaultPolicy(t *testing.T) {
	Convey("DefaultPolicy", t, func() {
		p := NewDefaultPolicy(config.ChatConfig{}, nil)

		Convey("applies defaults", func() {
			So(p.MaxMessageLimit(), ShouldEqual, DefaultMaxMessages)
		})

		Convey("GenerateTitle", func() {
			So(p.GenerateTitle("  hello   world "), ShouldEqual, "hello world")
			So(p.GenerateTitle("   "), ShouldEqual, conversation.DefaultTitle)

			long := strings.Repeat("word ", 20)
			title := p.GenerateTitle(long)
			So(strings.HasSuffix(title, "..."), ShouldBeTrue)
			So(len([]rune(strings.TrimSuffix(title, "..."))), ShouldBeLessThanOrEqualTo, DefaultTitleMaxLength)
			So(strings.TrimSuffix(title, "..."), ShouldNotEndWith, " ")

			So(p.GenerateTitle(strings.Repeat("x", 80)), ShouldEqual, strings.Repeat("x", 50)+"...")
		})

		Convey("GenerateTitle uses the segmenter", func() {
			seg := NewDefaultPolicy(config.ChatConfig{TitleMaxLength: 4}, runeSegmenter{})
			So(seg.GenerateTitle("今天天气很好"), ShouldEqual, "今天天气...")
		})

		Convey("ShouldArchive", func() {
			old, _ := conversation.Restore(conversation.GenerateConversationID(), "t", "", nil,
				time.Now().Add(-31*24*time.Hour), time.Now().Add(-31*24*time.Hour))
			recent, _ := conversation.New("t")
			So(p.ShouldArchive(old), ShouldBeTrue)
			So(p.ShouldArchive(recent), ShouldBeFalse)
		})

		Convey("CanAddMessage and TrimConversationIfNeeded", func() {
			small := NewDefaultPolicy(config.ChatConfig{MaxMessages: 1, ContextMessages: 2}, nil)
			conv, _ := conversation.New("t")
			So(small.CanAddMessage(conv), ShouldBeTrue)
			m, _ := conversation.NewUserMessage("a")
			So(small.CanAddMessage(conv.AddMessage(m)), ShouldBeFalse)

			var msgs []conversation.Message
			for _, s := range []string{"a", "b", "c"} {
				m, _ := conversation.NewUserMessage(s)
				msgs = append(msgs, m)
			}
			kept := small.TrimConversationIfNeeded(msgs)
			So(kept, ShouldHaveLength, 2)
			So(kept[0].Content(), ShouldEqual, "b")
			So(small.TrimConversationIfNeeded(msgs[:1]), ShouldHaveLength, 1)
		})
	})
}
