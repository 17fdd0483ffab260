package conversation

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIDs(t *testing.T) {
	Convey("ConversationID and MessageID are validated value objects", t, func() {
		Convey("surrounding whitespace is trimmed", func() {
			id, err := NewConversationID("  abc  ")
			So(err, ShouldBeNil)
			So(id.String(), ShouldEqual, "abc")
		})

		Convey("empty or blank input is rejected", func() {
			for _, raw := range []string{"", "   ", "\t\n"} {
				_, err := NewConversationID(raw)
				So(errors.Is(err, ErrEmptyID), ShouldBeTrue)
				_, err = NewMessageID(raw)
				So(errors.Is(err, ErrEmptyID), ShouldBeTrue)
			}
		})

		Convey("equality is based on the trimmed value", func() {
			a, _ := NewConversationID("x1")
			b, _ := NewConversationID(" x1 ")
			c, _ := NewConversationID("x2")
			So(a.Equals(a), ShouldBeTrue)
			So(a.Equals(b), ShouldBeTrue)
			So(b.Equals(a), ShouldBeTrue)
			So(a.Equals(c), ShouldBeFalse)
		})

		Convey("generated ids differ", func() {
			So(GenerateConversationID().Equals(GenerateConversationID()), ShouldBeFalse)
			So(GenerateMessageID().Equals(GenerateMessageID()), ShouldBeFalse)
		})
	})
}

func TestMessageRole(t *testing.T) {
	Convey("ParseMessageRole accepts only user and assistant", t, func() {
		r, err := ParseMessageRole("user")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, RoleUser)

		r, err = ParseMessageRole("assistant")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, RoleAssistant)

		_, err = ParseMessageRole("system")
		So(errors.Is(err, ErrInvalidRole), ShouldBeTrue)
	})
}

func TestMessage(t *testing.T) {
	Convey("Message content", t, func() {
		Convey("is stored trimmed", func() {
			m, err := NewUserMessage("  hello  ")
			So(err, ShouldBeNil)
			So(m.Content(), ShouldEqual, "hello")
			So(m.IsFromUser(), ShouldBeTrue)
			So(m.Timestamp().IsZero(), ShouldBeFalse)
		})

		Convey("cannot be blank", func() {
			for _, c := range []string{"", "  ", "\n"} {
				_, err := NewAssistantMessage(c)
				So(errors.Is(err, ErrEmptyContent), ShouldBeTrue)
			}
		})

		Convey("zero timestamp defaults to now", func() {
			before := time.Now()
			m, err := NewMessage(GenerateMessageID(), "hi", RoleAssistant, time.Time{})
			So(err, ShouldBeNil)
			So(m.Timestamp().Before(before), ShouldBeFalse)
		})

		Convey("equality is by id", func() {
			id := GenerateMessageID()
			a, _ := NewMessage(id, "one", RoleUser, time.Now())
			b, _ := NewMessage(id, "two", RoleAssistant, time.Now())
			So(a.Equals(b), ShouldBeTrue)
		})
	})
}

func TestConversation(t *testing.T) {
	Convey("Conversation", t, func() {
		Convey("title is trimmed", func() {
			c, err := New("  Trip planning ")
			So(err, ShouldBeNil)
			So(c.Title(), ShouldEqual, "Trip planning")
		})

		Convey("blank title is rejected", func() {
			_, err := New("   ")
			So(errors.Is(err, ErrEmptyTitle), ShouldBeTrue)
		})

		Convey("default title", func() {
			c, err := NewWithDefaultTitle()
			So(err, ShouldBeNil)
			So(c.Title(), ShouldEqual, DefaultTitle)
			So(c.HasDefaultTitle(), ShouldBeTrue)
		})

		Convey("explicit id is kept", func() {
			id, _ := NewConversationID("conv-1")
			c, _ := New("t", id)
			So(c.ID().String(), ShouldEqual, "conv-1")
		})

		Convey("AddMessage is copy-on-write", func() {
			c, _ := New("t")
			m, _ := NewUserMessage("hi")
			time.Sleep(time.Millisecond)

			next := c.AddMessage(m)
			So(c.MessageCount(), ShouldEqual, 0)
			So(next.MessageCount(), ShouldEqual, 1)
			So(next.UpdatedAt().After(c.UpdatedAt()), ShouldBeTrue)
			So(next.Equals(c), ShouldBeTrue)

			last, ok := next.LastMessage()
			So(ok, ShouldBeTrue)
			So(last.Content(), ShouldEqual, "hi")
		})

		Convey("appending to siblings does not share backing storage", func() {
			c, _ := New("t")
			m1, _ := NewUserMessage("one")
			base := c.AddMessage(m1)

			m2, _ := NewAssistantMessage("two")
			m3, _ := NewAssistantMessage("three")
			left := base.AddMessage(m2)
			right := base.AddMessage(m3)

			So(left.Messages()[1].Content(), ShouldEqual, "two")
			So(right.Messages()[1].Content(), ShouldEqual, "three")
		})

		Convey("Messages returns a copy", func() {
			c, _ := New("t")
			m, _ := NewUserMessage("hi")
			c = c.AddMessage(m)
			msgs := c.Messages()
			msgs[0] = Message{}
			So(c.Messages()[0].Content(), ShouldEqual, "hi")
		})

		Convey("Rename validates and copies", func() {
			c, _ := New("old")
			renamed, err := c.Rename(" new ")
			So(err, ShouldBeNil)
			So(renamed.Title(), ShouldEqual, "new")
			So(c.Title(), ShouldEqual, "old")

			_, err = c.Rename(" ")
			So(errors.Is(err, ErrEmptyTitle), ShouldBeTrue)
		})

		Convey("ownership", func() {
			c, _ := New("t")
			So(c.IsAccessibleBy("anyone"), ShouldBeTrue)

			owned := c.WithOwner("u1")
			So(owned.IsAccessibleBy("u1"), ShouldBeTrue)
			So(owned.IsAccessibleBy("u2"), ShouldBeFalse)
			So(owned.IsAccessibleBy(""), ShouldBeFalse)
		})
	})
}
