package dto

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"natgpt/internal/model/conversation"
)

func TestConversationMapping(t *testing.T) {
	Convey("ToConversation(ToConversationDTO(c)) preserves the conversation", t, func() {
		c, err := conversation.New("Round trip")
		So(err, ShouldBeNil)
		u, _ := conversation.NewUserMessage("question")
		a, _ := conversation.NewAssistantMessage("answer")
		c = c.AddMessage(u).AddMessage(a).WithOwner("u1")

		d := ToConversationDTO(c)
		So(d.Messages, ShouldHaveLength, 2)
		So(d.Messages[0].Role, ShouldEqual, "user")

		back, err := ToConversation(d)
		So(err, ShouldBeNil)
		So(back.ID().Equals(c.ID()), ShouldBeTrue)
		So(back.Title(), ShouldEqual, c.Title())
		So(back.OwnerID(), ShouldEqual, "u1")
		So(back.MessageCount(), ShouldEqual, 2)
		So(back.Messages()[0].Content(), ShouldEqual, "question")
		So(back.Messages()[1].Content(), ShouldEqual, "answer")
		So(back.UpdatedAt().Equal(c.UpdatedAt()), ShouldBeTrue)
	})

	Convey("an unknown role fails mapping", t, func() {
		d := ConversationDTO{
			ID:    "c1",
			Title: "t",
			Messages: []MessageDTO{
				{ID: "m1", Content: "x", Role: "system", Timestamp: "2024-01-01T00:00:00Z"},
			},
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		}
		_, err := ToConversation(d)
		So(errors.Is(err, conversation.ErrInvalidRole), ShouldBeTrue)
	})

	Convey("a malformed timestamp fails mapping", t, func() {
		d := ConversationDTO{ID: "c1", Title: "t", CreatedAt: "yesterday"}
		_, err := ToConversation(d)
		So(err, ShouldNotBeNil)
	})
}
