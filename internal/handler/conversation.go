package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/realtime"
	"natgpt/internal/service"
)

// ConversationUseCases the use-cases behind the conversation routes.
type ConversationUseCases struct {
	Create *service.CreateConversation
	List   *service.GetConversations
	Get    *service.GetConversation
	Delete *service.DeleteConversation
	Send   *service.SendMessage
}

// ConversationHandler serves /conversations.
type ConversationHandler struct {
	uc     ConversationUseCases
	events realtime.Publisher
}

// NewConversationHandler creates the handler. events may be nil.
func NewConversationHandler(uc ConversationUseCases, events realtime.Publisher) *ConversationHandler {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return &ConversationHandler{uc: uc, events: events}
}

// SendMessageBody body of POST /conversations/:id/messages.
type SendMessageBody struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// Create creates a conversation
// @Summary      Create conversation
// @Description  Creates a conversation owned by the caller. An empty title uses "New Conversation".
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateConversationRequest  false  "Optional title"
// @Success      201      {object}  SuccessResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req service.CreateConversationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	resp, err := h.uc.Create.Execute(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.events.Publish(ctxutil.UserIDOrEmpty(c.Request.Context()),
		realtime.NewEvent(realtime.EventConversationCreated, resp.Conversation.ID, resp.Conversation))
	respondOK(c, http.StatusCreated, "Conversation created", resp)
}

// List lists conversations
// @Summary      List conversations
// @Description  Returns the caller's conversations, most recently updated first.
// @Tags         conversations
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	resp, err := h.uc.List.Execute(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "ok", resp)
}

// Get returns one conversation
// @Summary      Get conversation
// @Tags         conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	resp, err := h.uc.Get.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "ok", resp)
}

// Delete deletes a conversation
// @Summary      Delete conversation
// @Tags         conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.uc.Delete.Execute(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.events.Publish(ctxutil.UserIDOrEmpty(c.Request.Context()),
		realtime.NewEvent(realtime.EventConversationDeleted, id, nil))
	respondOK(c, http.StatusOK, "Conversation deleted", resp)
}

// SendMessage posts a user message and returns the assistant reply
// @Summary      Send message
// @Description  Appends the user message, asks the AI for a reply and stores both.
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Conversation ID"
// @Param        request  body      SendMessageBody  true  "Message"
// @Success      200      {object}  SuccessResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/v1/conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var body SendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := h.uc.Send.Execute(c.Request.Context(), service.SendMessageRequest{
		ConversationID: c.Param("id"),
		Content:        body.Content,
		Model:          body.Model,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	owner := ctxutil.UserIDOrEmpty(c.Request.Context())
	h.events.Publish(owner, realtime.NewEvent(realtime.EventMessageCreated, resp.ConversationID, resp.UserMessage))
	h.events.Publish(owner, realtime.NewEvent(realtime.EventMessageCreated, resp.ConversationID, resp.AIMessage))
	respondOK(c, http.StatusOK, "ok", resp)
}
