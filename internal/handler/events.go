package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/realtime"
)

// EventsHandler upgrades /events to a websocket bound to the caller.
type EventsHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewEventsHandler creates the handler. allowOrigin decides cross-origin upgrades; nil allows all.
func NewEventsHandler(hub *realtime.Hub, allowOrigin func(r *http.Request) bool) *EventsHandler {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
	}
}

// Stream conversation events
// @Summary      Event stream
// @Description  Websocket stream of conversation.created, conversation.deleted and message.created events for the caller.
// @Tags         events
// @Router       /api/v1/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn := h.hub.NewConnection(ws, ctxutil.UserIDOrEmpty(c.Request.Context()))
	h.hub.Serve(conn)
}
