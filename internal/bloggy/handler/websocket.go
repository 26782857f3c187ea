package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/model"
	sjson "github.com/kart-io/bloggy/pkg/utils/json"
)

// WSHandler serves the websocket chat transport.
type WSHandler struct {
	chat     *biz.Chat
	registry *SessionRegistry
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(chat *biz.Chat, registry *SessionRegistry) *WSHandler {
	return &WSHandler{
		chat:     chat,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from the blog frontend origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Chat handles GET /ws/chat/:client_id. Each inbound message is answered by
// a sequence of {"chunk": ...} frames closed by {"complete": true}.
func (h *WSHandler) Chat(c *gin.Context) {
	clientID := c.Param("client_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnw("websocket upgrade failed", "client_id", clientID, "error", err.Error())
		return
	}

	h.registry.Register(clientID, conn)
	defer func() {
		h.registry.Unregister(clientID)
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnw("websocket read failed", "client_id", clientID, "error", err.Error())
			}
			return
		}

		var req model.ChatRequest
		if err := sjson.Unmarshal(payload, &req); err != nil || req.CurrentRequest == "" {
			if !h.writeFrame(conn, model.StreamEvent{Error: "invalid request"}) {
				return
			}
			continue
		}

		if !h.respond(c, conn, &req) {
			return
		}
	}
}

// respond streams one answer over the socket. Returns false once the socket
// is unwritable; upstream consumption stops with it.
func (h *WSHandler) respond(c *gin.Context, conn *websocket.Conn, req *model.ChatRequest) bool {
	stream := h.chat.Respond(c.Request.Context(), req.CurrentRequest, req.PreviousContext)
	defer stream.Close()

	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			return h.writeFrame(conn, model.StreamEvent{Complete: true})
		}
		if err != nil {
			return h.writeFrame(conn, model.StreamEvent{Error: err.Error()})
		}

		if !h.writeFrame(conn, model.StreamEvent{Chunk: fragment}) {
			return false
		}
	}
}

func (h *WSHandler) writeFrame(conn *websocket.Conn, event model.StreamEvent) bool {
	payload, err := sjson.Marshal(event)
	if err != nil {
		logger.Errorw("failed to encode websocket frame", "error", err.Error())
		return false
	}
	return conn.WriteMessage(websocket.TextMessage, payload) == nil
}
