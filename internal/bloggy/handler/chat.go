package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/model"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
	sjson "github.com/kart-io/bloggy/pkg/utils/json"
)

// ChatHandler serves the conversational assistant over plain JSON and NDJSON.
type ChatHandler struct {
	chat *biz.Chat
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *biz.Chat) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// BotCall handles POST /bot_call: the stream is drained and returned as one
// JSON body.
func (h *ChatHandler) BotCall(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.ErrInvalidParam.WithMessage(err.Error()))
		return
	}

	stream := h.chat.Respond(c.Request.Context(), req.CurrentRequest, req.PreviousContext)
	text, err := biz.Drain(stream)
	if err != nil {
		logger.Warnw("response stream ended with error", "error", err.Error())
		if text == "" {
			text = biz.FallbackReply
		}
	}

	c.JSON(http.StatusOK, model.ChatResponse{Response: text})
}

// BotCallStream handles POST /bot_call_stream as NDJSON: one {"chunk": ...}
// line per fragment, flushed as it arrives, with errors reported in-band as
// an {"error": ...} line.
func (h *ChatHandler) BotCallStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.ErrInvalidParam.WithMessage(err.Error()))
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)

	stream := h.chat.Respond(c.Request.Context(), req.CurrentRequest, req.PreviousContext)
	defer stream.Close()

	for {
		select {
		case <-c.Request.Context().Done():
			// client went away; stop consuming upstream
			return
		default:
		}

		fragment, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			writeEvent(c, flusher, model.StreamEvent{Error: err.Error()})
			return
		}

		if !writeEvent(c, flusher, model.StreamEvent{Chunk: fragment}) {
			return
		}
	}
}

// writeEvent writes one NDJSON line and flushes it. Returns false when the
// connection is no longer writable.
func writeEvent(c *gin.Context, flusher http.Flusher, event model.StreamEvent) bool {
	line, err := sjson.Marshal(event)
	if err != nil {
		logger.Errorw("failed to encode stream event", "error", err.Error())
		return false
	}
	line = append(line, '\n')

	if _, err := c.Writer.Write(line); err != nil {
		return false
	}
	if flusher != nil {
		flusher.Flush()
	}
	return true
}
