package handler_test

import (
	"bufio"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bloggy/internal/bloggy/handler"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/llm"
	sjson "github.com/kart-io/bloggy/pkg/utils/json"
)

func chatEngine(t *testing.T, provider llm.ChatProvider) *gin.Engine {
	t.Helper()
	h := handler.NewChatHandler(newChatBiz(t, provider))
	engine := gin.New()
	engine.POST("/bot_call", h.BotCall)
	engine.POST("/bot_call_stream", h.BotCallStream)
	return engine
}

func TestBotCallReturnsDrainedReply(t *testing.T) {
	engine := chatEngine(t, &chatStub{completion: &llm.Completion{Content: "Hello!"}})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"current_request": "hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/bot_call", body)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.ChatResponse
	require.NoError(t, sjson.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello!", resp.Response)
}

func TestBotCallRejectsMissingRequest(t *testing.T) {
	engine := chatEngine(t, &chatStub{completion: &llm.Completion{Content: "Hello!"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bot_call", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotCallStreamWritesNDJSONChunks(t *testing.T) {
	engine := chatEngine(t, &chatStub{completion: &llm.Completion{Content: "Hi there!"}})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"current_request": "hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/bot_call_stream", body)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	events := decodeEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "Hi there!", events[0].Chunk)
}

func TestBotCallStreamReportsErrorInBand(t *testing.T) {
	provider := &chatStub{
		completion: &llm.Completion{ToolCall: &llm.ToolCall{
			Name:      "knowledge_base",
			Arguments: []byte(`{"question": "q"}`),
		}},
		stream: &fragmentStream{fragments: []string{"part"}, err: errors.New("connection reset")},
	}
	engine := chatEngine(t, provider)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"current_request": "q"}`)
	req := httptest.NewRequest(http.MethodPost, "/bot_call_stream", body)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	events := decodeEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "part", events[0].Chunk)
	assert.Equal(t, "connection reset", events[1].Error)
}

func decodeEvents(t *testing.T, body string) []model.StreamEvent {
	t.Helper()
	var events []model.StreamEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event model.StreamEvent
		require.NoError(t, sjson.Unmarshal([]byte(line), &event))
		events = append(events, event)
	}
	return events
}
