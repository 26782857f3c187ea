package biz_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/llm"
)

func newChatFixture(chat *stubChat, vectors *memVectors) *biz.Chat {
	retriever := biz.NewRetriever(vectors, &stubEmbedder{}, 20)
	return biz.NewChat(chat, retriever)
}

func knowledgeCall(question string) *llm.Completion {
	args, _ := json.Marshal(map[string]string{"question": question})
	return &llm.Completion{ToolCall: &llm.ToolCall{Name: "knowledge_base", Arguments: args}}
}

func TestRespondChitchat(t *testing.T) {
	chat := &stubChat{completion: &llm.Completion{Content: "Hello there!"}}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "hi", nil))

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", text)
}

func TestRespondKnowledgeQuery(t *testing.T) {
	chat := &stubChat{
		completion: knowledgeCall("what is a goroutine"),
		stream:     &scriptedStream{fragments: []string{"A goroutine ", "is a lightweight thread."}},
	}
	vectors := &memVectors{searchHits: []store.ScoredChunk{
		{SourceID: "b1", Text: "Goroutines are lightweight threads.", Score: 0.9},
	}}
	orchestrator := newChatFixture(chat, vectors)

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "what is a goroutine", nil))

	require.NoError(t, err)
	assert.Equal(t, "A goroutine is a lightweight thread.", text)
	require.Len(t, chat.lastStream, 1)
	assert.Contains(t, chat.lastStream[0].Content, "Goroutines are lightweight threads.")
	assert.Contains(t, chat.lastStream[0].Content, "what is a goroutine")
}

func TestRespondClassificationFailure(t *testing.T) {
	chat := &stubChat{toolsErr: errors.New("upstream down")}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "hi", nil))

	require.NoError(t, err)
	assert.Equal(t, biz.FallbackReply, text)
}

func TestRespondEmptyDirectReply(t *testing.T) {
	chat := &stubChat{completion: &llm.Completion{}}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "hi", nil))

	require.NoError(t, err)
	assert.Equal(t, biz.FallbackReply, text)
}

func TestRespondUnknownToolKeepsDirectText(t *testing.T) {
	chat := &stubChat{completion: &llm.Completion{
		Content:  "Let me think about that.",
		ToolCall: &llm.ToolCall{Name: "weather", Arguments: json.RawMessage(`{}`)},
	}}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "hi", nil))

	require.NoError(t, err)
	assert.Equal(t, "Let me think about that.", text)
}

func TestRespondMalformedToolArguments(t *testing.T) {
	chat := &stubChat{completion: &llm.Completion{
		ToolCall: &llm.ToolCall{Name: "knowledge_base", Arguments: json.RawMessage(`not json`)},
	}}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "hi", nil))

	require.NoError(t, err)
	assert.Equal(t, biz.FallbackReply, text)
}

func TestRespondEmptyQuestionFallsBackToQuery(t *testing.T) {
	chat := &stubChat{
		completion: knowledgeCall(""),
		stream:     &scriptedStream{fragments: []string{"answer"}},
	}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "tell me about rust", nil))

	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	require.Len(t, chat.lastStream, 1)
	assert.Contains(t, chat.lastStream[0].Content, "tell me about rust")
}

func TestRespondStreamOpenFailure(t *testing.T) {
	chat := &stubChat{
		completion: knowledgeCall("anything"),
		streamErr:  errors.New("connection reset"),
	}
	orchestrator := newChatFixture(chat, &memVectors{})

	text, err := biz.Drain(orchestrator.Respond(context.Background(), "anything", nil))

	require.NoError(t, err)
	assert.Equal(t, biz.FallbackReply, text)
}

func TestRespondIncludesHistory(t *testing.T) {
	chat := &stubChat{completion: &llm.Completion{Content: "ok"}}
	orchestrator := newChatFixture(chat, &memVectors{})

	history := []model.ConversationTurn{
		{Role: "user", Text: "hello"},
		{Role: "assistant", Text: "hi, how can I help?"},
	}
	_, err := biz.Drain(orchestrator.Respond(context.Background(), "thanks", history))

	require.NoError(t, err)
	require.Len(t, chat.lastTools, 1)
	assert.Contains(t, chat.lastTools[0].Content, "hello")
	assert.Contains(t, chat.lastTools[0].Content, "hi, how can I help?")
}
