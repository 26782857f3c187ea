// Package llm defines provider abstractions for embedding and chat models.
// Concrete providers live in subpackages and are wired explicitly at startup;
// consumers depend only on the interfaces here so tests can substitute fakes.
package llm

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EmbeddingProvider produces dense vector embeddings for text.
type EmbeddingProvider interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedSingle embeds one text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	// Name identifies the provider for logging.
	Name() string
}

// Tool describes a function the model may request instead of replying
// directly. Parameters is a JSON Schema object.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Completion is the result of a tool-enabled chat call. Exactly one branch
// is set: either the model replied directly, or it requested a tool.
type Completion struct {
	// Content is the assistant text when the model replied directly.
	Content string
	// ToolCall is non-nil when the model requested a tool invocation.
	ToolCall *ToolCall
}

// ToolCall is a model-issued request to invoke a named tool.
type ToolCall struct {
	Name string
	// Arguments is the raw JSON argument object produced by the model.
	Arguments json.RawMessage
}

// ChatProvider runs chat completions against a language model.
type ChatProvider interface {
	// Chat returns the full assistant reply for a conversation.
	Chat(ctx context.Context, messages []Message) (string, error)
	// ChatWithTools lets the model either answer directly or pick one of
	// the offered tools.
	ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
	// ChatStream returns the assistant reply as an ordered fragment stream.
	// The caller must Close the stream when done.
	ChatStream(ctx context.Context, messages []Message) (Stream, error)
	// Name identifies the provider for logging.
	Name() string
}

// Stream yields assistant reply fragments in generation order.
type Stream interface {
	// Recv returns the next fragment. It returns io.EOF after the final
	// fragment has been delivered.
	Recv() (string, error)
	// Close releases the underlying response. Safe to call multiple times.
	Close() error
}
