// Package openai implements llm providers against the OpenAI HTTP API and
// any compatible endpoint (Azure OpenAI, LocalAI, SiliconFlow and friends).
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/bloggy/pkg/llm"
	"github.com/kart-io/bloggy/pkg/utils/httpclient"
	sjson "github.com/kart-io/bloggy/pkg/utils/json"
)

// ProviderName identifies this provider in logs.
const ProviderName = "openai"

// Config holds the connection settings for one OpenAI-compatible endpoint.
// Embedding and chat use separate Config instances so they can target
// different models or even different services.
type Config struct {
	// BaseURL is the API base address, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Model is the model requested for every call through this provider.
	Model string

	// Timeout bounds a single request including streaming reads.
	Timeout time.Duration

	// MaxRetries is the retry count for transient transport failures.
	MaxRetries int

	// Organization is the optional OpenAI-Organization header.
	Organization string
}

// baseClient carries the HTTP plumbing shared by both provider kinds.
type baseClient struct {
	config *Config
	client *httpclient.Client
}

func newBaseClient(cfg *Config) baseClient {
	return baseClient{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout, cfg.MaxRetries),
	}
}

func (b *baseClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.config.APIKey)
	if b.config.Organization != "" {
		req.Header.Set("OpenAI-Organization", b.config.Organization)
	}
}

func (b *baseClient) postJSON(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := sjson.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	b.setHeaders(req)

	return b.client.DoJSON(req, respBody)
}

// EmbeddingProvider implements llm.EmbeddingProvider over /embeddings.
type EmbeddingProvider struct {
	baseClient
}

// NewEmbeddingProvider creates an embedding provider for the configured
// endpoint and model.
func NewEmbeddingProvider(cfg *Config) *EmbeddingProvider {
	return &EmbeddingProvider{baseClient: newBaseClient(cfg)}
}

// Name returns the provider name.
func (p *EmbeddingProvider) Name() string { return ProviderName }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one embedding per input text, in input order.
func (p *EmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	err := p.postJSON(ctx, "/embeddings", embeddingRequest{
		Model: p.config.Model,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, err
	}

	// The API may return entries out of order; place them by index.
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < len(embeddings) {
			embeddings[d.Index] = d.Embedding
		}
	}
	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return embeddings, nil
}

// EmbedSingle embeds one text.
func (p *EmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// ChatProvider implements llm.ChatProvider over /chat/completions.
type ChatProvider struct {
	baseClient
}

// NewChatProvider creates a chat provider for the configured endpoint
// and model.
func NewChatProvider(cfg *Config) *ChatProvider {
	return &ChatProvider{baseClient: newBaseClient(cfg)}
}

// Name returns the provider name.
func (p *ChatProvider) Name() string { return ProviderName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Stream     bool          `json:"stream"`
	Tools      []toolSpec    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type toolCallPayload struct {
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []toolCallPayload `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func toWire(messages []llm.Message) []chatMessage {
	out := make([]chatMessage, len(messages))
	for i, m := range messages {
		out[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// Chat returns the full assistant reply for a conversation.
func (p *ChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var resp chatResponse
	err := p.postJSON(ctx, "/chat/completions", chatRequest{
		Model:    p.config.Model,
		Messages: toWire(messages),
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatWithTools offers the model a set of tools and returns either the
// direct reply or the first requested tool call.
func (p *ChatProvider) ChatWithTools(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error) {
	specs := make([]toolSpec, len(tools))
	for i, t := range tools {
		specs[i] = toolSpec{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}

	var resp chatResponse
	err := p.postJSON(ctx, "/chat/completions", chatRequest{
		Model:      p.config.Model,
		Messages:   toWire(messages),
		Tools:      specs,
		ToolChoice: "auto",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		call := choice.Message.ToolCalls[0]
		return &llm.Completion{
			ToolCall: &llm.ToolCall{
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
			},
		}, nil
	}
	return &llm.Completion{Content: choice.Message.Content}, nil
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ChatStream starts a server-sent-events completion and returns the reply
// as an ordered fragment stream.
func (p *ChatProvider) ChatStream(ctx context.Context, messages []llm.Message) (llm.Stream, error) {
	body, err := sjson.Marshal(chatRequest{
		Model:    p.config.Model,
		Messages: toWire(messages),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.DoRequest(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return &sseStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

// sseStream decodes "data:" lines from an SSE chat completion body.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	closeErr  error
}

// Recv returns the next non-empty content fragment, io.EOF when the
// stream is finished.
func (s *sseStream) Recv() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			return "", io.EOF
		}

		var chunk chatStreamChunk
		if err := sjson.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying response body.
func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

var (
	_ llm.EmbeddingProvider = (*EmbeddingProvider)(nil)
	_ llm.ChatProvider      = (*ChatProvider)(nil)
	_ llm.Stream            = (*sseStream)(nil)
)
