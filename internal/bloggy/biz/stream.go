package biz

import (
	"io"
	"strings"
	"sync"

	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/llm"
)

// staticStream yields one fixed fragment and then ends. It backs chitchat
// replies and the fail-safe fallback, so every response path hands the
// transport the same llm.Stream shape.
type staticStream struct {
	mu   sync.Mutex
	text string
	done bool
}

// NewStaticStream creates a single-fragment stream.
func NewStaticStream(text string) llm.Stream {
	return &staticStream{text: text}
}

func (s *staticStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.text, nil
}

func (s *staticStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	return nil
}

// Drain consumes the stream to completion and concatenates the fragments.
func Drain(stream llm.Stream) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
}

// historyText renders prior turns for inclusion in a prompt.
func historyText(turns []model.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
