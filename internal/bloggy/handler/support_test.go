package handler_test

import (
	"context"
	"io"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/llm"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// chatStub answers every classification with a fixed completion and every
// generation with a scripted stream.
type chatStub struct {
	completion *llm.Completion
	toolsErr   error
	stream     llm.Stream
}

func (s *chatStub) Chat(context.Context, []llm.Message) (string, error) {
	return "", nil
}

func (s *chatStub) ChatWithTools(context.Context, []llm.Message, []llm.Tool) (*llm.Completion, error) {
	if s.toolsErr != nil {
		return nil, s.toolsErr
	}
	return s.completion, nil
}

func (s *chatStub) ChatStream(context.Context, []llm.Message) (llm.Stream, error) {
	return s.stream, nil
}

func (s *chatStub) Name() string { return "stub" }

// fragmentStream yields fragments then err or io.EOF.
type fragmentStream struct {
	fragments []string
	err       error
	pos       int
}

func (s *fragmentStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		s.pos++
		return s.fragments[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *fragmentStream) Close() error { return nil }

type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (noopEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (noopEmbedder) Name() string { return "noop" }

type noopVectors struct{}

func (noopVectors) EnsureReady(context.Context, int) error               { return nil }
func (noopVectors) Upsert(context.Context, []store.ChunkRecord) error    { return nil }
func (noopVectors) DeleteBySource(context.Context, string) error         { return nil }
func (noopVectors) Search(context.Context, []float32, int) ([]store.ScoredChunk, error) {
	return nil, nil
}

func newChatBiz(t *testing.T, provider llm.ChatProvider) *biz.Chat {
	t.Helper()
	return biz.NewChat(provider, biz.NewRetriever(noopVectors{}, noopEmbedder{}, 20))
}

// userStoreStub is an in-memory store.UserStore.
type userStoreStub struct {
	users map[string]*model.User
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]*model.User)}
}

func (s *userStoreStub) Create(_ context.Context, user *model.User) error {
	if _, ok := s.users[user.Email]; ok {
		return errs.ErrEmailExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *userStoreStub) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return user, nil
}

func (s *userStoreStub) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errs.ErrUserNotFound
}
