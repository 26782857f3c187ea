package biz_test

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/llm"
	"github.com/kart-io/bloggy/pkg/security/auth"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// stubEmbedder returns deterministic vectors, or a scripted error.
type stubEmbedder struct {
	err   error
	calls [][]string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls = append(s.calls, texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) Name() string { return "stub" }

// stubChat scripts the three chat provider entry points.
type stubChat struct {
	chatReply string
	chatErr   error
	lastChat  []llm.Message

	completion *llm.Completion
	toolsErr   error
	lastTools  []llm.Message

	stream     llm.Stream
	streamErr  error
	lastStream []llm.Message
}

func (s *stubChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	s.lastChat = messages
	return s.chatReply, s.chatErr
}

func (s *stubChat) ChatWithTools(_ context.Context, messages []llm.Message, _ []llm.Tool) (*llm.Completion, error) {
	s.lastTools = messages
	if s.toolsErr != nil {
		return nil, s.toolsErr
	}
	return s.completion, nil
}

func (s *stubChat) ChatStream(_ context.Context, messages []llm.Message) (llm.Stream, error) {
	s.lastStream = messages
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return s.stream, nil
}

func (s *stubChat) Name() string { return "stub" }

// scriptedStream yields fragments in order and ends with err or io.EOF.
type scriptedStream struct {
	fragments []string
	err       error
	pos       int
	closed    bool
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		s.pos++
		return s.fragments[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// memVectors records writes and serves scripted search results.
type memVectors struct {
	upserts    [][]store.ChunkRecord
	upsertErr  error
	searchHits []store.ScoredChunk
	searchErr  error
	deleted    []string
	deleteErr  error
}

func (m *memVectors) EnsureReady(context.Context, int) error { return nil }

func (m *memVectors) Upsert(_ context.Context, records []store.ChunkRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, records)
	return nil
}

func (m *memVectors) Search(context.Context, []float32, int) ([]store.ScoredChunk, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchHits, nil
}

func (m *memVectors) DeleteBySource(_ context.Context, sourceID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, sourceID)
	return nil
}

// memUsers is an in-memory UserStore.
type memUsers struct {
	users map[string]*model.User // keyed by email
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*model.User)}
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; ok {
		return errs.ErrEmailExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return user, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errs.ErrUserNotFound
}

// memBlogs is an in-memory BlogStore.
type memBlogs struct {
	created   []*model.Blog
	createErr error
	deletions []string // "id/author"
}

func (m *memBlogs) Create(_ context.Context, blog *model.Blog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, blog)
	return nil
}

func (m *memBlogs) List(context.Context, int, int) ([]model.BlogItem, error) {
	items := make([]model.BlogItem, 0, len(m.created))
	for _, blog := range m.created {
		items = append(items, model.BlogItem{ID: blog.ID, Title: blog.Title, Content: blog.Content})
	}
	return items, nil
}

func (m *memBlogs) Get(_ context.Context, id string) (*model.BlogItem, error) {
	for _, blog := range m.created {
		if blog.ID == id {
			return &model.BlogItem{ID: blog.ID, Title: blog.Title, Content: blog.Content}, nil
		}
	}
	return nil, errs.ErrBlogNotFound
}

func (m *memBlogs) ListByAuthor(_ context.Context, authorID string) ([]model.BlogItem, error) {
	var items []model.BlogItem
	for _, blog := range m.created {
		if blog.AuthorID == authorID {
			items = append(items, model.BlogItem{ID: blog.ID, Title: blog.Title})
		}
	}
	return items, nil
}

func (m *memBlogs) SoftDelete(_ context.Context, id, authorID string) error {
	m.deletions = append(m.deletions, id+"/"+authorID)
	return nil
}

// stubAuthn is a trivially verifiable Authenticator.
type stubAuthn struct {
	signErr    error
	refreshErr error
	revoked    []string
}

func (s *stubAuthn) Sign(_ context.Context, subject string, _ ...auth.SignOption) (auth.Token, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &auth.BaseToken{
		AccessToken: "token-for-" + subject,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		ExpiresIn:   3600,
	}, nil
}

func (s *stubAuthn) Verify(_ context.Context, tokenString string) (*auth.Claims, error) {
	for _, revoked := range s.revoked {
		if revoked == tokenString {
			return nil, fmt.Errorf("token revoked")
		}
	}
	return &auth.Claims{Subject: "user@example.com"}, nil
}

func (s *stubAuthn) Refresh(ctx context.Context, tokenString string) (auth.Token, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	s.revoked = append(s.revoked, tokenString)
	return &auth.BaseToken{
		AccessToken: "refreshed-" + tokenString,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		ExpiresIn:   3600,
	}, nil
}

func (s *stubAuthn) Revoke(_ context.Context, tokenString string) error {
	s.revoked = append(s.revoked, tokenString)
	return nil
}

func (s *stubAuthn) Type() string { return "stub" }
