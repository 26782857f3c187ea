package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/pkg/textutil"
	"github.com/kart-io/bloggy/pkg/llm"
)

// Retriever finds the knowledge-base passages most relevant to a question.
type Retriever struct {
	vectors  store.VectorStore
	embedder llm.EmbeddingProvider
	topK     int
}

// NewRetriever creates a Retriever.
func NewRetriever(vectors store.VectorStore, embedder llm.EmbeddingProvider, topK int) *Retriever {
	return &Retriever{
		vectors:  vectors,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve embeds the query, searches the index, and returns the matched
// texts in rank order joined by newlines. Any failure, and an empty index,
// yield the empty string; generation then falls back to its refusal answer.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	vector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		logger.Warnw("query embedding failed", "error", err.Error())
		return ""
	}

	hits, err := r.vectors.Search(ctx, vector, r.topK)
	if err != nil {
		logger.Warnw("similarity search failed", "error", err.Error())
		return ""
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Text
	}
	return textutil.JoinContext(texts)
}
