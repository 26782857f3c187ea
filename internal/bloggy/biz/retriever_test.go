package biz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/bloggy/store"
)

func TestRetrieveJoinsHitsInRankOrder(t *testing.T) {
	vectors := &memVectors{searchHits: []store.ScoredChunk{
		{SourceID: "b1", Text: "first passage", Score: 0.95},
		{SourceID: "b2", Text: "second passage", Score: 0.80},
	}}
	retriever := biz.NewRetriever(vectors, &stubEmbedder{}, 20)

	got := retriever.Retrieve(context.Background(), "query")

	assert.Equal(t, "first passage\nsecond passage", got)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	retriever := biz.NewRetriever(&memVectors{}, &stubEmbedder{}, 20)

	assert.Equal(t, "", retriever.Retrieve(context.Background(), "query"))
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	retriever := biz.NewRetriever(&memVectors{},
		&stubEmbedder{err: errors.New("timeout")}, 20)

	assert.Equal(t, "", retriever.Retrieve(context.Background(), "query"))
}

func TestRetrieveSearchFailure(t *testing.T) {
	vectors := &memVectors{searchErr: errors.New("collection unavailable")}
	retriever := biz.NewRetriever(vectors, &stubEmbedder{}, 20)

	assert.Equal(t, "", retriever.Retrieve(context.Background(), "query"))
}
