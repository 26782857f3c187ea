package store

import (
	"context"
	"fmt"

	"github.com/kart-io/bloggy/pkg/component/milvus"
)

// ChunkRecord is one embedded text chunk bound to its source post.
type ChunkRecord struct {
	// ID is the deterministic chunk id, "<source_id>-<ordinal>". Re-indexing
	// the same source overwrites in place.
	ID string
	// SourceID is the id of the post the chunk came from.
	SourceID string
	// Text is the chunk text as stored alongside the vector.
	Text string
	// Embedding is the chunk's embedding vector.
	Embedding []float32
}

// ScoredChunk is one similarity-search hit in rank order.
type ScoredChunk struct {
	SourceID string
	Text     string
	Score    float32
}

// VectorStore defines the knowledge-base index operations.
type VectorStore interface {
	// EnsureReady creates and loads the collection if needed.
	EnsureReady(ctx context.Context, dimension int) error

	// Upsert writes chunk records, overwriting by id.
	Upsert(ctx context.Context, records []ChunkRecord) error

	// Search returns up to topK chunks nearest to the vector, best first.
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)

	// DeleteBySource removes every chunk belonging to the given source.
	DeleteBySource(ctx context.Context, sourceID string) error
}

type milvusStore struct {
	client     *milvus.Client
	collection string
}

// NewMilvusStore creates a VectorStore over a Milvus client, bound to one
// collection.
func NewMilvusStore(client *milvus.Client, collection string) VectorStore {
	return &milvusStore{client: client, collection: collection}
}

func (s *milvusStore) EnsureReady(ctx context.Context, dimension int) error {
	return s.client.EnsureCollection(ctx, s.collection, dimension)
}

func (s *milvusStore) Upsert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	chunks := make([]milvus.Chunk, len(records))
	for i, rec := range records {
		chunks[i] = milvus.Chunk{
			ID:        rec.ID,
			SourceID:  rec.SourceID,
			Text:      rec.Text,
			Embedding: rec.Embedding,
		}
	}

	if err := s.client.Upsert(ctx, s.collection, chunks); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(chunks), err)
	}
	return nil
}

func (s *milvusStore) Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error) {
	hits, err := s.client.Search(ctx, s.collection, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]ScoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = ScoredChunk{
			SourceID: hit.SourceID,
			Text:     hit.Text,
			Score:    hit.Score,
		}
	}
	return results, nil
}

func (s *milvusStore) DeleteBySource(ctx context.Context, sourceID string) error {
	if err := s.client.DeleteBySource(ctx, s.collection, sourceID); err != nil {
		return fmt.Errorf("delete chunks for source %s: %w", sourceID, err)
	}
	return nil
}
