package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/pkg/textutil"
	"github.com/kart-io/bloggy/pkg/llm"
)

// IndexerConfig configures the knowledge indexer.
type IndexerConfig struct {
	// ChunkSize is the maximum number of tokens per chunk.
	ChunkSize int
	// ChunkOverlap is the number of tokens shared by consecutive chunks.
	ChunkOverlap int
}

// Indexer turns published posts into embedded chunks in the vector store.
type Indexer struct {
	vectors  store.VectorStore
	embedder llm.EmbeddingProvider
	config   *IndexerConfig
}

// NewIndexer creates an Indexer.
func NewIndexer(vectors store.VectorStore, embedder llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	return &Indexer{
		vectors:  vectors,
		embedder: embedder,
		config:   config,
	}
}

// Chunk splits text into overlapping token windows.
func (i *Indexer) Chunk(text string) []string {
	return textutil.SplitIntoChunks(text, i.config.ChunkSize, i.config.ChunkOverlap)
}

// Index chunks the text, embeds every chunk in one batched call, and upserts
// the records keyed by "<sourceID>-<ordinal>". Re-running for the same source
// overwrites the previous records.
func (i *Indexer) Index(ctx context.Context, sourceID, text string) error {
	chunks := i.Chunk(text)
	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := i.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	records := make([]store.ChunkRecord, len(chunks))
	for idx, chunk := range chunks {
		records[idx] = store.ChunkRecord{
			ID:        fmt.Sprintf("%s-%d", sourceID, idx),
			SourceID:  sourceID,
			Text:      chunk,
			Embedding: embeddings[idx],
		}
	}

	return i.vectors.Upsert(ctx, records)
}

// Remove retracts every chunk belonging to the source from the index.
func (i *Indexer) Remove(ctx context.Context, sourceID string) error {
	return i.vectors.DeleteBySource(ctx, sourceID)
}
