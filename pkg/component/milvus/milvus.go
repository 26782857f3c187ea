// Package milvus wraps the Milvus v2 SDK with the collection shape used for
// blog chunk retrieval: caller-assigned chunk IDs, a source document ID for
// retraction, the chunk text, and a cosine-indexed embedding.
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	milvusopts "github.com/kart-io/bloggy/pkg/options/milvus"
)

const (
	fieldChunkID   = "chunk_id"
	fieldSourceID  = "source_id"
	fieldText      = "text"
	fieldEmbedding = "embedding"

	maxIDLen   = 64
	maxTextLen = 65535
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

// New connects to Milvus using the given options.
func New(opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{client: c, opts: opts}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// RawClient returns the underlying Milvus client.
func (c *Client) RawClient() *milvusclient.Client {
	return c.client
}

// Ping verifies the server is reachable by listing collections.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListCollections(ctx, milvusclient.NewListCollectionOption()); err != nil {
		return fmt.Errorf("milvus ping failed: %w", err)
	}
	return nil
}

// EnsureCollection creates and loads the chunk collection if it does not
// exist yet. Existing collections are left untouched.
func (c *Client) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return c.load(ctx, name)
	}

	schema := entity.NewSchema().
		WithName(name).
		WithDescription("blog content chunks for retrieval").
		WithAutoID(false).
		WithField(
			entity.NewField().
				WithName(fieldChunkID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxIDLen).
				WithIsPrimaryKey(true),
		).
		WithField(
			entity.NewField().
				WithName(fieldSourceID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxIDLen),
		).
		WithField(
			entity.NewField().
				WithName(fieldText).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxTextLen),
		).
		WithField(
			entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dimension)),
		)

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx := index.NewHNSWIndex(entity.COSINE, 16, 200)
	createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldEmbedding, idx))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := createIdxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	return c.load(ctx, name)
}

func (c *Client) load(ctx context.Context, name string) error {
	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}
	return nil
}

// Chunk is one embedded text chunk tied to a source document.
type Chunk struct {
	ID        string
	SourceID  string
	Text      string
	Embedding []float32
}

// Upsert writes chunks into the collection, replacing any rows that share
// a chunk ID, and flushes so they are searchable immediately.
func (c *Client) Upsert(ctx context.Context, collection string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
		sources[i] = ch.SourceID
		texts[i] = ch.Text
		vectors[i] = ch.Embedding
	}

	columns := []column.Column{
		column.NewColumnVarChar(fieldChunkID, ids),
		column.NewColumnVarChar(fieldSourceID, sources),
		column.NewColumnVarChar(fieldText, texts),
		column.NewColumnFloatVector(fieldEmbedding, len(vectors[0]), vectors),
	}

	if _, err := c.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(collection, columns...)); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	// Flush so newly published content is retrievable without waiting
	// for a background flush cycle.
	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collection))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}
	return nil
}

// Hit is a single similarity search result.
type Hit struct {
	ChunkID  string
	SourceID string
	Text     string
	Score    float32
}

// Search returns the topK chunks most similar to the query vector.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Hit, error) {
	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		collection,
		topK,
		[]entity.Vector{entity.FloatVector(vector)},
	).WithANNSField(fieldEmbedding).
		WithOutputFields(fieldSourceID, fieldText))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []Hit{}, nil
	}

	rs := results[0]
	hits := make([]Hit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		hit := Hit{Score: rs.Scores[i]}
		if idCol, ok := rs.IDs.(*column.ColumnVarChar); ok {
			hit.ChunkID = idCol.Data()[i]
		}
		for _, field := range rs.Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case fieldSourceID:
				hit.SourceID = col.Data()[i]
			case fieldText:
				hit.Text = col.Data()[i]
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteBySource removes every chunk belonging to one source document.
func (c *Client) DeleteBySource(ctx context.Context, collection, sourceID string) error {
	expr := fmt.Sprintf("%s == %s", fieldSourceID, strconv.Quote(sourceID))
	if _, err := c.client.Delete(ctx, milvusclient.NewDeleteOption(collection).WithExpr(expr)); err != nil {
		return fmt.Errorf("failed to delete chunks for source %s: %w", sourceID, err)
	}
	return nil
}

// DropCollection drops a collection.
func (c *Client) DropCollection(ctx context.Context, collection string) error {
	if err := c.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(collection)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// RowCount returns the number of entities in a collection.
func (c *Client) RowCount(ctx context.Context, collection string) (int64, error) {
	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(collection))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}
