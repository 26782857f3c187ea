package biz

import (
	"context"
	"io"
	"time"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"

	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/internal/pkg/upload"
	"github.com/kart-io/bloggy/pkg/component/pool"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// indexTimeout bounds one background indexing run.
const indexTimeout = 5 * time.Minute

// PublishRequest carries the form fields and optional image of a new post.
type PublishRequest struct {
	Title       string
	Content     string
	CreatedDate string
	CreatedTime string

	// Image is the uploaded file body, nil when no image was attached.
	Image io.Reader
	// ImageFilename is the client-supplied name, used for its extension.
	ImageFilename string
}

// Blog implements publishing, listing, and deletion of posts.
type Blog struct {
	blogs     store.BlogStore
	moderator *Moderator
	indexer   *Indexer
	saver     *upload.Saver
	indexPool *pool.Pool
}

// NewBlog creates the blog service. indexPool may be nil; indexing then runs
// synchronously on the request goroutine.
func NewBlog(blogs store.BlogStore, moderator *Moderator, indexer *Indexer, saver *upload.Saver, indexPool *pool.Pool) *Blog {
	return &Blog{
		blogs:     blogs,
		moderator: moderator,
		indexer:   indexer,
		saver:     saver,
		indexPool: indexPool,
	}
}

// Publish moderates the post, stores the optional image and the row, and
// schedules background indexing. Indexing failures are logged and never
// surface to the author.
func (b *Blog) Publish(ctx context.Context, authorID string, req *PublishRequest) (*model.AddBlogResponse, error) {
	if !b.moderator.Moderate(ctx, req.Title, req.Content) {
		return nil, errs.ErrModerationRejected
	}

	blogID := ulid.Make().String()

	var imageURL, imageName string
	if req.Image != nil {
		ext, err := b.saver.ValidateExtension(req.ImageFilename)
		if err != nil {
			return nil, err
		}
		imageName = blogID + ext
		if _, err := b.saver.Save(imageName, req.Image); err != nil {
			return nil, err
		}
		imageURL = "/media/" + imageName
	}

	blog := &model.Blog{
		ID:          blogID,
		AuthorID:    authorID,
		Title:       req.Title,
		Content:     req.Content,
		CreatedDate: req.CreatedDate,
		CreatedTime: req.CreatedTime,
		ImageURL:    imageURL,
	}
	if err := b.blogs.Create(ctx, blog); err != nil {
		if imageName != "" {
			if rmErr := b.saver.Remove(imageName); rmErr != nil {
				logger.Warnw("failed to remove orphaned image", "name", imageName, "error", rmErr.Error())
			}
		}
		return nil, err
	}

	b.scheduleIndex(blogID, req.Title+"\n\n"+req.Content)

	logger.Infow("blog published", "blog_id", blogID, "author_id", authorID)
	return &model.AddBlogResponse{
		Message:  "Blog created successfully",
		BlogID:   blogID,
		ImageURL: imageURL,
	}, nil
}

// scheduleIndex submits indexing to the worker pool. The post is already
// committed, so every failure here is log-only.
func (b *Blog) scheduleIndex(blogID, text string) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := b.indexer.Index(ctx, blogID, text); err != nil {
			logger.Errorw("background indexing failed", "blog_id", blogID, "error", err.Error())
		}
	}

	if b.indexPool == nil {
		task()
		return
	}
	if err := b.indexPool.Submit(task); err != nil {
		logger.Errorw("failed to schedule indexing", "blog_id", blogID, "error", err.Error())
	}
}

// List returns a page of published posts, newest first.
func (b *Blog) List(ctx context.Context, page, limit int) (*model.BlogList, error) {
	items, err := b.blogs.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.BlogItem{}
	}
	return &model.BlogList{Blogs: items}, nil
}

// Get returns one published post.
func (b *Blog) Get(ctx context.Context, id string) (*model.BlogItem, error) {
	return b.blogs.Get(ctx, id)
}

// ListByAuthor returns the author's own published posts.
func (b *Blog) ListByAuthor(ctx context.Context, authorID string) (*model.BlogList, error) {
	items, err := b.blogs.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.BlogItem{}
	}
	return &model.BlogList{Blogs: items}, nil
}

// Delete soft-deletes the post when owned by authorID and retracts its chunks
// from the knowledge base. Posts owned by others, and unknown ids, are a
// silent no-op.
func (b *Blog) Delete(ctx context.Context, id, authorID string) error {
	if err := b.blogs.SoftDelete(ctx, id, authorID); err != nil {
		return err
	}

	// Retraction is best-effort: the post is already hidden from readers.
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := b.indexer.Remove(ctx, id); err != nil {
			logger.Errorw("failed to retract chunks", "blog_id", id, "error", err.Error())
		}
	}
	if b.indexPool == nil {
		task()
		return nil
	}
	if err := b.indexPool.Submit(task); err != nil {
		logger.Errorw("failed to schedule retraction", "blog_id", id, "error", err.Error())
	}
	return nil
}
