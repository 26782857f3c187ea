// Package store provides the persistence layer: relational stores backed by
// GORM/PostgreSQL and a vector store backed by Milvus.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/bloggy/internal/model"
)

// UserStore defines user persistence operations.
type UserStore interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the user with the given email, or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the user with the given id, or ErrUserNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// BlogStore defines blog persistence operations. All read paths exclude
// soft-deleted rows.
type BlogStore interface {
	// Create inserts a new post.
	Create(ctx context.Context, blog *model.Blog) error

	// List returns a page of posts, newest first, with author names resolved.
	List(ctx context.Context, page, limit int) ([]model.BlogItem, error)

	// Get returns one post by id, or ErrBlogNotFound if missing or deleted.
	Get(ctx context.Context, id string) (*model.BlogItem, error)

	// ListByAuthor returns all posts by the given author, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]model.BlogItem, error)

	// SoftDelete flags the post as deleted. Rows owned by someone else, or
	// already gone, are left untouched without error.
	SoftDelete(ctx context.Context, id, authorID string) error
}

// Factory bundles the relational stores sharing one database handle.
type Factory interface {
	Users() UserStore
	Blogs() BlogStore
}

type datastore struct {
	db *gorm.DB
}

// NewFactory creates a store factory over the given GORM handle and migrates
// the schema.
func NewFactory(db *gorm.DB) (Factory, error) {
	if err := db.AutoMigrate(&model.User{}, &model.Blog{}); err != nil {
		return nil, err
	}
	return &datastore{db: db}, nil
}

func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

func (ds *datastore) Blogs() BlogStore {
	return newBlogs(ds.db)
}
