package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kart-io/bloggy/internal/model"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

type blogs struct {
	db *gorm.DB
}

func newBlogs(db *gorm.DB) *blogs {
	return &blogs{db: db}
}

// itemColumns projects blog rows into the public model.BlogItem shape. The
// aliases match the item's field names under GORM's snake_case mapping.
const itemColumns = "blogs.id, blogs.title, blogs.content, " +
	"blogs.created_date AS created_at, blogs.created_time AS created_time, " +
	"blogs.image_url AS image_url"

func (s *blogs) Create(ctx context.Context, blog *model.Blog) error {
	if err := s.db.WithContext(ctx).Create(blog).Error; err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

func (s *blogs) List(ctx context.Context, page, limit int) ([]model.BlogItem, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	var items []model.BlogItem
	err := s.db.WithContext(ctx).
		Model(&model.Blog{}).
		Select(itemColumns+", users.name AS author").
		Joins("JOIN users ON users.id = blogs.author_id").
		Where("blogs.is_deleted = ?", false).
		Order("blogs.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return items, nil
}

func (s *blogs) Get(ctx context.Context, id string) (*model.BlogItem, error) {
	var items []model.BlogItem
	err := s.db.WithContext(ctx).
		Model(&model.Blog{}).
		Select(itemColumns+", users.name AS author").
		Joins("JOIN users ON users.id = blogs.author_id").
		Where("blogs.id = ? AND blogs.is_deleted = ?", id, false).
		Limit(1).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	if len(items) == 0 {
		return nil, errs.ErrBlogNotFound
	}
	return &items[0], nil
}

func (s *blogs) ListByAuthor(ctx context.Context, authorID string) ([]model.BlogItem, error) {
	var items []model.BlogItem
	err := s.db.WithContext(ctx).
		Model(&model.Blog{}).
		Select(itemColumns).
		Where("blogs.author_id = ? AND blogs.is_deleted = ?", authorID, false).
		Order("blogs.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list blogs by author: %w", err)
	}
	return items, nil
}

func (s *blogs) SoftDelete(ctx context.Context, id, authorID string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Blog{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Update("is_deleted", true).Error
	if err != nil {
		return fmt.Errorf("soft delete blog: %w", err)
	}
	return nil
}

var _ BlogStore = (*blogs)(nil)
var _ UserStore = (*users)(nil)
