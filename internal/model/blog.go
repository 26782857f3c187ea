package model

import "time"

// Blog represents a published post. Deletion is a soft flag: flagged rows are
// hidden from every public read path but retained in the table.
type Blog struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	AuthorID    string    `json:"author_id" gorm:"size:32;index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	CreatedDate string    `json:"created_date" gorm:"size:16"` // "2006-01-02"
	CreatedTime string    `json:"created_time" gorm:"size:16"` // "15:04:05"
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	IsDeleted   bool      `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (b *Blog) TableName() string {
	return "blogs"
}

// BlogItem is the public rendering of a post, including the author name
// resolved by the store.
type BlogItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedAt   string `json:"createdAt"`
	Author      string `json:"author"`
	CreatedTime string `json:"createdTime"`
	ImageURL    string `json:"imageUrl"`
}

// BlogList wraps a page of rendered posts.
type BlogList struct {
	Blogs []BlogItem `json:"blogs"`
}

// AddBlogResponse is returned after a successful publish.
type AddBlogResponse struct {
	Message  string `json:"message"`
	BlogID   string `json:"blog_id"`
	ImageURL string `json:"image_url"`
}
