package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// BlogHandler serves the blog CRUD surface.
type BlogHandler struct {
	blogBiz *biz.Blog
	authBiz *biz.Auth
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(blogBiz *biz.Blog, authBiz *biz.Auth) *BlogHandler {
	return &BlogHandler{blogBiz: blogBiz, authBiz: authBiz}
}

// AddBlog handles POST /addblog: multipart form with title, content,
// createdAt, createdTime, and an optional image file.
func (h *BlogHandler) AddBlog(c *gin.Context) {
	user, err := h.authBiz.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	req := &biz.PublishRequest{
		Title:       c.PostForm("title"),
		Content:     c.PostForm("content"),
		CreatedDate: c.PostForm("createdAt"),
		CreatedTime: c.PostForm("createdTime"),
	}
	if req.Title == "" || req.Content == "" {
		writeError(c, errs.ErrInvalidParam.WithMessage("title and content are required"))
		return
	}

	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader.Filename != "" {
		file, err := fileHeader.Open()
		if err != nil {
			writeError(c, errs.ErrInvalidParam.WithMessage("unreadable image upload"))
			return
		}
		defer file.Close()
		req.Image = file
		req.ImageFilename = fileHeader.Filename
	}

	resp, err := h.blogBiz.Publish(c.Request.Context(), user.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBlogs handles GET /getblogs with page/limit query params.
func (h *BlogHandler) GetBlogs(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 5)

	list, err := h.blogBiz.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetBlog handles GET /getblog/:id.
func (h *BlogHandler) GetBlog(c *gin.Context) {
	item, err := h.blogBiz.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// MyBlogs handles GET /myblogs.
func (h *BlogHandler) MyBlogs(c *gin.Context) {
	user, err := h.authBiz.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	list, err := h.blogBiz.ListByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// DeleteBlog handles DELETE /deleteblog/:id. Deleting a missing or foreign
// post reports success without touching anything.
func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	user, err := h.authBiz.CurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.blogBiz.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
