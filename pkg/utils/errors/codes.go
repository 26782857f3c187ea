package errors

import "net/http"

// Service codes (AA).
const (
	ServiceCommon = 0
	ServiceUser   = 2
	ServiceBlog   = 20
	ServiceChat   = 21
)

// Category codes (BB).
const (
	CategoryRequest    = 1
	CategoryAuth       = 2
	CategoryResource   = 4
	CategoryConflict   = 5
	CategoryInternal   = 7
	CategoryDatabase   = 8
	CategoryModeration = 13
)

// Common errors.
var (
	ErrInvalidParam   = New(MakeCode(ServiceCommon, CategoryRequest, 1), http.StatusBadRequest, "invalid parameter")
	ErrInternal       = New(MakeCode(ServiceCommon, CategoryInternal, 1), http.StatusInternalServerError, "internal server error")
	ErrNotImplemented = New(MakeCode(ServiceCommon, CategoryInternal, 2), http.StatusNotImplemented, "not implemented")
	ErrDatabase       = New(MakeCode(ServiceCommon, CategoryDatabase, 1), http.StatusInternalServerError, "database error")
)

// Authentication errors.
var (
	ErrInvalidToken       = New(MakeCode(ServiceUser, CategoryAuth, 1), http.StatusUnauthorized, "invalid token")
	ErrTokenExpired       = New(MakeCode(ServiceUser, CategoryAuth, 2), http.StatusUnauthorized, "token expired")
	ErrTokenRevoked       = New(MakeCode(ServiceUser, CategoryAuth, 3), http.StatusUnauthorized, "token revoked")
	ErrSessionExpired     = New(MakeCode(ServiceUser, CategoryAuth, 4), http.StatusUnauthorized, "session expired")
	ErrInvalidCredentials = New(MakeCode(ServiceUser, CategoryAuth, 5), http.StatusBadRequest, "invalid credentials")
)

// User errors.
var (
	ErrEmailExists  = New(MakeCode(ServiceUser, CategoryConflict, 1), http.StatusBadRequest, "email already registered")
	ErrUserNotFound = New(MakeCode(ServiceUser, CategoryResource, 1), http.StatusBadRequest, "invalid credentials")
)

// Blog errors.
var (
	ErrBlogNotFound       = New(MakeCode(ServiceBlog, CategoryResource, 1), http.StatusNotFound, "blog not found")
	ErrImageType          = New(MakeCode(ServiceBlog, CategoryRequest, 1), http.StatusBadRequest, "unsupported image type")
	ErrImageTooLarge      = New(MakeCode(ServiceBlog, CategoryRequest, 2), http.StatusRequestEntityTooLarge, "image exceeds maximum size")
	ErrModerationRejected = New(MakeCode(ServiceBlog, CategoryModeration, 1), http.StatusGone, "content rejected by moderation")
)
