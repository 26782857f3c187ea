package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/security/auth"
	"github.com/kart-io/bloggy/pkg/security/auth/middleware"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// AuthHandler serves signup, login, and logout.
type AuthHandler struct {
	authBiz *biz.Auth
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authBiz *biz.Auth) *AuthHandler {
	return &AuthHandler{authBiz: authBiz}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.ErrInvalidParam.WithMessage(err.Error()))
		return
	}

	if err := h.authBiz.Signup(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, "done")
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.ErrInvalidParam.WithMessage(err.Error()))
		return
	}

	resp, err := h.authBiz.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /refresh. The presented token is rotated: a fresh
// one is returned and the old one is revoked. The route sits outside the
// authn middleware because a recently expired token is still refreshable.
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenString := middleware.ExtractBearerToken(c.Request)
	if tokenString == "" {
		writeError(c, errs.ErrInvalidToken)
		return
	}

	resp, err := h.authBiz.Refresh(c.Request.Context(), tokenString)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /logout. The presented token is revoked until its
// natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString := auth.TokenFromContext(c.Request.Context())
	if tokenString == "" {
		writeError(c, errs.ErrInvalidToken)
		return
	}

	if err := h.authBiz.Logout(c.Request.Context(), tokenString); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
