// Package router assembles the gin engine and registers all routes.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/internal/bloggy/handler"
	"github.com/kart-io/bloggy/pkg/security/auth"
	"github.com/kart-io/bloggy/pkg/security/auth/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Blog   *handler.BlogHandler
	Chat   *handler.ChatHandler
	WS     *handler.WSHandler
	Health *handler.HealthHandler
}

// New builds the gin engine: recovery, CORS, request logging, static media
// serving, and the public and bearer-protected route groups.
func New(h *Handlers, authn auth.Authenticator, mediaRoot string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), cors(), requestLogger())

	engine.Static("/media", mediaRoot)

	engine.GET("/healthz", h.Health.Healthz)

	engine.POST("/signup", h.Auth.Signup)
	engine.POST("/login", h.Auth.Login)
	engine.POST("/refresh", h.Auth.Refresh)
	engine.GET("/getblogs", h.Blog.GetBlogs)
	engine.GET("/getblog/:id", h.Blog.GetBlog)

	engine.POST("/bot_call", h.Chat.BotCall)
	engine.POST("/bot_call_stream", h.Chat.BotCallStream)
	engine.GET("/ws/chat/:client_id", h.WS.Chat)

	authed := engine.Group("", middleware.GinAuthn(authn))
	authed.POST("/addblog", h.Blog.AddBlog)
	authed.GET("/myblogs", h.Blog.MyBlogs)
	authed.DELETE("/deleteblog/:id", h.Blog.DeleteBlog)
	authed.POST("/logout", h.Auth.Logout)

	logger.Info("routes registered")
	return engine
}

// cors allows the browser frontend to call the API from another origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// websocket upgrades and NDJSON streams log on completion like
		// everything else; latency then covers the whole stream
		logger.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}
