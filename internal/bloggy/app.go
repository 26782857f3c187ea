package bloggy

import (
	"context"

	"github.com/kart-io/bloggy/pkg/app"
)

const (
	appName        = "bloggy"
	appDescription = `Bloggy blogging platform backend.

This server provides:
  - Account signup and login with bearer tokens
  - Blog publishing with LLM content moderation and image upload
  - A knowledge-grounded chat assistant over the published posts,
    streamed via JSON, NDJSON, or websocket`
)

// NewApp creates the bloggy application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Blogging platform backend with a RAG chat assistant"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return run(opts)
		}),
	)
}

func run(opts *Options) error {
	server, err := NewServer(context.Background(), opts)
	if err != nil {
		return err
	}
	return server.Run()
}
