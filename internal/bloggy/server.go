package bloggy

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/bloggy/handler"
	"github.com/kart-io/bloggy/internal/bloggy/router"
	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/pkg/upload"
	"github.com/kart-io/bloggy/pkg/component/milvus"
	"github.com/kart-io/bloggy/pkg/component/pool"
	"github.com/kart-io/bloggy/pkg/component/postgres"
	"github.com/kart-io/bloggy/pkg/component/redis"
	"github.com/kart-io/bloggy/pkg/component/storage"
	"github.com/kart-io/bloggy/pkg/llm"
	"github.com/kart-io/bloggy/pkg/llm/openai"
	llmopts "github.com/kart-io/bloggy/pkg/options/llm"
	"github.com/kart-io/bloggy/pkg/security/auth/jwt"
)

// Server holds the assembled service and everything it must release on
// shutdown.
type Server struct {
	opts      *Options
	http      *http.Server
	manager   *storage.Manager
	indexPool *pool.Pool
}

// NewServer wires the full service from validated options.
func NewServer(ctx context.Context, opts *Options) (*Server, error) {
	if err := opts.Log.Init(); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger.Infow("starting bloggy", "addr", opts.HTTP.Addr)

	healthPool, err := pool.New("health-check", pool.HealthCheckConfig())
	if err != nil {
		return nil, fmt.Errorf("create health-check pool: %w", err)
	}
	manager := storage.NewManagerWithPool(healthPool)

	pgClient, err := postgres.NewWithContext(ctx, opts.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	manager.MustRegister("postgres", pgClient)

	factory, err := store.NewFactory(pgClient.DB())
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	var redisClient *redis.Client
	if opts.Cache.Enabled {
		redisClient, err = redis.NewWithContext(ctx, opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		manager.MustRegister("redis", redisClient)
	}

	milvusClient, err := milvus.New(opts.Milvus)
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	manager.MustRegister("milvus", &milvusAdapter{client: milvusClient})

	vectors := store.NewMilvusStore(milvusClient, opts.RAG.Collection)
	if err := vectors.EnsureReady(ctx, opts.RAG.EmbeddingDim); err != nil {
		return nil, fmt.Errorf("prepare vector collection: %w", err)
	}

	var revocations jwt.Store
	if redisClient != nil {
		revocations = jwt.NewRedisStore(redisClient.Client(), "jwt:revoked:")
	} else {
		revocations = jwt.NewMemoryStore()
	}
	authn, err := jwt.New(jwt.WithOptions(opts.JWT), jwt.WithStore(revocations))
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}

	var embedder llm.EmbeddingProvider = openai.NewEmbeddingProvider(providerConfig(opts.Embedding))
	if redisClient != nil {
		embedder = llm.NewCachedEmbeddingProvider(embedder, redisClient.Client(), &llm.EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       opts.Cache.TTL,
			KeyPrefix: opts.Cache.KeyPrefix,
		})
	}
	chatProvider := openai.NewChatProvider(providerConfig(opts.Chat))

	saver, err := upload.NewSaver(opts.Upload.MediaRoot, opts.Upload.MaxBytes, opts.Upload.ChunkBytes, opts.Upload.AllowedExtensions)
	if err != nil {
		return nil, fmt.Errorf("prepare media root: %w", err)
	}

	indexPool, err := pool.New("indexer", pool.IndexConfig(opts.RAG.IndexWorkers))
	if err != nil {
		return nil, fmt.Errorf("create indexing pool: %w", err)
	}

	moderator := biz.NewModerator(chatProvider)
	indexer := biz.NewIndexer(vectors, embedder, &biz.IndexerConfig{
		ChunkSize:    opts.RAG.ChunkSize,
		ChunkOverlap: opts.RAG.ChunkOverlap,
	})
	retriever := biz.NewRetriever(vectors, embedder, opts.RAG.TopK)
	chat := biz.NewChat(chatProvider, retriever)
	authBiz := biz.NewAuth(factory.Users(), authn)
	blogBiz := biz.NewBlog(factory.Blogs(), moderator, indexer, saver, indexPool)

	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authBiz),
		Blog:   handler.NewBlogHandler(blogBiz, authBiz),
		Chat:   handler.NewChatHandler(chat),
		WS:     handler.NewWSHandler(chat, handler.NewSessionRegistry()),
		Health: handler.NewHealthHandler(manager),
	}
	engine := router.New(handlers, authn, saver.Root())

	return &Server{
		opts: opts,
		http: &http.Server{
			Addr:         opts.HTTP.Addr,
			Handler:      engine,
			ReadTimeout:  opts.HTTP.ReadTimeout,
			WriteTimeout: opts.HTTP.WriteTimeout,
			IdleTimeout:  opts.HTTP.IdleTimeout,
		},
		manager:   manager,
		indexPool: indexPool,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains connections and releases the
// component clients.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cleanup()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.cleanup()
	return err
}

func (s *Server) cleanup() {
	if err := s.indexPool.ReleaseTimeout(s.opts.ShutdownTimeout); err != nil {
		logger.Warnw("indexing pool did not drain", "error", err.Error())
	}
	if err := s.manager.CloseAll(); err != nil {
		logger.Warnw("component shutdown reported errors", "error", err.Error())
	}
}

// providerConfig maps provider options onto the OpenAI client config.
func providerConfig(o *llmopts.ProviderOptions) *openai.Config {
	return &openai.Config{
		BaseURL:      o.BaseURL,
		APIKey:       o.APIKey,
		Model:        o.Model,
		Timeout:      o.Timeout,
		MaxRetries:   o.MaxRetries,
		Organization: o.Organization,
	}
}

// milvusAdapter exposes the Milvus client through the storage.Client
// interface so the health endpoint can report on it.
type milvusAdapter struct {
	client *milvus.Client
}

func (a *milvusAdapter) Name() string { return "milvus" }

func (a *milvusAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *milvusAdapter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Close(ctx)
}

func (a *milvusAdapter) Health() storage.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.client.Ping(ctx)
	}
}
