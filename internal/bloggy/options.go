// Package bloggy wires the blogging platform service: configuration,
// component clients, business services, and the HTTP server.
package bloggy

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	llmopts "github.com/kart-io/bloggy/pkg/options/llm"
	logopts "github.com/kart-io/bloggy/pkg/options/logger"
	milvusopts "github.com/kart-io/bloggy/pkg/options/milvus"
	pgopts "github.com/kart-io/bloggy/pkg/options/postgres"
	ragopts "github.com/kart-io/bloggy/pkg/options/rag"
	redisopts "github.com/kart-io/bloggy/pkg/options/redis"
	httpopts "github.com/kart-io/bloggy/pkg/options/server/http"
	uploadopts "github.com/kart-io/bloggy/pkg/options/upload"
	jwtopts "github.com/kart-io/bloggy/pkg/security/auth/jwt"
)

// CacheOptions configures the Redis-backed layer: the embedding cache and
// the token revocation store. When disabled the service runs without Redis,
// falling back to an in-memory revocation store.
type CacheOptions struct {
	Enabled   bool          `json:"enabled" mapstructure:"enabled"`
	TTL       time.Duration `json:"ttl" mapstructure:"ttl"`
	KeyPrefix string        `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewCacheOptions creates default cache options.
func NewCacheOptions() *CacheOptions {
	return &CacheOptions{
		Enabled:   false,
		TTL:       24 * time.Hour,
		KeyPrefix: "emb:",
	}
}

// Options contains all service configuration.
type Options struct {
	HTTP      *httpopts.Options        `json:"http" mapstructure:"http"`
	Log       *logopts.Options         `json:"log" mapstructure:"log"`
	Postgres  *pgopts.Options          `json:"postgres" mapstructure:"postgres"`
	Redis     *redisopts.Options       `json:"redis" mapstructure:"redis"`
	Milvus    *milvusopts.Options      `json:"milvus" mapstructure:"milvus"`
	JWT       *jwtopts.Options         `json:"jwt" mapstructure:"jwt"`
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	Chat      *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`
	RAG       *ragopts.Options         `json:"rag" mapstructure:"rag"`
	Upload    *uploadopts.Options      `json:"upload" mapstructure:"upload"`
	Cache     *CacheOptions            `json:"cache" mapstructure:"cache"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:            httpopts.NewOptions(),
		Log:             logopts.NewOptions(),
		Postgres:        pgopts.NewOptions(),
		Redis:           redisopts.NewOptions(),
		Milvus:          milvusopts.NewOptions(),
		JWT:             jwtopts.NewOptions(),
		Embedding:       llmopts.NewEmbeddingOptions(),
		Chat:            llmopts.NewChatOptions(),
		RAG:             ragopts.NewOptions(),
		Upload:          uploadopts.NewOptions(),
		Cache:           NewCacheOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags binds every option group to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.JWT.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.RAG.AddFlags(fs)
	o.Upload.AddFlags(fs)

	fs.BoolVar(&o.Cache.Enabled, "cache.enabled", o.Cache.Enabled, "Enable the Redis-backed embedding cache and revocation store.")
	fs.DurationVar(&o.Cache.TTL, "cache.ttl", o.Cache.TTL, "Embedding cache entry TTL.")
	fs.StringVar(&o.Cache.KeyPrefix, "cache.key-prefix", o.Cache.KeyPrefix, "Embedding cache key prefix.")

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete fills in derived defaults.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	return o.JWT.Complete()
}

// Validate checks every option group and reports all failures together.
func (o *Options) Validate() error {
	var errs []error

	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Postgres.Validate()...)
	errs = append(errs, o.Milvus.Validate()...)
	errs = append(errs, prefixErrors("embedding", o.Embedding.Validate())...)
	errs = append(errs, prefixErrors("chat", o.Chat.Validate())...)
	errs = append(errs, o.RAG.Validate()...)
	errs = append(errs, o.Upload.Validate()...)

	if err := o.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.JWT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Cache.Enabled {
		errs = append(errs, o.Redis.Validate()...)
		if o.Cache.TTL <= 0 {
			errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
		}
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}

	return errors.Join(errs...)
}

func prefixErrors(prefix string, in []error) []error {
	out := make([]error, 0, len(in))
	for _, err := range in {
		out = append(out, fmt.Errorf("%s: %w", prefix, err))
	}
	return out
}
