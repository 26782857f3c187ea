// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/kart-io/bloggy/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions defines the configuration of one OpenAI-compatible provider
// endpoint. The service holds two instances: one for chat completions and one
// for embeddings, bound under the "chat" and "embedding" flag prefixes.
type ProviderOptions struct {
	// BaseURL is the API base address, e.g. "https://api.openai.com/v1".
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the bearer key sent with every request.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the model name to request.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds a single request, including streaming reads.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries for transient transport failures.
	// Chat and moderation paths run single-attempt (0).
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// Organization is the optional organization ID header.
	Organization string `json:"organization" mapstructure:"organization"`
}

// NewProviderOptions creates default provider options.
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		BaseURL: "https://api.openai.com/v1",
		Timeout: 120 * time.Second,
	}
}

// NewEmbeddingOptions creates default options for the embedding endpoint.
func NewEmbeddingOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "intfloat/multilingual-e5-large"
	return opts
}

// NewChatOptions creates default options for the chat endpoint.
func NewChatOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "gpt-4o-mini"
	return opts
}

// AddFlags adds flags for provider options to the specified FlagSet. The
// prefix distinguishes instances, e.g. "embedding" yields
// --embedding.base-url.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"max-retries", o.MaxRetries, "Retries for transient transport failures.")
	fs.StringVar(&o.Organization, options.Join(prefixes...)+"organization", o.Organization, "LLM organization ID (optional).")
}

// Validate validates the provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if o.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max-retries must be non-negative"))
	}
	return errs
}
