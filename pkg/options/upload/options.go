// Package upload provides media upload configuration options.
package upload

import (
	"fmt"

	"github.com/kart-io/bloggy/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains media upload configuration.
type Options struct {
	// MediaRoot is the directory uploaded images are written to.
	MediaRoot string `json:"media-root" mapstructure:"media-root"`

	// MaxBytes is the hard cap on a single uploaded file.
	MaxBytes int64 `json:"max-bytes" mapstructure:"max-bytes"`

	// ChunkBytes is the copy buffer size used while streaming to disk.
	ChunkBytes int64 `json:"chunk-bytes" mapstructure:"chunk-bytes"`

	// AllowedExtensions lists the accepted file extensions, lowercased,
	// including the leading dot.
	AllowedExtensions []string `json:"allowed-extensions" mapstructure:"allowed-extensions"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		MediaRoot:         "media",
		MaxBytes:          5 * 1024 * 1024,
		ChunkBytes:        1024 * 1024,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

// AddFlags adds flags for upload options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.MediaRoot, options.Join(prefixes...)+"upload.media-root", o.MediaRoot, "Directory uploaded images are written to.")
	fs.Int64Var(&o.MaxBytes, options.Join(prefixes...)+"upload.max-bytes", o.MaxBytes, "Maximum size of a single uploaded file in bytes.")
	fs.Int64Var(&o.ChunkBytes, options.Join(prefixes...)+"upload.chunk-bytes", o.ChunkBytes, "Copy buffer size used while streaming uploads to disk.")
	fs.StringSliceVar(&o.AllowedExtensions, options.Join(prefixes...)+"upload.allowed-extensions", o.AllowedExtensions, "Accepted file extensions (with leading dot).")
}

// Validate validates the upload options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.MediaRoot == "" {
		errs = append(errs, fmt.Errorf("media-root is required"))
	}
	if o.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("max-bytes must be positive"))
	}
	if o.ChunkBytes <= 0 || o.ChunkBytes > o.MaxBytes {
		errs = append(errs, fmt.Errorf("chunk-bytes must be positive and no larger than max-bytes"))
	}
	if len(o.AllowedExtensions) == 0 {
		errs = append(errs, fmt.Errorf("at least one allowed extension is required"))
	}
	return errs
}
