// Package jwt implements bearer-token authentication for the blog API.
//
// Tokens are HMAC-signed JWTs whose subject is the account email. Logout
// revokes the presented token through a pluggable Store until its refresh
// window ends, so a revoked token can neither be verified nor refreshed.
//
// Configuration Example (YAML):
//
//	jwt:
//	  key: ${JWT_KEY}
//	  signing-method: "HS256"
//	  expired: "1h"
//	  max-refresh: "24h"
//	  issuer: "bloggy"
package jwt

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultSigningMethod is the default signing algorithm.
	DefaultSigningMethod = "HS256"

	// DefaultExpired is the default access-token lifetime.
	DefaultExpired = time.Hour

	// DefaultMaxRefresh bounds how long after issuance a token may still
	// be exchanged for a fresh one.
	DefaultMaxRefresh = 24 * time.Hour

	// DefaultIssuer is the iss claim stamped on every token.
	DefaultIssuer = "bloggy"

	// MinKeyLength is the minimum HMAC key length (512 bits).
	MinKeyLength = 64

	// RecommendedKeyLength is the key length warned towards (1024 bits).
	RecommendedKeyLength = 128

	// MaxKeyLength caps the key size.
	MaxKeyLength = 512
)

// SupportedSigningMethods lists the accepted HMAC algorithms. The service
// signs and verifies with a single shared secret; asymmetric methods are
// deliberately not offered.
var SupportedSigningMethods = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Options contains JWT configuration.
type Options struct {
	// Key is the shared HMAC secret. Minimum 64 characters.
	Key string `json:"key" mapstructure:"key"`

	// SigningMethod is one of HS256, HS384, HS512. Default: HS256.
	SigningMethod string `json:"signing-method" mapstructure:"signing-method"`

	// Expired is the access-token lifetime. Default: 1h.
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// MaxRefresh is how long after issuance a token can still be
	// refreshed; it also bounds revocation-entry TTLs. Default: 24h.
	MaxRefresh time.Duration `json:"max-refresh" mapstructure:"max-refresh"`

	// Issuer is the iss claim. Default: bloggy.
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		SigningMethod: DefaultSigningMethod,
		Expired:       DefaultExpired,
		MaxRefresh:    DefaultMaxRefresh,
		Issuer:        DefaultIssuer,
	}
}

// Validate validates the JWT options.
func (o *Options) Validate() error {
	if !SupportedSigningMethods[o.SigningMethod] {
		return fmt.Errorf("unsupported signing method: %s", o.SigningMethod)
	}

	if err := validateKey(o.Key); err != nil {
		return err
	}

	if o.Expired <= 0 {
		return fmt.Errorf("expired must be positive, got: %v", o.Expired)
	}
	if o.MaxRefresh <= 0 {
		return fmt.Errorf("max-refresh must be positive, got: %v", o.MaxRefresh)
	}
	if o.MaxRefresh < o.Expired {
		return fmt.Errorf("max-refresh (%v) must be >= expired (%v)", o.MaxRefresh, o.Expired)
	}

	return nil
}

// validateKey enforces HMAC key length bounds and warns on short keys.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("jwt key is required")
	}
	if len(key) < MinKeyLength {
		return fmt.Errorf("jwt key must be at least %d characters, got: %d",
			MinKeyLength, len(key))
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("jwt key must be at most %d characters, got: %d",
			MaxKeyLength, len(key))
	}
	if len(key) < RecommendedKeyLength {
		fmt.Fprintf(os.Stderr, "WARNING: JWT key length (%d) is below the recommended %d characters.\n",
			len(key), RecommendedKeyLength)
	}
	return nil
}

// Complete fills in default values for unset fields.
func (o *Options) Complete() error {
	if o.SigningMethod == "" {
		o.SigningMethod = DefaultSigningMethod
	}
	if o.Expired == 0 {
		o.Expired = DefaultExpired
	}
	if o.MaxRefresh == 0 {
		o.MaxRefresh = DefaultMaxRefresh
	}
	if o.Issuer == "" {
		o.Issuer = DefaultIssuer
	}
	return nil
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key,
		"JWT signing key (min 64 chars, 128 recommended)")
	fs.StringVar(&o.SigningMethod, "jwt.signing-method", o.SigningMethod,
		"JWT signing algorithm (HS256, HS384, HS512)")
	fs.DurationVar(&o.Expired, "jwt.expired", o.Expired,
		"JWT token expiration duration")
	fs.DurationVar(&o.MaxRefresh, "jwt.max-refresh", o.MaxRefresh,
		"Maximum duration a token can be refreshed after issuance")
	fs.StringVar(&o.Issuer, "jwt.issuer", o.Issuer,
		"JWT token issuer (iss claim)")
}
