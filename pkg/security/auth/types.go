// Package auth provides the authentication contract for the service.
//
// The flow:
//  1. Client provides credentials (email/password).
//  2. Authenticator.Sign() issues a Token for the verified subject.
//  3. The token is included in subsequent requests.
//  4. Authenticator.Verify() validates the token and extracts claims.
//  5. Claims are injected into the request context for use by handlers.
package auth

import (
	"context"
	"time"
)

// Authenticator defines the authentication interface.
type Authenticator interface {
	// Sign creates a new token for the given subject.
	Sign(ctx context.Context, subject string, opts ...SignOption) (Token, error)

	// Verify validates the token and returns the claims.
	// Returns an error if the token is invalid, expired, or revoked.
	Verify(ctx context.Context, tokenString string) (*Claims, error)

	// Refresh creates a new token using a valid existing token.
	Refresh(ctx context.Context, tokenString string) (Token, error)

	// Revoke invalidates the given token.
	Revoke(ctx context.Context, tokenString string) error

	// Type returns the authenticator type (e.g. "jwt").
	Type() string
}

// Token represents an authentication token with metadata.
type Token interface {
	GetAccessToken() string
	GetTokenType() string
	GetExpiresAt() int64
	GetExpiresIn() int64
}

// Claims represents the authentication claims extracted from a token.
type Claims struct {
	// Subject is the principal the token was issued for.
	Subject string `json:"sub"`

	// Issuer is the token issuer.
	Issuer string `json:"iss,omitempty"`

	// ExpiresAt is the expiration time (Unix timestamp).
	ExpiresAt int64 `json:"exp,omitempty"`

	// IssuedAt is the issue time (Unix timestamp).
	IssuedAt int64 `json:"iat,omitempty"`

	// NotBefore is the time before which the token is not valid.
	NotBefore int64 `json:"nbf,omitempty"`

	// ID is the unique identifier for the token.
	ID string `json:"jti,omitempty"`

	// Extra contains additional custom claims.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// SignOption is a functional option for signing tokens.
type SignOption func(*SignOptions)

// SignOptions contains options for token signing.
type SignOptions struct {
	// ExpiresAt overrides the default expiration time.
	ExpiresAt *time.Time

	// Extra contains additional claims to include in the token.
	Extra map[string]interface{}
}

// WithExpiresAt sets a custom expiration time.
func WithExpiresAt(t time.Time) SignOption {
	return func(o *SignOptions) {
		o.ExpiresAt = &t
	}
}

// WithExtra sets additional claims.
func WithExtra(extra map[string]interface{}) SignOption {
	return func(o *SignOptions) {
		o.Extra = extra
	}
}

// BaseToken is a basic Token implementation.
type BaseToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
	ExpiresIn   int64  `json:"expires_in"`
}

// GetAccessToken returns the access token.
func (t *BaseToken) GetAccessToken() string { return t.AccessToken }

// GetTokenType returns the token type.
func (t *BaseToken) GetTokenType() string { return t.TokenType }

// GetExpiresAt returns the expiration timestamp.
func (t *BaseToken) GetExpiresAt() int64 { return t.ExpiresAt }

// GetExpiresIn returns the seconds until expiration.
func (t *BaseToken) GetExpiresIn() int64 { return t.ExpiresIn }
