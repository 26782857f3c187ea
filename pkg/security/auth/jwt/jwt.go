package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/pkg/security/auth"
	"github.com/kart-io/bloggy/pkg/utils/errors"
)

// JWT implements auth.Authenticator with HMAC-signed tokens. The subject
// of every token is the account email; logout and refresh both record the
// superseded token in the revocation store.
type JWT struct {
	opts   *Options
	store  Store
	method jwt.SigningMethod
}

// Option is a functional option for the JWT authenticator.
type Option func(*JWT)

// New creates a JWT authenticator. Options are validated and completed;
// an invalid key or algorithm fails construction rather than first use.
func New(opts ...Option) (*JWT, error) {
	j := &JWT{
		opts: NewOptions(),
	}

	for _, opt := range opts {
		opt(j)
	}

	if err := j.opts.Complete(); err != nil {
		return nil, err
	}
	if err := j.opts.Validate(); err != nil {
		return nil, err
	}

	j.method = jwt.GetSigningMethod(j.opts.SigningMethod)

	return j, nil
}

// WithOptions replaces the full option set.
func WithOptions(opts *Options) Option {
	return func(j *JWT) {
		if opts != nil {
			j.opts = opts
		}
	}
}

// WithKey sets the HMAC signing key.
func WithKey(key string) Option {
	return func(j *JWT) {
		j.opts.Key = key
	}
}

// WithSigningMethod sets the signing algorithm.
func WithSigningMethod(method string) Option {
	return func(j *JWT) {
		j.opts.SigningMethod = method
	}
}

// WithExpired sets the access-token lifetime.
func WithExpired(d time.Duration) Option {
	return func(j *JWT) {
		j.opts.Expired = d
	}
}

// WithMaxRefresh sets the refresh window measured from issuance.
func WithMaxRefresh(d time.Duration) Option {
	return func(j *JWT) {
		j.opts.MaxRefresh = d
	}
}

// WithIssuer sets the iss claim.
func WithIssuer(issuer string) Option {
	return func(j *JWT) {
		j.opts.Issuer = issuer
	}
}

// WithStore sets the revocation store. Without a store, Verify never
// reports revocation and Revoke returns ErrNotImplemented.
func WithStore(store Store) Option {
	return func(j *JWT) {
		j.store = store
	}
}

// Type returns the authenticator type.
func (j *JWT) Type() string {
	return "jwt"
}

// customClaims carries registered claims plus service-specific extras.
type customClaims struct {
	jwt.RegisteredClaims
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Sign issues a token for the subject. The returned token type is
// "Bearer"; callers present it in the Authorization header.
func (j *JWT) Sign(ctx context.Context, subject string, opts ...auth.SignOption) (auth.Token, error) {
	signOpts := &auth.SignOptions{}
	for _, opt := range opts {
		opt(signOpts)
	}

	now := time.Now()
	expiresAt := now.Add(j.opts.Expired)
	if signOpts.ExpiresAt != nil {
		expiresAt = *signOpts.ExpiresAt
	}

	tokenID, err := generateTokenID()
	if err != nil {
		return nil, err
	}

	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.opts.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        tokenID,
		},
		Extra: signOpts.Extra,
	}

	token := jwt.NewWithClaims(j.method, claims)

	signed, err := token.SignedString([]byte(j.opts.Key))
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to sign token")
	}

	return &auth.BaseToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Verify validates a token and returns its claims. Revoked tokens are
// rejected when a store is configured.
func (j *JWT) Verify(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, errors.ErrInvalidToken.WithMessage("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &customClaims{}, j.keyFunc)
	if err != nil {
		return nil, j.mapParseError(err)
	}
	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return nil, errors.ErrInvalidToken.WithMessage("invalid claims type")
	}

	if j.store != nil {
		revoked, err := j.store.IsRevoked(ctx, tokenString)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to check token revocation")
		}
		if revoked {
			return nil, errors.ErrTokenRevoked
		}
	}

	return toAuthClaims(claims), nil
}

// Refresh exchanges a token for a fresh one. The presented token may be
// expired as long as its issuance is still inside the refresh window;
// the old token is revoked so it cannot be replayed.
func (j *JWT) Refresh(ctx context.Context, tokenString string) (auth.Token, error) {
	claims, err := j.verifyForRefresh(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	j.revokeOldToken(ctx, tokenString, claims)

	signOpts := []auth.SignOption{}
	if len(claims.Extra) > 0 {
		signOpts = append(signOpts, auth.WithExtra(claims.Extra))
	}

	return j.Sign(ctx, claims.Subject, signOpts...)
}

// verifyForRefresh validates a token for refresh purposes. Expiry is
// tolerated; signature, revocation, and the refresh window are not.
func (j *JWT) verifyForRefresh(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, errors.ErrInvalidToken.WithMessage("token is empty")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &customClaims{}, j.keyFunc)
	if err != nil {
		return nil, j.mapParseError(err)
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return nil, errors.ErrInvalidToken.WithMessage("invalid claims type")
	}
	if claims.IssuedAt == nil {
		return nil, errors.ErrInvalidToken.WithMessage("missing issued at claim")
	}

	if time.Since(claims.IssuedAt.Time) > j.opts.MaxRefresh {
		return nil, errors.ErrSessionExpired.WithMessage("token refresh window expired")
	}

	if j.store != nil {
		revoked, err := j.store.IsRevoked(ctx, tokenString)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err).WithMessage("failed to check token revocation")
		}
		if revoked {
			return nil, errors.ErrTokenRevoked
		}
	}

	return toAuthClaims(claims), nil
}

// revokeOldToken retires the token being refreshed. Failure is logged
// rather than surfaced: the caller already holds a valid session and the
// entry expires on its own at the end of the refresh window.
func (j *JWT) revokeOldToken(ctx context.Context, tokenString string, claims *auth.Claims) {
	if j.store == nil {
		return
	}

	ttl := time.Until(time.Unix(claims.IssuedAt, 0).Add(j.opts.MaxRefresh))
	if ttl <= 0 {
		return
	}

	if err := j.store.Revoke(ctx, tokenString, ttl); err != nil {
		logger.Warnw("failed to revoke old token during refresh",
			"token_prefix", tokenPrefix(tokenString),
			"error", err,
		)
	}
}

// Revoke invalidates a token, as on logout. The revocation entry lives
// until the end of the token's refresh window, after which the token can
// no longer be refreshed anyway.
func (j *JWT) Revoke(ctx context.Context, tokenString string) error {
	if j.store == nil {
		return errors.ErrNotImplemented.WithMessage("token revocation requires a store")
	}
	if tokenString == "" {
		return errors.ErrInvalidToken.WithMessage("token is empty")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &customClaims{}, j.keyFunc)
	if err != nil {
		return j.mapParseError(err)
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok {
		return errors.ErrInvalidToken.WithMessage("invalid claims type")
	}
	if claims.IssuedAt == nil {
		return errors.ErrInvalidToken.WithMessage("missing issued at claim")
	}

	ttl := time.Until(claims.IssuedAt.Time.Add(j.opts.MaxRefresh))
	if ttl <= 0 {
		// Past the refresh window the token is dead on its own.
		return nil
	}

	return j.store.Revoke(ctx, tokenString, ttl)
}

// keyFunc hands the shared secret to the parser after checking that the
// token was signed with the configured HMAC algorithm.
func (j *JWT) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != j.method.Alg() {
		return nil, errors.ErrInvalidToken.WithMessagef("unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(j.opts.Key), nil
}

// toAuthClaims converts parsed claims into the transport-neutral form.
func toAuthClaims(claims *customClaims) *auth.Claims {
	out := &auth.Claims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		ID:      claims.ID,
		Extra:   claims.Extra,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.NotBefore != nil {
		out.NotBefore = claims.NotBefore.Unix()
	}
	return out
}

// mapParseError maps jwt parse failures to structured errors.
func (j *JWT) mapParseError(err error) *errors.Errno {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		return errors.ErrTokenExpired
	case strings.Contains(msg, "signature is invalid"):
		return errors.ErrInvalidToken.WithMessage("invalid signature")
	case strings.Contains(msg, "malformed"):
		return errors.ErrInvalidToken.WithMessage("malformed token")
	case strings.Contains(msg, "not valid yet"):
		return errors.ErrInvalidToken.WithMessage("token not valid yet")
	default:
		return errors.ErrInvalidToken.WithCause(err)
	}
}

// generateTokenID returns a random 128-bit hex token ID.
func generateTokenID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.ErrInternal.WithCause(err).WithMessage("failed to generate token ID")
	}
	return hex.EncodeToString(b), nil
}

// tokenPrefix returns a short loggable prefix of a token.
func tokenPrefix(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
