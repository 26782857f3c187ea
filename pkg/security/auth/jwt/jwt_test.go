package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bloggy/pkg/security/auth"
	"github.com/kart-io/bloggy/pkg/utils/errors"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newAuthenticator(t *testing.T, opts ...Option) *JWT {
	t.Helper()

	base := []Option{WithKey(testKey)}
	j, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return j
}

func TestSignAndVerify(t *testing.T) {
	j := newAuthenticator(t, WithIssuer("bloggy"))
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", token.GetTokenType())
	assert.NotEmpty(t, token.GetAccessToken())
	assert.Greater(t, token.GetExpiresAt(), time.Now().Unix())

	claims, err := j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
	assert.Equal(t, "bloggy", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestSignCarriesExtraClaims(t *testing.T) {
	j := newAuthenticator(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com",
		auth.WithExtra(map[string]interface{}{"name": "Ada"}))
	require.NoError(t, err)

	claims, err := j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Extra["name"])
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	j := newAuthenticator(t)

	_, err := j.Verify(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	issuing := newAuthenticator(t)

	otherKey := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	verifying := newAuthenticator(t, WithKey(otherKey))

	token, err := issuing.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = verifying.Verify(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyRejectsAlgorithmMismatch(t *testing.T) {
	ctx := context.Background()
	hs384 := newAuthenticator(t, WithSigningMethod("HS384"))
	hs256 := newAuthenticator(t)

	token, err := hs384.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = hs256.Verify(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	j := newAuthenticator(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com",
		auth.WithExpiresAt(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = j.Verify(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestRevokedTokenFailsVerification(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newAuthenticator(t, WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, j.Revoke(ctx, token.GetAccessToken()))

	_, err = j.Verify(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestRevokeRequiresStore(t *testing.T) {
	j := newAuthenticator(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	err = j.Revoke(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrNotImplemented)
}

func TestRefreshRotatesToken(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newAuthenticator(t, WithStore(store))
	ctx := context.Background()

	original, err := j.Sign(ctx, "ada@example.com",
		auth.WithExtra(map[string]interface{}{"name": "Ada"}))
	require.NoError(t, err)

	refreshed, err := j.Refresh(ctx, original.GetAccessToken())
	require.NoError(t, err)
	assert.NotEqual(t, original.GetAccessToken(), refreshed.GetAccessToken())

	// the replacement verifies and keeps the subject and extras
	claims, err := j.Verify(ctx, refreshed.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
	assert.Equal(t, "Ada", claims.Extra["name"])

	// the superseded token cannot be used or refreshed again
	_, err = j.Verify(ctx, original.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
	_, err = j.Refresh(ctx, original.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestRefreshAcceptsExpiredTokenInsideWindow(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newAuthenticator(t, WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com",
		auth.WithExpiresAt(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	refreshed, err := j.Refresh(ctx, token.GetAccessToken())
	require.NoError(t, err)

	claims, err := j.Verify(ctx, refreshed.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
}

func TestRefreshRejectsTokenPastWindow(t *testing.T) {
	j := newAuthenticator(t,
		WithExpired(5*time.Millisecond),
		WithMaxRefresh(10*time.Millisecond))
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = j.Refresh(ctx, token.GetAccessToken())
	assert.ErrorIs(t, err, errors.ErrSessionExpired)
}

func TestRevokePastWindowIsNoop(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newAuthenticator(t,
		WithExpired(5*time.Millisecond),
		WithMaxRefresh(10*time.Millisecond),
		WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "ada@example.com")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, j.Revoke(ctx, token.GetAccessToken()))
	assert.Equal(t, 0, store.Size())
}

func TestNewRejectsWeakKey(t *testing.T) {
	_, err := New(WithKey("too-short"))
	assert.Error(t, err)
}

func TestNewRejectsAsymmetricMethod(t *testing.T) {
	_, err := New(WithKey(testKey), WithSigningMethod("RS256"))
	assert.Error(t, err)
}
