package auth

import (
	"context"
)

// contextKey is the type for context keys in this package.
type contextKey string

const (
	// subjectKey holds the verified subject, the account email.
	subjectKey contextKey = "auth:subject"

	// tokenKey holds the raw bearer token, needed again at logout.
	tokenKey contextKey = "auth:token"
)

// ContextWithSubject returns a new context carrying the verified subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the verified subject, or "" when the request
// did not pass authentication.
func SubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}

// ContextWithToken returns a new context carrying the raw bearer token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw bearer token, or "" when absent.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// InjectAuth stores the outcome of token verification on the context: the
// subject for ownership checks and the raw token for revocation.
func InjectAuth(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = ContextWithToken(ctx, token)
	if claims != nil {
		ctx = ContextWithSubject(ctx, claims.Subject)
	}
	return ctx
}
