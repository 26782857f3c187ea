package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/bloggy/pkg/security/auth"
)

func TestInjectAuthCarriesSubjectAndToken(t *testing.T) {
	ctx := auth.InjectAuth(context.Background(),
		&auth.Claims{Subject: "ada@example.com"}, "raw-token")

	assert.Equal(t, "ada@example.com", auth.SubjectFromContext(ctx))
	assert.Equal(t, "raw-token", auth.TokenFromContext(ctx))
}

func TestInjectAuthNilClaims(t *testing.T) {
	ctx := auth.InjectAuth(context.Background(), nil, "raw-token")

	assert.Empty(t, auth.SubjectFromContext(ctx))
	assert.Equal(t, "raw-token", auth.TokenFromContext(ctx))
}

func TestEmptyContextHasNoAuth(t *testing.T) {
	assert.Empty(t, auth.SubjectFromContext(context.Background()))
	assert.Empty(t, auth.TokenFromContext(context.Background()))
}
