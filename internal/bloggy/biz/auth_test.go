package biz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/security/auth"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

func TestSignupHashesPassword(t *testing.T) {
	users := newMemUsers()
	authBiz := biz.NewAuth(users, &stubAuthn{})

	err := authBiz.Signup(context.Background(), &model.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	stored, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := newMemUsers()
	authBiz := biz.NewAuth(users, &stubAuthn{})

	req := &model.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "s3cret"}
	require.NoError(t, authBiz.Signup(context.Background(), req))

	err := authBiz.Signup(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrEmailExists)
}

func TestLoginIssuesLowercaseBearer(t *testing.T) {
	users := newMemUsers()
	authBiz := biz.NewAuth(users, &stubAuthn{})
	signUp(t, authBiz, "ada@example.com", "s3cret")

	resp, err := authBiz.Login(context.Background(), &model.LoginRequest{
		Email:    "ada@example.com",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-for-ada@example.com", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "Ada", resp.Name)
	assert.NotEmpty(t, resp.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMemUsers()
	authBiz := biz.NewAuth(users, &stubAuthn{})
	signUp(t, authBiz, "ada@example.com", "s3cret")

	_, err := authBiz.Login(context.Background(), &model.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	authBiz := biz.NewAuth(newMemUsers(), &stubAuthn{})

	_, err := authBiz.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})

	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestRefreshRotatesSession(t *testing.T) {
	authn := &stubAuthn{}
	authBiz := biz.NewAuth(newMemUsers(), authn)

	resp, err := authBiz.Refresh(context.Background(), "token-for-ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, "refreshed-token-for-ada@example.com", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, []string{"token-for-ada@example.com"}, authn.revoked)
}

func TestRefreshPropagatesFailure(t *testing.T) {
	authn := &stubAuthn{refreshErr: errs.ErrSessionExpired}
	authBiz := biz.NewAuth(newMemUsers(), authn)

	_, err := authBiz.Refresh(context.Background(), "stale-token")
	assert.ErrorIs(t, err, errs.ErrSessionExpired)
}

func TestLogoutRevokesToken(t *testing.T) {
	authn := &stubAuthn{}
	authBiz := biz.NewAuth(newMemUsers(), authn)

	require.NoError(t, authBiz.Logout(context.Background(), "some-token"))
	assert.Equal(t, []string{"some-token"}, authn.revoked)
}

func TestCurrentUserFromContext(t *testing.T) {
	users := newMemUsers()
	authBiz := biz.NewAuth(users, &stubAuthn{})
	signUp(t, authBiz, "ada@example.com", "s3cret")

	ctx := auth.InjectAuth(context.Background(), &auth.Claims{Subject: "ada@example.com"}, "tok")
	user, err := authBiz.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestCurrentUserMissingSubject(t *testing.T) {
	authBiz := biz.NewAuth(newMemUsers(), &stubAuthn{})

	_, err := authBiz.CurrentUser(context.Background())
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}

func signUp(t *testing.T, authBiz *biz.Auth, email, password string) {
	t.Helper()
	require.NoError(t, authBiz.Signup(context.Background(), &model.SignupRequest{
		Name:     "Ada",
		Email:    email,
		Password: password,
	}))
}
