package biz

import (
	"context"
	"errors"
	"strings"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/bloggy/internal/bloggy/store"
	"github.com/kart-io/bloggy/internal/model"
	"github.com/kart-io/bloggy/pkg/security/auth"
	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// Auth implements signup, login, and logout.
type Auth struct {
	users store.UserStore
	authn auth.Authenticator
}

// NewAuth creates the credential service.
func NewAuth(users store.UserStore, authn auth.Authenticator) *Auth {
	return &Auth{users: users, authn: authn}
}

// Signup registers a new account with a bcrypt-hashed password. Duplicate
// emails are rejected.
func (a *Auth) Signup(ctx context.Context, req *model.SignupRequest) error {
	if _, err := a.users.GetByEmail(ctx, req.Email); err == nil {
		return errs.ErrEmailExists
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errs.ErrInternal.WithCause(err)
	}

	user := &model.User{
		ID:       ulid.Make().String(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(digest),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return err
	}

	logger.Infow("user registered", "user_id", user.ID, "email", user.Email)
	return nil
}

// Login verifies the credentials and issues a bearer token with the email as
// subject. Unknown email and wrong password are indistinguishable to the
// caller.
func (a *Auth) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}

	token, err := a.authn.Sign(ctx, user.Email)
	if err != nil {
		return nil, errs.ErrInternal.WithCause(err)
	}

	logger.Infow("user logged in", "user_id", user.ID)
	return &model.LoginResponse{
		AccessToken: token.GetAccessToken(),
		TokenType:   strings.ToLower(token.GetTokenType()),
		UserID:      user.ID,
		Name:        user.Name,
	}, nil
}

// Refresh exchanges the presented token for a fresh one. The old token is
// revoked so a leaked token stops working after its holder rotates it.
func (a *Auth) Refresh(ctx context.Context, tokenString string) (*model.RefreshResponse, error) {
	token, err := a.authn.Refresh(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &model.RefreshResponse{
		AccessToken: token.GetAccessToken(),
		TokenType:   strings.ToLower(token.GetTokenType()),
	}, nil
}

// Logout revokes the presented token; it stays rejected until its natural
// expiry.
func (a *Auth) Logout(ctx context.Context, tokenString string) error {
	return a.authn.Revoke(ctx, tokenString)
}

// CurrentUser resolves the authenticated account from the verified claims in
// the request context.
func (a *Auth) CurrentUser(ctx context.Context) (*model.User, error) {
	email := auth.SubjectFromContext(ctx)
	if email == "" {
		return nil, errs.ErrInvalidToken
	}
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
