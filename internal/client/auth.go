package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// SignUpInput is checked locally before the request is sent.
type SignUpInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
}

type signInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type resetInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

// SignUp creates an account and signs in.
func (cl *Client) SignUp(ctx context.Context, in SignUpInput) (*domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in); err != nil {
		return nil, err
	}
	var s domain.Session
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/auth/register", body: in}, &s); err != nil {
		return nil, err
	}
	id := s.Identity()
	cl.setIdentity(ctx, SignedIn, &id)
	return &s, nil
}

func (cl *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	in := signInInput{Email: strings.TrimSpace(email), Password: password}
	if err := check(in); err != nil {
		return nil, err
	}
	var s domain.Session
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/auth/login", body: in}, &s); err != nil {
		return nil, err
	}
	id := s.Identity()
	cl.setIdentity(ctx, SignedIn, &id)
	return &s, nil
}

// SignOut revokes the session on the server. A token the server no longer
// accepts still signs out locally; any other failure keeps the session.
func (cl *Client) SignOut(ctx context.Context) error {
	if cl.Identity() == nil {
		return nil
	}
	err := cl.send(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/logout",
		body:   refreshInput{RefreshToken: cl.refreshToken()},
		auth:   true,
	}, nil)
	if err != nil && !errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}
	cl.setIdentity(ctx, SignedOut, nil)
	return nil
}

// Refresh exchanges the refresh token for a new pair. When the server rejects
// it the session is over and listeners get SignedOut.
func (cl *Client) Refresh(ctx context.Context) (*domain.TokenPair, error) {
	current := cl.Identity()
	if current == nil || current.RefreshToken == "" {
		return nil, apperrors.Unauthorized("not signed in")
	}
	var pair domain.TokenPair
	err := cl.send(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/refresh",
		body:   refreshInput{RefreshToken: current.RefreshToken},
	}, &pair)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			cl.setIdentity(ctx, SignedOut, nil)
		}
		return nil, err
	}
	current.AccessToken, current.RefreshToken = pair.AccessToken, pair.RefreshToken
	cl.setIdentity(ctx, TokenRefreshed, current)
	return &pair, nil
}

// ResetPassword asks the server to mail a reset token to email.
func (cl *Client) ResetPassword(ctx context.Context, email string) error {
	in := emailInput{Email: strings.TrimSpace(email)}
	if err := check(in); err != nil {
		return err
	}
	return cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/auth/forgot-password", body: in}, nil)
}

// ConfirmPasswordReset sets a new password with the mailed token.
func (cl *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	in := resetInput{Token: strings.TrimSpace(token), NewPassword: newPassword}
	if err := check(in); err != nil {
		return err
	}
	return cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/auth/reset-password", body: in}, nil)
}
