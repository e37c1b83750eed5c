package api

import (
	"context"
	"fmt"

	"github.com/trezcool/shule/core/session"
)

// Client implements the session store's view of the auth surface.
var _ session.AuthAPI = (*Client)(nil)

func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var sess session.Session
	if err := c.post(ctx, "/auth/login/", payload, &sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (c *Client) Register(ctx context.Context, in session.RegisterInput) (session.Session, error) {
	var sess session.Session
	if err := c.post(ctx, "/auth/register/", in, &sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout/", nil, nil)
}

// Me verifies the stored token and fetches the identity it authorizes.
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var usr session.User
	if err := c.get(ctx, "/auth/me/", &usr); err != nil {
		return session.User{}, err
	}
	return usr, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload := struct {
		Email string `json:"email"`
	}{email}
	return c.post(ctx, "/auth/forgot-password/", payload, nil)
}

func (c *Client) ResetPassword(ctx context.Context, uid, token, password, passwordConfirm string) error {
	payload := struct {
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}{password, passwordConfirm}
	return c.post(ctx, fmt.Sprintf("/auth/reset-password/%s/%s/", uid, token), payload, nil)
}
