package remote

import (
	"context"
	"errors"
	"net/http"

	"propmedia/services/web/internal/entity"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type AuthResult struct {
	User        entity.User `json:"user"`
	Token       string      `json:"token"`
	AccessToken string      `json:"access_token"`
}

func (r *AuthResult) bearer() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	return c.authenticate(ctx, "auth.register", "/register", reg)
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "auth.login", "/login", creds)
}

func (c *Client) authenticate(ctx context.Context, operation, path string, payload interface{}) (*AuthResult, error) {
	req, err := jsonRequest(operation, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := c.doJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	result.Token = result.bearer()
	if result.Token == "" || result.User.ID == 0 {
		return nil, errors.New(operation + ": response has no user or token")
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{operation: "auth.logout", method: http.MethodPost, path: "/logout"})
	return err
}

// CurrentUser revalidates the token carried by ctx.
func (c *Client) CurrentUser(ctx context.Context) (*entity.User, error) {
	var user entity.User
	err := c.doJSON(ctx, request{operation: "auth.user", method: http.MethodGet, path: "/user"}, &user, "data", "user")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
