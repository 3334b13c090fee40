package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	p, err := jsonPayload(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return LoginResponse{}, err
	}

	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, p, &out); err != nil {
		return LoginResponse{}, fmt.Errorf("login: %w", err)
	}
	if err := c.tokens.SetTokens(out.Access, out.Refresh); err != nil {
		return LoginResponse{}, fmt.Errorf("store tokens: %w", err)
	}
	return out, nil
}

// RegisterInput is a new-account request. Email and names are optional.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register creates an account and stores its first token pair.
func (c *Client) Register(ctx context.Context, in RegisterInput) (RegisterResponse, error) {
	p, err := jsonPayload(in)
	if err != nil {
		return RegisterResponse{}, err
	}

	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, p, &out); err != nil {
		return RegisterResponse{}, fmt.Errorf("register: %w", err)
	}
	if err := c.tokens.SetTokens(out.Access, out.Refresh); err != nil {
		return RegisterResponse{}, fmt.Errorf("store tokens: %w", err)
	}
	return out, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, nil, &out); err != nil {
		return User{}, fmt.Errorf("fetch current user: %w", err)
	}
	return out, nil
}

// Logout discards the stored token pair. Purely local; the backend keeps
// no session state beyond the tokens themselves.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}
