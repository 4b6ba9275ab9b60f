package backend

import (
	"context"
	"net/http"

	"github.com/kquant/dashboard/internal/domain"
)

// Login exchanges credentials for tokens. The user is included in the response.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      req,
		fallback:  "로그인에 실패했습니다. 다시 시도해주세요.",
		anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      req,
		fallback:  "회원가입에 실패했습니다.",
		anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user behind the current token
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/auth/me",
		fallback: "사용자 정보를 불러오는데 실패했습니다",
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the backend to drop the token. Local teardown does not depend on it.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/logout",
		fallback: "로그아웃에 실패했습니다",
	}, nil)
}
