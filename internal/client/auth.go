package client

import (
	"babymassage/webapp/internal/domain"
	"context"
	"net/http"
	"net/url"
	"strings"
)

// TokenResponse is the backend's answer to a successful /token call.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsTeacher   bool   `json:"is_teacher"`
}

// Login exchanges credentials for a bearer token. The backend expects
// form-encoded fields named username and password.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/token",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsTeacher bool   `json:"is_teacher"`
}

// Register creates a new account. It does not log the account in.
func (c *Client) Register(ctx context.Context, username, email, password string, isTeacher bool) error {
	return c.postJSON(ctx, "/register", registerRequest{
		Username:  username,
		Email:     email,
		Password:  password,
		IsTeacher: isTeacher,
	}, nil)
}

// CurrentUser fetches the profile for the attached bearer token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
