package apiclient

import (
	"time"
)

// LoginRequest carries the credentials for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by the login, refresh and change-password
// endpoints. ExpiresIn is the access token lifetime in seconds; ExpiresAt
// is the absolute expiry, which the CLI stores in its session file.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// ExpiresInDuration returns the access token lifetime as a time.Duration.
func (t *TokenResponse) ExpiresInDuration() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	var resp TokenResponse
	err := c.post("/api/v1/auth/login", LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a fresh token pair. The server
// re-reads the user directory on refresh, so a removed user gets an
// authentication error here rather than new tokens.
func (c *Client) RefreshToken(refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	err := c.post("/api/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
