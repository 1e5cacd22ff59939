package apiclient

import (
	"fmt"
)

// User represents a credential directory entry as reported by the API.
// Password digests are never returned.
type User struct {
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

// CreateUserRequest is the request to create or replace a user.
//
// Exactly one of Password or PasswordDigest must be set. Password is hashed
// server-side with PasswordFormat (default bcrypt); PasswordDigest is stored
// verbatim and requires an explicit PasswordFormat.
type CreateUserRequest struct {
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	PasswordDigest string   `json:"password_digest,omitempty"`
	PasswordFormat string   `json:"password_format,omitempty"`
	Email          string   `json:"email,omitempty"`
	Groups         []string `json:"groups,omitempty"`
}

// ChangePasswordRequest is the request to change a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// ListUsers returns all users in document order.
func (c *Client) ListUsers() ([]User, error) {
	var users []User
	if err := c.get("/api/v1/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a user by username.
func (c *Client) GetUser(username string) (*User, error) {
	var user User
	if err := c.get(fmt.Sprintf("/api/v1/users/%s", username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user.
func (c *Client) CreateUser(req *CreateUserRequest) (*User, error) {
	var user User
	if err := c.post("/api/v1/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces an existing user's directory entry wholesale.
func (c *Client) UpdateUser(username string, req *CreateUserRequest) (*User, error) {
	var user User
	if err := c.put(fmt.Sprintf("/api/v1/users/%s", username), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(username string) error {
	return c.delete(fmt.Sprintf("/api/v1/users/%s", username), nil)
}

// ResetUserPassword resets a user's password (admin operation).
func (c *Client) ResetUserPassword(username, newPassword string) error {
	req := &ChangePasswordRequest{NewPassword: newPassword}
	return c.post(fmt.Sprintf("/api/v1/users/%s/password", username), req, nil)
}

// ChangeOwnPassword changes the current user's password.
// Returns new tokens that should be saved to update credentials.
func (c *Client) ChangeOwnPassword(currentPassword, newPassword string) (*TokenResponse, error) {
	req := &ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}
	var resp TokenResponse
	if err := c.post("/api/v1/users/me/password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCurrentUser returns the currently authenticated user.
func (c *Client) GetCurrentUser() (*User, error) {
	var user User
	if err := c.get("/api/v1/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
