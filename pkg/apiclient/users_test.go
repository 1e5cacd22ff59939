package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/users", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]User{
			{Username: "jane", Groups: []string{"readers"}},
			{Username: "mark", Groups: []string{"admins"}},
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	users, err := client.ListUsers()

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "jane", users[0].Username)
	assert.Equal(t, "mark", users[1].Username)
}

func TestGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/users/jane", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(User{
			Username: "jane",
			Email:    "jane@example.com",
			Groups:   []string{"readers", "reviewers"},
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	user, err := client.GetUser("jane")

	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, []string{"readers", "reviewers"}, user.Groups)
}

func TestGetUser_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(APIError{
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: "User not found",
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	_, err := client.GetUser("ghost")

	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users", r.URL.Path)

		var req CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mark", req.Username)
		assert.Equal(t, "secret", req.Password)
		assert.Equal(t, "sha256", req.PasswordFormat)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(User{Username: "mark"})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	user, err := client.CreateUser(&CreateUserRequest{
		Username:       "mark",
		Password:       "secret",
		PasswordFormat: "sha256",
	})

	require.NoError(t, err)
	assert.Equal(t, "mark", user.Username)
}

func TestUpdateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/users/jane", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(User{Username: "jane", Groups: []string{"writers"}})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	user, err := client.UpdateUser("jane", &CreateUserRequest{
		Password: "new-secret",
		Groups:   []string{"writers"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"writers"}, user.Groups)
}

func TestDeleteUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/users/mark", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	require.NoError(t, client.DeleteUser("mark"))
}

func TestResetUserPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/mark/password", r.URL.Path)

		var req ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "new-secret", req.NewPassword)
		assert.Empty(t, req.CurrentPassword)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	require.NoError(t, client.ResetUserPassword("mark", "new-secret"))
}

func TestChangeOwnPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/me/password", r.URL.Path)

		var req ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-secret", req.CurrentPassword)
		assert.Equal(t, "new-secret", req.NewPassword)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			TokenType:    "Bearer",
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	tokens, err := client.ChangeOwnPassword("old-secret", "new-secret")

	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
}

func TestGetCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(User{Username: "jane"})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	user, err := client.GetCurrentUser()

	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
}
