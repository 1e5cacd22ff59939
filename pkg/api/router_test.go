package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/depot/pkg/api/auth"
	"github.com/marmos91/depot/pkg/api/handlers"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/store/blob"
	"github.com/marmos91/depot/pkg/store/blob/memory"
)

const testRouterSecret = "test-secret-key-that-is-at-least-32-characters-long"

// setupRouter builds a router over a fresh in-memory credential store with
// one admin ("root"/"root-pass") and one regular user ("jane"/"jane-pass").
func setupRouter(t *testing.T) (http.Handler, *credentials.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	bs := memory.NewMemoryBlobStore()
	store := credentials.NewCredentialStore(bs, blob.Key("_credentials.yaml"), nil)
	gate := credentials.NewGate(store, nil)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testRouterSecret, Issuer: "test"})
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}

	admin := credentials.User{Name: "root", Groups: []string{auth.AdminGroup}}
	if err := store.AddPassword(ctx, admin, "root-pass", credentials.FormatSHA256); err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}
	user := credentials.User{Name: "jane", Email: "jane@example.com", Groups: []string{"readers"}}
	if err := store.AddPassword(ctx, user, "jane-pass", credentials.FormatSHA256); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	router, err := NewRouter(store, gate, jwtService, bs, "memory")
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}
	return router, store
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// login authenticates against the router and returns the token pair.
func login(t *testing.T, router http.Handler, username, password string) handlers.LoginResponse {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{
		Username: username,
		Password: password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Login for %q failed with status %d: %s", username, rr.Code, rr.Body.String())
	}

	var resp handlers.LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return resp
}

func TestRouter_Login(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp := login(t, router, "jane", "jane-pass")
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("Expected non-empty token pair")
		}
		if resp.TokenType != "Bearer" {
			t.Errorf("Expected token type 'Bearer', got %q", resp.TokenType)
		}
		if resp.User.Username != "jane" {
			t.Errorf("Expected user 'jane', got %q", resp.User.Username)
		}
		if resp.User.Email != "jane@example.com" {
			t.Errorf("Expected email to round trip, got %q", resp.User.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{
			Username: "jane", Password: "wrong",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{
			Username: "ghost", Password: "whatever",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})
}

func TestRouter_Refresh(t *testing.T) {
	router, _ := setupRouter(t)
	tokens := login(t, router, "jane", "jane-pass")

	t.Run("valid refresh token", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", handlers.RefreshRequest{
			RefreshToken: tokens.RefreshToken,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}

		var resp handlers.LoginResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("Expected new access token")
		}
	})

	t.Run("access token rejected", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", handlers.RefreshRequest{
			RefreshToken: tokens.AccessToken,
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})
}

func TestRouter_Me(t *testing.T) {
	router, _ := setupRouter(t)
	tokens := login(t, router, "jane", "jane-pass")

	t.Run("authenticated", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
		}

		var resp handlers.UserResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Username != "jane" {
			t.Errorf("Expected username 'jane', got %q", resp.Username)
		}
	})

	t.Run("no token", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})
}

func TestRouter_UserManagement(t *testing.T) {
	router, store := setupRouter(t)
	adminTokens := login(t, router, "root", "root-pass")
	userTokens := login(t, router, "jane", "jane-pass")

	t.Run("list requires admin", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/users", userTokens.AccessToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected status %d, got %d", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("list as admin", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/users", adminTokens.AccessToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
		}

		var users []handlers.UserResponse
		if err := json.NewDecoder(rr.Body).Decode(&users); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("Expected 2 users, got %d", len(users))
		}
		// Document order is insertion order
		if users[0].Username != "root" || users[1].Username != "jane" {
			t.Errorf("Unexpected user order: %v", users)
		}
	})

	t.Run("create user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users", adminTokens.AccessToken, handlers.CreateUserRequest{
			Username: "mark",
			Password: "mark-pass",
			Groups:   []string{"writers"},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
		}

		// New user can log in immediately
		login(t, router, "mark", "mark-pass")
	})

	t.Run("create duplicate conflicts", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users", adminTokens.AccessToken, handlers.CreateUserRequest{
			Username: "jane",
			Password: "other",
		})
		if rr.Code != http.StatusConflict {
			t.Errorf("Expected status %d, got %d", http.StatusConflict, rr.Code)
		}
	})

	t.Run("create with bad format rejected", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users", adminTokens.AccessToken, handlers.CreateUserRequest{
			Username:       "eve",
			Password:       "pw",
			PasswordFormat: "scrypt",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("get self as non-admin", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/users/jane", userTokens.AccessToken, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
		}
	})

	t.Run("get other as non-admin forbidden", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/v1/users/root", userTokens.AccessToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected status %d, got %d", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("update replaces entry", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPut, "/api/v1/users/jane", adminTokens.AccessToken, handlers.CreateUserRequest{
			Password: "jane-pass-2",
			Groups:   []string{"writers"},
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}

		// Replacement, not merge: the email is gone and the old password no longer works
		user, err := store.Find(context.Background(), "jane")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if user.Email != "" {
			t.Errorf("Expected email cleared by replacement, got %q", user.Email)
		}

		login(t, router, "jane", "jane-pass-2")
	})

	t.Run("update missing user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPut, "/api/v1/users/ghost", adminTokens.AccessToken, handlers.CreateUserRequest{
			Password: "pw",
		})
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})

	t.Run("reset password", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users/mark/password", adminTokens.AccessToken, handlers.ChangePasswordRequest{
			NewPassword: "mark-pass-2",
		})
		if rr.Code != http.StatusNoContent {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusNoContent, rr.Code, rr.Body.String())
		}

		login(t, router, "mark", "mark-pass-2")
	})

	t.Run("delete own account forbidden", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodDelete, "/api/v1/users/root", adminTokens.AccessToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected status %d, got %d", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("delete user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodDelete, "/api/v1/users/mark", adminTokens.AccessToken, nil)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("Expected status %d, got %d", http.StatusNoContent, rr.Code)
		}

		rr = doJSON(t, router, http.MethodGet, "/api/v1/users/mark", adminTokens.AccessToken, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, rr.Code)
		}
	})

	t.Run("delete missing user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodDelete, "/api/v1/users/ghost", adminTokens.AccessToken, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})
}

func TestRouter_ChangeOwnPassword(t *testing.T) {
	router, _ := setupRouter(t)
	tokens := login(t, router, "jane", "jane-pass")

	t.Run("wrong current password", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users/me/password", tokens.AccessToken, handlers.ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "new-pass",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("success returns fresh tokens", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/v1/users/me/password", tokens.AccessToken, handlers.ChangePasswordRequest{
			CurrentPassword: "jane-pass",
			NewPassword:     "jane-pass-3",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}

		var resp handlers.LoginResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("Expected fresh access token")
		}

		login(t, router, "jane", "jane-pass-3")
	})
}

func TestRouter_HealthUnauthenticated(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/health", "/health/ready", "/health/store"} {
		rr := doJSON(t, router, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected %s to return %d, got %d", path, http.StatusOK, rr.Code)
		}
	}
}
