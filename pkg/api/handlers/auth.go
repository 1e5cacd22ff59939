package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/pkg/api/auth"
	"github.com/marmos91/depot/pkg/api/middleware"
	"github.com/marmos91/depot/pkg/credentials"
)

// AuthHandler handles authentication-related API endpoints.
type AuthHandler struct {
	gate       *credentials.Gate
	store      *credentials.CredentialStore
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate *credentials.Gate, store *credentials.CredentialStore, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		gate:       gate,
		store:      store,
		jwtService: jwtService,
	}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for POST /api/v1/auth/login.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// UserResponse is a sanitized user representation for API responses.
// Password digests never leave the server.
type UserResponse struct {
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

// RefreshRequest is the request body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /api/v1/auth/login.
// Authenticates user credentials and returns a JWT token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	user, err := h.gate.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, credentials.ErrAuthenticationFailed) {
			Unauthorized(w, "Invalid username or password")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(*user)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	logger.InfoCtx(r.Context(), "user logged in", logger.KeyUser, user.Name)

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		User:         userToResponse(*user),
	})
}

// Refresh handles POST /api/v1/auth/refresh.
// Returns a new token pair using a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			Unauthorized(w, "Refresh token has expired")
			return
		}
		Unauthorized(w, "Invalid refresh token")
		return
	}

	// Re-read the directory so revoked users stop refreshing and group
	// changes reach the new token.
	user, err := h.store.Find(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			Unauthorized(w, "User no longer exists")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(*user)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		User:         userToResponse(*user),
	})
}

// Me handles GET /api/v1/auth/me.
// Returns the current authenticated user's information.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.store.Find(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			Unauthorized(w, "User no longer exists")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	WriteJSONOK(w, userToResponse(*user))
}

// userToResponse converts a User to a UserResponse for API output.
func userToResponse(user credentials.User) UserResponse {
	return UserResponse{
		Username: user.Name,
		Email:    user.Email,
		Groups:   user.Groups,
	}
}
