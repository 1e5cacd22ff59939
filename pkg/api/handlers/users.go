package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/pkg/api/auth"
	"github.com/marmos91/depot/pkg/api/middleware"
	"github.com/marmos91/depot/pkg/credentials"
)

// UserHandler handles user management API endpoints on top of the
// credential store. All mutations are whole-entry replacements; there is
// no field-level patching, matching the credential document semantics.
type UserHandler struct {
	store      *credentials.CredentialStore
	gate       *credentials.Gate
	jwtService *auth.JWTService
}

// NewUserHandler creates a new UserHandler. jwtService is required for
// generating new tokens after password changes so clients receive fresh
// credentials. Returns an error if jwtService is nil, allowing callers
// to handle the misconfiguration at startup.
func NewUserHandler(store *credentials.CredentialStore, gate *credentials.Gate, jwtService *auth.JWTService) (*UserHandler, error) {
	if jwtService == nil {
		return nil, errors.New("NewUserHandler: jwtService is required and must not be nil")
	}
	return &UserHandler{store: store, gate: gate, jwtService: jwtService}, nil
}

// CreateUserRequest is the request body for POST /api/v1/users.
//
// Exactly one of Password or PasswordDigest must be set. Password is hashed
// server-side with PasswordFormat (default bcrypt); PasswordDigest is stored
// verbatim and requires an explicit PasswordFormat.
type CreateUserRequest struct {
	Username       string   `json:"username"`
	Password       string   `json:"password,omitempty"`
	PasswordDigest string   `json:"password_digest,omitempty"`
	PasswordFormat string   `json:"password_format,omitempty"`
	Email          string   `json:"email,omitempty"`
	Groups         []string `json:"groups,omitempty"`
}

// ChangePasswordRequest is the request body for password change endpoints.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// resolveCredential turns the request's password fields into a stored
// digest and format, writing a problem response and returning false on
// invalid combinations.
func resolveCredential(w http.ResponseWriter, req *CreateUserRequest) (string, credentials.PasswordFormat, bool) {
	format := credentials.PasswordFormat(req.PasswordFormat)

	switch {
	case req.Password != "" && req.PasswordDigest != "":
		BadRequest(w, "Provide either password or password_digest, not both")
		return "", "", false
	case req.PasswordDigest != "":
		if !format.IsValid() {
			BadRequest(w, "password_digest requires password_format of 'plain', 'sha256' or 'bcrypt'")
			return "", "", false
		}
		return req.PasswordDigest, format, true
	case req.Password != "":
		if format == "" {
			format = credentials.FormatBcrypt
		}
		if !format.IsValid() {
			BadRequest(w, "Invalid password_format. Must be 'plain', 'sha256' or 'bcrypt'")
			return "", "", false
		}
		digest, err := credentials.Hash(req.Password, format)
		if err != nil {
			InternalServerError(w, "Failed to hash password")
			return "", "", false
		}
		return digest, format, true
	default:
		BadRequest(w, "Password is required")
		return "", "", false
	}
}

// Create handles POST /api/v1/users.
// Creates a new user (admin only). Returns 409 if the user already exists.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" {
		BadRequest(w, "Username is required")
		return
	}

	digest, format, ok := resolveCredential(w, &req)
	if !ok {
		return
	}

	if _, err := h.store.Find(r.Context(), req.Username); err == nil {
		Conflict(w, "User already exists")
		return
	} else if !errors.Is(err, credentials.ErrUserNotFound) {
		respondStoreError(w, r, err)
		return
	}

	user := credentials.User{
		Name:   req.Username,
		Email:  req.Email,
		Groups: req.Groups,
	}

	if err := h.store.Add(r.Context(), user, digest, format); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.InfoCtx(r.Context(), "user created", logger.KeyUser, user.Name)
	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /api/v1/users.
// Lists all users in document order (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userToResponse(u)
	}

	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/users/{username}.
// Gets a user by username. Admins can get any user, non-admins can only get their own info.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	if !claims.IsAdmin() && claims.Username != username {
		Forbidden(w, "Access denied")
		return
	}

	user, err := h.store.Find(r.Context(), username)
	if err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	WriteJSONOK(w, userToResponse(*user))
}

// Update handles PUT /api/v1/users/{username}.
// Replaces the user's directory entry wholesale (admin only). The request
// carries the complete new entry including the password, mirroring the
// document semantics where a write replaces the entry rather than merging.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username != "" && req.Username != username {
		BadRequest(w, "Username in body must match URL")
		return
	}

	digest, format, ok := resolveCredential(w, &req)
	if !ok {
		return
	}

	if _, err := h.store.Find(r.Context(), username); err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	user := credentials.User{
		Name:   username,
		Email:  req.Email,
		Groups: req.Groups,
	}

	if err := h.store.Add(r.Context(), user, digest, format); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.InfoCtx(r.Context(), "user updated", logger.KeyUser, username)
	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/{username}.
// Deletes a user (admin only). Deleting an absent user returns 404 but
// leaves the credential document untouched.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims != nil && claims.Username == username {
		Forbidden(w, "Cannot delete own account")
		return
	}

	if _, err := h.store.Find(r.Context(), username); err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	if err := h.store.Remove(r.Context(), username); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.InfoCtx(r.Context(), "user deleted", logger.KeyUser, username)
	WriteNoContent(w)
}

// ResetPassword handles POST /api/v1/users/{username}/password.
// Resets a user's password (admin only). The rest of the entry (email,
// groups) is carried over unchanged.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.NewPassword == "" {
		BadRequest(w, "New password is required")
		return
	}

	user, err := h.store.Find(r.Context(), username)
	if err != nil {
		if errors.Is(err, credentials.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	if err := h.store.AddPassword(r.Context(), *user, req.NewPassword, credentials.FormatBcrypt); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.InfoCtx(r.Context(), "password reset", logger.KeyUser, username)
	WriteNoContent(w)
}

// ChangeOwnPassword handles POST /api/v1/users/me/password.
// Changes the current user's own password after verifying the current one.
func (h *UserHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.NewPassword == "" {
		BadRequest(w, "New password is required")
		return
	}
	if req.CurrentPassword == "" {
		BadRequest(w, "Current password is required")
		return
	}

	user, err := h.gate.Authenticate(r.Context(), claims.Username, req.CurrentPassword)
	if err != nil {
		if errors.Is(err, credentials.ErrAuthenticationFailed) {
			Unauthorized(w, "Current password is incorrect")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	if err := h.store.AddPassword(r.Context(), *user, req.NewPassword, credentials.FormatBcrypt); err != nil {
		respondStoreError(w, r, err)
		return
	}

	// Return new tokens so the client can replace stored credentials
	tokenPair, err := h.jwtService.GenerateTokenPair(*user)
	if err != nil {
		InternalServerError(w, "Failed to generate new tokens")
		return
	}

	logger.InfoCtx(r.Context(), "password changed", logger.KeyUser, user.Name)

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		User:         userToResponse(*user),
	})
}
