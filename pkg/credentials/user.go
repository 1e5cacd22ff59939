// Package credentials implements the credential store and authentication
// core of the depot artifact repository: the durable set of registered users
// (name, password digest, hash format, groups, optional email) and the
// authentication checks every repository request depends on.
//
// The persisted form is a single YAML credential document held in a
// blob.BlobStore. Every operation re-reads the document and mutations
// rewrite it whole; see CredentialStore for the concurrency contract.
package credentials

import "errors"

// Common errors for credential operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("user name must not be empty")
)

// User is one registered identity.
//
// Identity is the Name alone: two User values with the same name are the
// same directory entry regardless of groups or email, and later writes
// replace earlier ones wholesale, never field by field.
type User struct {
	// Name is the unique login name and the directory lookup key.
	Name string `json:"name"`

	// Email is informational contact metadata, never used for
	// authentication.
	Email string `json:"email,omitempty"`

	// Groups lists group memberships in document order. Group semantics
	// (what membership permits) belong to the policy layer, not here.
	Groups []string `json:"groups,omitempty"`
}

// Validate checks the user record's preconditions.
func (u User) Validate() error {
	if u.Name == "" {
		return ErrInvalidUser
	}
	return nil
}

// clone returns a deep copy so callers can't mutate directory state.
func (u User) clone() User {
	out := u
	if u.Groups != nil {
		out.Groups = make([]string, len(u.Groups))
		copy(out.Groups, u.Groups)
	}
	return out
}

// Credential is one user's stored authentication material.
type Credential struct {
	// Format identifies how Digest was derived from the raw secret.
	Format PasswordFormat `json:"format"`

	// Digest is the stored representation of the secret: raw text for
	// plain, lowercase hex for sha256, a bcrypt hash for bcrypt.
	Digest string `json:"-"`
}
