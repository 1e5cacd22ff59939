package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnsupportedFormat is returned when a password format is not one of the
// known formats. During authentication an unknown stored format denies the
// attempt instead; only write paths surface this error.
var ErrUnsupportedFormat = errors.New("unsupported password format")

// DefaultBcryptCost is the cost parameter used when hashing new bcrypt
// digests. Cost 10 balances security and verification latency.
const DefaultBcryptCost = 10

// PasswordFormat identifies how a credential digest was derived from the
// raw secret.
//
// The set of formats is a closed enumeration dispatched by a single switch,
// not an open hierarchy: only a handful of formats will ever exist, each is
// security-sensitive, and all of them must stay auditable in one place.
// Adding a format means adding a constant and two switch arms below.
type PasswordFormat string

const (
	// FormatPlain stores the raw secret verbatim. Legacy only; kept so
	// existing documents verify and can be migrated without a rewrite.
	FormatPlain PasswordFormat = "plain"

	// FormatSHA256 stores the lowercase hex SHA-256 digest of the secret.
	FormatSHA256 PasswordFormat = "sha256"

	// FormatBcrypt stores a bcrypt hash. The digest embeds its own salt
	// and cost, so two hashes of the same secret differ.
	FormatBcrypt PasswordFormat = "bcrypt"
)

// IsValid reports whether the format is a known PasswordFormat.
func (f PasswordFormat) IsValid() bool {
	switch f {
	case FormatPlain, FormatSHA256, FormatBcrypt:
		return true
	default:
		return false
	}
}

// Hash derives the stored digest for a raw secret under the given format.
// Returns ErrUnsupportedFormat for unknown formats.
//
// Hash is pure for plain and sha256. Bcrypt digests embed a random salt, so
// repeated calls produce different (all valid) digests.
func Hash(raw string, format PasswordFormat) (string, error) {
	switch format {
	case FormatPlain:
		return raw, nil
	case FormatSHA256:
		sum := sha256.Sum256([]byte(raw))
		return hex.EncodeToString(sum[:]), nil
	case FormatBcrypt:
		digest, err := bcrypt.GenerateFromPassword([]byte(raw), DefaultBcryptCost)
		if err != nil {
			return "", err
		}
		return string(digest), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Verify reports whether the raw secret matches the stored digest under the
// given format. Unknown formats verify as false, never as an error: a
// forward-incompatible document must not take down authentication.
//
// Comparison is constant-time for plain and sha256 digests to avoid leaking
// match length through timing; bcrypt comparison is constant-time by
// construction. SHA-256 digests compare exact-case against the lowercase
// canonical form, so case-variant digests never spoof a match.
func Verify(raw, digest string, format PasswordFormat) bool {
	switch format {
	case FormatPlain:
		return subtle.ConstantTimeCompare([]byte(raw), []byte(digest)) == 1
	case FormatSHA256:
		sum := sha256.Sum256([]byte(raw))
		computed := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
	case FormatBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
	default:
		return false
	}
}
