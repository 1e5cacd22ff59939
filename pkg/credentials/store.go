package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/internal/telemetry"
	"github.com/marmos91/depot/pkg/store/blob"
)

// CredentialStore persists one credential document in a blob store under a
// fixed key. Every operation re-reads the document; there is no cache.
//
// Mutations are whole-document read-modify-write: get-or-empty, decode,
// change the directory, encode, put. The blob store offers no
// compare-and-swap, so concurrent mutations race last-writer-wins at
// document granularity. A failed put leaves the previous document intact,
// so a partial write can never corrupt the document.
type CredentialStore struct {
	store   blob.BlobStore
	key     blob.Key
	metrics Metrics
}

// NewCredentialStore creates a credential store over the given blob store
// and document key. A nil metrics hook disables instrumentation.
func NewCredentialStore(store blob.BlobStore, key blob.Key, metrics Metrics) *CredentialStore {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &CredentialStore{
		store:   store,
		key:     key,
		metrics: metrics,
	}
}

// Key returns the blob key the credential document lives under.
func (s *CredentialStore) Key() blob.Key {
	return s.key
}

// List returns all registered users in document order, without credential
// material. An absent document is an empty directory, not an error.
func (s *CredentialStore) List(ctx context.Context) (users []User, err error) {
	ctx, span := telemetry.StartCredentialSpan(ctx, "list", telemetry.CredentialKey(string(s.key)))
	defer span.End()
	defer s.observe(ctx, "list", time.Now(), &err)

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Directory().List(), nil
}

// Find returns the user registered under name, or ErrUserNotFound. The
// credential is withheld; the authentication gate uses findWithCredential.
func (s *CredentialStore) Find(ctx context.Context, name string) (user *User, err error) {
	ctx, span := telemetry.StartCredentialSpan(ctx, "find", telemetry.Username(name))
	defer span.End()
	defer s.observe(ctx, "find", time.Now(), &err)

	u, _, err := s.findWithCredential(ctx, name)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// findWithCredential loads the document and resolves name to its user and
// stored credential.
func (s *CredentialStore) findWithCredential(ctx context.Context, name string) (User, Credential, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return User{}, Credential{}, err
	}

	user, cred, ok := doc.Directory().Find(name)
	if !ok {
		return User{}, Credential{}, fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	return user, cred, nil
}

// Add registers a user with an already-computed digest, fully replacing any
// existing entry with the same name. There is no field merge: groups and
// email not supplied here are dropped from the stored entry. Unknown
// formats are rejected with ErrUnsupportedFormat rather than written.
func (s *CredentialStore) Add(ctx context.Context, user User, digest string, format PasswordFormat) (err error) {
	ctx, span := telemetry.StartCredentialSpan(ctx, "add",
		telemetry.Username(user.Name),
		telemetry.PasswordFormat(string(format)))
	defer span.End()
	defer s.observe(ctx, "add", time.Now(), &err)

	if err := user.Validate(); err != nil {
		return err
	}
	if !format.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	doc.Directory().Upsert(user, Credential{Format: format, Digest: digest})

	if err := s.save(ctx, doc); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "User added to credential document",
		logger.KeyUser, user.Name,
		logger.KeyFormat, string(format),
		logger.KeyKey, string(s.key))
	return nil
}

// AddPassword hashes a raw secret with the given format and registers the
// user with the resulting digest.
func (s *CredentialStore) AddPassword(ctx context.Context, user User, rawSecret string, format PasswordFormat) error {
	digest, err := Hash(rawSecret, format)
	if err != nil {
		return err
	}
	return s.Add(ctx, user, digest, format)
}

// Remove deletes the entry for name. Removing an absent name is a no-op:
// the stored document is not rewritten, so its bytes stay untouched.
// Calling Remove twice yields the same final document as calling it once.
func (s *CredentialStore) Remove(ctx context.Context, name string) (err error) {
	ctx, span := telemetry.StartCredentialSpan(ctx, "remove", telemetry.Username(name))
	defer span.End()
	defer s.observe(ctx, "remove", time.Now(), &err)

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	if !doc.Directory().Remove(name) {
		return nil
	}

	if err := s.save(ctx, doc); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "User removed from credential document",
		logger.KeyUser, name,
		logger.KeyKey, string(s.key))
	return nil
}

// load reads and decodes the credential document, treating an absent blob
// as an empty document. Storage failures and decode failures propagate
// unchanged; there are no retries here.
func (s *CredentialStore) load(ctx context.Context) (*Document, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("reading credential document %q: %w", s.key, err)
	}
	return DecodeDocument(data)
}

func (s *CredentialStore) save(ctx context.Context, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing credential document %q: %w", s.key, err)
	}
	return nil
}

func (s *CredentialStore) observe(ctx context.Context, op string, start time.Time, err *error) {
	if *err != nil {
		telemetry.RecordError(ctx, *err)
	}
	s.metrics.ObserveOperation(op, time.Since(start), *err)
}
