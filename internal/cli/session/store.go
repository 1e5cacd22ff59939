// Package session manages depotctl login sessions and server contexts.
//
// Contexts are persisted as JSON under the XDG config directory so the
// CLI can talk to several depot servers and switch between them.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DefaultConfigDir is the directory under XDG_CONFIG_HOME holding
	// depotctl state.
	DefaultConfigDir = "depotctl"
	// ConfigFileName is the session file name.
	ConfigFileName = "config.json"

	// The session file contains tokens, so it is owner-only.
	filePermissions = 0600
	dirPermissions  = 0700
)

var (
	// ErrNoCurrentContext indicates no context is selected.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound indicates the named context does not exist.
	ErrContextNotFound = errors.New("context not found")
	// ErrNotLoggedIn indicates the current context has no usable tokens.
	ErrNotLoggedIn = errors.New("not logged in - run 'depotctl login' first")
)

// Context holds the connection state for one depot server.
type Context struct {
	ServerURL    string    `json:"server_url"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token is expired or about to
// expire. A 60 second skew avoids presenting tokens that die in flight.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(60 * time.Second).After(c.ExpiresAt)
}

// HasRefreshToken reports whether the context can refresh its session.
func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

type sessionFile struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
}

// Store persists contexts to the depotctl config file.
type Store struct {
	configPath string
	file       *sessionFile
}

// NewStore opens the session store, creating an empty one if no config
// file exists yet.
func NewStore() (*Store, error) {
	configPath, err := configFilePath()
	if err != nil {
		return nil, err
	}

	store := &Store{configPath: configPath}
	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		store.file = &sessionFile{Contexts: make(map[string]*Context)}
	}

	return store, nil
}

func configFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, ConfigFileName), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	s.file = &sessionFile{}
	return json.Unmarshal(data, s.file)
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), dirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configPath, data, filePermissions)
}

// GetCurrentContext returns the selected context.
func (s *Store) GetCurrentContext() (*Context, error) {
	if s.file.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}

	ctx, ok := s.file.Contexts[s.file.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// GetCurrentContextName returns the name of the selected context.
func (s *Store) GetCurrentContextName() string {
	return s.file.CurrentContext
}

// GetContext returns a context by name.
func (s *Store) GetContext(name string) (*Context, error) {
	ctx, ok := s.file.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// ListContexts returns all context names sorted alphabetically.
func (s *Store) ListContexts() []string {
	names := make([]string, 0, len(s.file.Contexts))
	for name := range s.file.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetContext creates or replaces a context and persists the change.
func (s *Store) SetContext(name string, ctx *Context) error {
	if s.file.Contexts == nil {
		s.file.Contexts = make(map[string]*Context)
	}
	s.file.Contexts[name] = ctx
	return s.save()
}

// UseContext selects a context as current.
func (s *Store) UseContext(name string) error {
	if _, ok := s.file.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.file.CurrentContext = name
	return s.save()
}

// DeleteContext removes a context. Deleting the current context leaves
// no context selected.
func (s *Store) DeleteContext(name string) error {
	if _, ok := s.file.Contexts[name]; !ok {
		return ErrContextNotFound
	}

	delete(s.file.Contexts, name)
	if s.file.CurrentContext == name {
		s.file.CurrentContext = ""
	}
	return s.save()
}

// UpdateTokens stores fresh tokens on the current context.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = accessToken
	ctx.RefreshToken = refreshToken
	ctx.ExpiresAt = expiresAt
	return s.save()
}

// ClearCurrentContext drops the tokens from the current context but
// keeps the server URL and username for the next login.
func (s *Store) ClearCurrentContext() error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = ""
	ctx.RefreshToken = ""
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

// ConfigPath returns the session file location.
func (s *Store) ConfigPath() string {
	return s.configPath
}
