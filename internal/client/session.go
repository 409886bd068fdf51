// Package client is the terminal-side counterpart of the API: a typed HTTP
// client, the persisted login session and the role guard used before
// showing admin commands.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/userdesk/user-management/internal/core/domain"
)

// sessionFile is the on-disk shape of a Session.
type sessionFile struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Session holds the bearer token and cached user of the signed-in account.
// All mutation goes through Set, UpdateUser and Clear, each of which writes
// the file when a path is configured.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
	user  *domain.User
}

// DefaultSessionPath returns the per-user location of the session file.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "usermgmt", "session.json"), nil
}

// NewMemorySession returns a session that is never persisted.
func NewMemorySession() *Session {
	return &Session{}
}

// LoadSession reads the session stored at path. A missing file yields an
// empty session. A file that cannot be decoded, or that holds a token
// without a user, is removed and an empty session is returned.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil || f.Token == "" || f.User == nil {
		_ = os.Remove(path)
		return s, nil
	}
	s.token = f.Token
	s.user = f.User
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached user, or nil when signed out.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.IsAdmin()
}

// Set replaces the session after a successful login or registration.
func (s *Session) Set(token string, user *domain.User) error {
	if token == "" || user == nil {
		return errors.New("session: token and user are required")
	}
	u := *user

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &u
	return s.persist()
}

// UpdateUser merges the non-empty fields of partial into the cached user.
// It is a no-op when signed out.
func (s *Session) UpdateUser(partial domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	if partial.Name != "" {
		s.user.Name = partial.Name
	}
	if partial.Email != "" {
		s.user.Email = partial.Email
	}
	if partial.Role != "" {
		s.user.Role = partial.Role
	}
	if !partial.UpdatedAt.IsZero() {
		s.user.UpdatedAt = partial.UpdatedAt
	}
	return s.persist()
}

// Clear signs the session out and removes the file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// persist must be called with mu held.
func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(sessionFile{Token: s.token, User: s.user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
