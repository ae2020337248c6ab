// Package identity tracks the current user. There is no authentication; the
// identity is a free-text display name.
package identity

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/storage"
)

// Key is the storage key holding the current user.
const Key = "streaming_site_user"

// Store reads and writes the current identity.
type Store struct {
	kv storage.Store
}

// New returns an identity store backed by kv.
func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Login makes name the current user, replacing any previous one.
func (s *Store) Login(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return media.ErrEmptyInput
	}
	if err := s.kv.Set(Key, name); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// Logout clears the current user. Logging out twice is not an error.
func (s *Store) Logout() error {
	if err := s.kv.Remove(Key); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

// CurrentUser returns the logged in name. Read failures are treated as
// logged out.
func (s *Store) CurrentUser() (string, bool) {
	name, ok, err := s.kv.Get(Key)
	if err != nil || !ok || name == "" {
		return "", false
	}
	return name, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}
