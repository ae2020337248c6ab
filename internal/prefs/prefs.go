// Package prefs stores per-user favorites and watch history as ordered sets
// of external IDs.
package prefs

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/Digital-Shane/jojo/internal/storage"
)

// ListKind selects one of the per-user lists.
type ListKind string

const (
	Favorites ListKind = "favorites"
	History   ListKind = "history"
)

// LastQueryKey stores the most recent search string.
const LastQueryKey = "lastSearchQuery"

// ParseListKind maps a command argument to a ListKind.
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(strings.ToLower(strings.TrimSpace(s))) {
	case Favorites:
		return Favorites, nil
	case History:
		return History, nil
	}
	return "", fmt.Errorf("unknown list %q (want favorites or history)", s)
}

// Title is the display name of the list.
func (k ListKind) Title() string {
	switch k {
	case Favorites:
		return "Favorites"
	case History:
		return "History"
	}
	return string(k)
}

// Store manages preference lists. The identity is passed to every call.
type Store struct {
	kv storage.Store
}

// New returns a preference store backed by kv.
func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Key returns the storage key of a user's list.
func Key(kind ListKind, identity string) string {
	return string(kind) + "_" + identity
}

// Load returns the stored list, or an empty list when nothing is stored.
func (s *Store) Load(kind ListKind, identity string) ([]string, error) {
	if identity == "" {
		return []string{}, nil
	}
	raw, ok, err := s.kv.Get(Key(kind, identity))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to parse %s for %s: %w", kind, identity, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Store) save(kind ListKind, identity string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := s.kv.Set(Key(kind, identity), string(raw)); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Contains reports whether id is in the list.
func (s *Store) Contains(kind ListKind, identity, id string) (bool, error) {
	ids, err := s.Load(kind, identity)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Add appends id when it is not already present. It returns whether the list
// changed.
func (s *Store) Add(kind ListKind, identity, id string) (bool, error) {
	if identity == "" {
		return false, nil
	}
	ids, err := s.Load(kind, identity)
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, id) {
		return false, nil
	}
	return true, s.save(kind, identity, append(ids, id))
}

// Remove drops every occurrence of id. It returns whether the list changed.
func (s *Store) Remove(kind ListKind, identity, id string) (bool, error) {
	if identity == "" {
		return false, nil
	}
	ids, err := s.Load(kind, identity)
	if err != nil {
		return false, err
	}
	kept := slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
	if len(kept) == len(ids) {
		return false, nil
	}
	return true, s.save(kind, identity, kept)
}

// Record adds id to the user's history.
func (s *Store) Record(identity, id string) (bool, error) {
	return s.Add(History, identity, id)
}

// IsFavorite reports whether id is in the user's favorites.
func (s *Store) IsFavorite(identity, id string) (bool, error) {
	return s.Contains(Favorites, identity, id)
}

// Toggle flips favorite membership of id and returns the new state.
func (s *Store) Toggle(identity, id string) (bool, error) {
	present, err := s.Contains(Favorites, identity, id)
	if err != nil {
		return false, err
	}
	if present {
		_, err = s.Remove(Favorites, identity, id)
		return false, err
	}
	_, err = s.Add(Favorites, identity, id)
	return true, err
}

// Clear deletes the whole list. It returns the IDs that were removed.
func (s *Store) Clear(kind ListKind, identity string) ([]string, error) {
	ids, err := s.Load(kind, identity)
	if err != nil {
		return nil, err
	}
	if identity == "" {
		return ids, nil
	}
	if err := s.kv.Remove(Key(kind, identity)); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", kind, err)
	}
	return ids, nil
}

// LastQuery returns the remembered search string, or "".
func (s *Store) LastQuery() string {
	q, ok, err := s.kv.Get(LastQueryKey)
	if err != nil || !ok {
		return ""
	}
	return q
}

// SetLastQuery remembers q. Blank queries are ignored.
func (s *Store) SetLastQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	if err := s.kv.Set(LastQueryKey, q); err != nil {
		return fmt.Errorf("failed to save last query: %w", err)
	}
	return nil
}
