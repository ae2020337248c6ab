package prefs

import (
	"testing"

	"github.com/Digital-Shane/jojo/internal/storage"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	return New(kv), kv
}

func TestLoadEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Load(Favorites, "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{}, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	got, err = s.Load(History, "")
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() without identity = %v, %v, want empty", got, err)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	s, kv := newTestStore(t)

	changed, err := s.Add(Favorites, "alice", "tt0816692")
	if err != nil || !changed {
		t.Fatalf("Add() = %v, %v, want true, nil", changed, err)
	}
	changed, err = s.Add(Favorites, "alice", "tt0816692")
	if err != nil || changed {
		t.Fatalf("second Add() = %v, %v, want false, nil", changed, err)
	}

	raw, _, _ := kv.Get("favorites_alice")
	if raw != `["tt0816692"]` {
		t.Errorf("stored list = %s, want [\"tt0816692\"]", raw)
	}
}

func TestAddRemoveAddMovesToEnd(t *testing.T) {
	s, _ := newTestStore(t)

	for _, id := range []string{"tt1", "tt2", "tt3"} {
		if _, err := s.Add(Favorites, "alice", id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Remove(Favorites, "alice", "tt1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(Favorites, "alice", "tt1"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load(Favorites, "alice")
	if diff := cmp.Diff([]string{"tt2", "tt3", "tt1"}, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveAllOccurrences(t *testing.T) {
	s, kv := newTestStore(t)
	// Lists written by older clients may carry duplicates.
	_ = kv.Set("history_alice", `["tt1","tt2","tt1"]`)

	changed, err := s.Remove(History, "alice", "tt1")
	if err != nil || !changed {
		t.Fatalf("Remove() = %v, %v, want true, nil", changed, err)
	}
	got, _ := s.Load(History, "alice")
	if diff := cmp.Diff([]string{"tt2"}, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	changed, err = s.Remove(History, "alice", "tt9")
	if err != nil || changed {
		t.Fatalf("Remove(absent) = %v, %v, want false, nil", changed, err)
	}
}

func TestListsAreScopedByIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	_, _ = s.Add(Favorites, "alice", "tt1")
	_, _ = s.Record("bob", "tt2")

	if ok, _ := s.Contains(Favorites, "bob", "tt1"); ok {
		t.Error("bob should not see alice's favorite")
	}
	if ok, _ := s.Contains(History, "bob", "tt2"); !ok {
		t.Error("Record() should add to history")
	}
	if ok, _ := s.Contains(Favorites, "bob", "tt2"); ok {
		t.Error("Record() should not touch favorites")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s, _ := newTestStore(t)
	_, _ = s.Add(Favorites, "alice", "tt1")

	on, err := s.Toggle("alice", "tt2")
	if err != nil || !on {
		t.Fatalf("Toggle() = %v, %v, want true", on, err)
	}
	on, err = s.Toggle("alice", "tt2")
	if err != nil || on {
		t.Fatalf("second Toggle() = %v, %v, want false", on, err)
	}
	got, _ := s.Load(Favorites, "alice")
	if diff := cmp.Diff([]string{"tt1"}, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	s, kv := newTestStore(t)
	_, _ = s.Record("alice", "tt1")
	_, _ = s.Record("alice", "tt2")

	removed, err := s.Clear(History, "alice")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if diff := cmp.Diff([]string{"tt1", "tt2"}, removed); diff != "" {
		t.Errorf("Clear() mismatch (-want +got):\n%s", diff)
	}
	if _, ok, _ := kv.Get("history_alice"); ok {
		t.Error("history key still present after Clear")
	}
}

func TestCorruptList(t *testing.T) {
	s, kv := newTestStore(t)
	_ = kv.Set("favorites_alice", "not json")

	if _, err := s.Load(Favorites, "alice"); err == nil {
		t.Fatal("Load() of corrupt list should error")
	}
	if _, err := s.Add(Favorites, "alice", "tt1"); err == nil {
		t.Fatal("Add() over corrupt list should error")
	}
}

func TestNoIdentityIsNoOp(t *testing.T) {
	s, kv := newTestStore(t)
	changed, err := s.Add(Favorites, "", "tt1")
	if err != nil || changed {
		t.Fatalf("Add() without identity = %v, %v", changed, err)
	}
	if kv.Len() != 0 {
		t.Fatalf("store has %d keys, want 0", kv.Len())
	}
}

func TestLastQuery(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.LastQuery(); got != "" {
		t.Fatalf("LastQuery() = %q, want empty", got)
	}
	if err := s.SetLastQuery("  interstellar "); err != nil {
		t.Fatal(err)
	}
	_ = s.SetLastQuery("   ")
	if got := s.LastQuery(); got != "interstellar" {
		t.Fatalf("LastQuery() = %q, want interstellar", got)
	}
}

func TestParseListKind(t *testing.T) {
	if k, err := ParseListKind("Favorites"); err != nil || k != Favorites {
		t.Errorf("ParseListKind(Favorites) = %q, %v", k, err)
	}
	if _, err := ParseListKind("watchlist"); err == nil {
		t.Error("ParseListKind(watchlist) should error")
	}
	if Favorites.Title() != "Favorites" || History.Title() != "History" {
		t.Errorf("Title() = %q, %q", Favorites.Title(), History.Title())
	}
}
