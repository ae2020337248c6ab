package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/Digital-Shane/jojo/internal/catalog"
	"github.com/Digital-Shane/jojo/internal/identity"
	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/prefs"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/Digital-Shane/jojo/internal/storage"
	"github.com/google/go-cmp/cmp"
)

// fakeCatalog serves a fixed set of titles.
type fakeCatalog struct {
	movies     map[string]provider.Hit
	series     map[string]provider.Hit
	details    map[int]*media.Item
	findErr    error
	detailsErr error
	onDetails  func()
}

func (f *fakeCatalog) Find(_ context.Context, id string) (*provider.FindResult, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	res := &provider.FindResult{}
	if h, ok := f.movies[id]; ok {
		res.Movies = []provider.Hit{h}
	}
	if h, ok := f.series[id]; ok {
		res.Series = []provider.Hit{h}
	}
	return res, nil
}

func (f *fakeCatalog) Details(_ context.Context, _ media.Kind, id int) (*media.Item, error) {
	if f.onDetails != nil {
		f.onDetails()
	}
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	item, ok := f.details[id]
	if !ok {
		return nil, errors.New("no details")
	}
	cp := *item
	return &cp, nil
}

func (f *fakeCatalog) ExternalID(context.Context, media.Kind, int) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeCatalog) Search(context.Context, string) ([]provider.Hit, error) {
	return nil, errors.New("not used")
}

func (f *fakeCatalog) Trending(context.Context, media.Kind) ([]provider.Hit, error) {
	return nil, errors.New("not used")
}

func interstellarCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies: map[string]provider.Hit{
			"tt0816692": {InternalID: 157336, Kind: media.KindMovie, Title: "Interstellar"},
		},
		details: map[int]*media.Item{
			157336: {InternalID: 157336, Kind: media.KindMovie, Title: "Interstellar", ReleaseDate: "2014-11-05"},
		},
	}
}

func TestSessionAliceScenario(t *testing.T) {
	kv := storage.NewMemory()
	ids := identity.New(kv)
	store := prefs.New(kv)

	if err := ids.Login("alice"); err != nil {
		t.Fatal(err)
	}
	user, _ := ids.CurrentUser()

	s := NewSession(catalog.NewResolver(interstellarCatalog()), store, user, "tt0816692")
	if s.State() != Idle {
		t.Fatalf("initial State() = %s, want idle", s.State())
	}
	if err := s.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if s.State() != Resolved || s.Summary().Kind != media.KindMovie {
		t.Fatalf("after Resolve: state %s summary %+v", s.State(), s.Summary())
	}
	if err := s.LoadDetails(context.Background()); err != nil {
		t.Fatalf("LoadDetails() error = %v", err)
	}
	if s.State() != DetailsLoaded {
		t.Fatalf("State() = %s, want details_loaded", s.State())
	}

	history, _ := store.Load(prefs.History, "alice")
	if diff := cmp.Diff([]string{"tt0816692"}, history); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	// Terminal states never move again, so history cannot be recorded twice.
	if err := s.LoadDetails(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second LoadDetails() error = %v, want ErrInvalidTransition", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Run() on terminal session error = %v, want ErrInvalidTransition", err)
	}
	history, _ = store.Load(prefs.History, "alice")
	if len(history) != 1 {
		t.Fatalf("history = %v, want exactly one entry", history)
	}

	on, err := s.ToggleFavorite()
	if err != nil || !on || !s.IsFavorite() {
		t.Fatalf("ToggleFavorite() = %v, %v", on, err)
	}
	on, err = s.ToggleFavorite()
	if err != nil || on {
		t.Fatalf("second ToggleFavorite() = %v, %v", on, err)
	}
	if fav, _ := store.Contains(prefs.Favorites, "alice", "tt0816692"); fav {
		t.Fatal("favorites should not contain the ID after two toggles")
	}
}

func TestSessionReplayDoesNotDuplicateHistory(t *testing.T) {
	store := prefs.New(storage.NewMemory())
	r := catalog.NewResolver(interstellarCatalog())

	for i, wantAdded := range []bool{true, false} {
		s := NewSession(r, store, "alice", "tt0816692")
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if s.HistoryAdded() != wantAdded {
			t.Errorf("run %d HistoryAdded() = %v, want %v", i, s.HistoryAdded(), wantAdded)
		}
	}
	history, _ := store.Load(prefs.History, "alice")
	if len(history) != 1 {
		t.Fatalf("history = %v, want one entry", history)
	}
}

func TestSessionFavoriteFlagOnLoad(t *testing.T) {
	store := prefs.New(storage.NewMemory())
	_, _ = store.Add(prefs.Favorites, "alice", "tt0816692")

	s := NewSession(catalog.NewResolver(interstellarCatalog()), store, "alice", "https://www.imdb.com/title/tt0816692/")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.ExternalID() != "tt0816692" {
		t.Errorf("ExternalID() = %q, want tt0816692", s.ExternalID())
	}
	if !s.IsFavorite() {
		t.Error("IsFavorite() = false, want true for an existing favorite")
	}
	if s.Item().ExternalID != "tt0816692" {
		t.Errorf("Item().ExternalID = %q", s.Item().ExternalID)
	}
}

func TestSessionAnonymous(t *testing.T) {
	kv := storage.NewMemory()
	store := prefs.New(kv)

	s := NewSession(catalog.NewResolver(interstellarCatalog()), store, "", "tt0816692")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if kv.Len() != 0 {
		t.Fatalf("anonymous session wrote %d keys, want 0", kv.Len())
	}
	if _, err := s.ToggleFavorite(); !errors.Is(err, media.ErrNotAuthenticated) {
		t.Fatalf("ToggleFavorite() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessionFailures(t *testing.T) {
	tests := []struct {
		name      string
		catalog   *fakeCatalog
		id        string
		wantState State
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "blank_id",
			catalog:   interstellarCatalog(),
			id:        "  ",
			wantState: ResolutionFailed,
			wantErr:   media.ErrEmptyInput,
			wantMsg:   "No title ID given. Go back to search and pick a title.",
		},
		{
			name:      "not_found",
			catalog:   interstellarCatalog(),
			id:        "tt0000000",
			wantState: ResolutionFailed,
			wantErr:   media.ErrNotFound,
			wantMsg:   "Item not found. Go back to search and try another title.",
		},
		{
			name:      "network",
			catalog:   &fakeCatalog{findErr: errors.New("offline")},
			id:        "tt0816692",
			wantState: ResolutionFailed,
			wantErr:   media.ErrResolutionFailed,
			wantMsg:   "Failed to find item. Go back to search and try again.",
		},
		{
			name: "details",
			catalog: func() *fakeCatalog {
				c := interstellarCatalog()
				c.detailsErr = errors.New("offline")
				return c
			}(),
			id:        "tt0816692",
			wantState: DetailsFailed,
			wantErr:   media.ErrDetailFetchFailed,
			wantMsg:   "Failed to load details. Go back to search and try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := prefs.New(storage.NewMemory())
			s := NewSession(catalog.NewResolver(tt.catalog), store, "alice", tt.id)

			err := s.Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if s.State() != tt.wantState || !s.State().Terminal() || !s.State().Failed() {
				t.Fatalf("State() = %s, want %s", s.State(), tt.wantState)
			}
			if got := s.FailureMessage(); got != tt.wantMsg {
				t.Errorf("FailureMessage() = %q, want %q", got, tt.wantMsg)
			}
			if history, _ := store.Load(prefs.History, "alice"); len(history) != 0 {
				t.Errorf("failed session recorded history %v", history)
			}
		})
	}
}

func TestSessionLoadBeforeResolve(t *testing.T) {
	s := NewSession(catalog.NewResolver(interstellarCatalog()), nil, "", "tt0816692")
	if err := s.LoadDetails(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("LoadDetails() error = %v, want ErrInvalidTransition", err)
	}
	if s.State() != Idle {
		t.Fatalf("State() = %s, want idle", s.State())
	}
}

func TestSessionCanceledDuringDetailsFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := interstellarCatalog()
	cat.onDetails = cancel
	store := prefs.New(storage.NewMemory())
	s := NewSession(catalog.NewResolver(cat), store, "alice", "tt0816692")

	if err := s.Resolve(ctx); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if err := s.LoadDetails(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadDetails() error = %v, want context.Canceled", err)
	}
	if s.State() != DetailsFailed {
		t.Errorf("State() = %s, want details_failed", s.State())
	}
	if s.HistoryAdded() {
		t.Error("HistoryAdded() = true after cancellation")
	}
	history, err := store.Load(prefs.History, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("history = %v, want empty", history)
	}
}

func TestStateString(t *testing.T) {
	if Resolving.String() != "resolving" || State(42).String() != "state(42)" {
		t.Errorf("String() = %q, %q", Resolving.String(), State(42).String())
	}
}
