package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/google/go-cmp/cmp"
)

// mockCatalog implements provider.Catalog for testing
type mockCatalog struct {
	findFunc       func(ctx context.Context, externalID string) (*provider.FindResult, error)
	detailsFunc    func(ctx context.Context, kind media.Kind, id int) (*media.Item, error)
	externalIDFunc func(ctx context.Context, kind media.Kind, id int) (string, error)
	searchFunc     func(ctx context.Context, query string) ([]provider.Hit, error)
	trendingFunc   func(ctx context.Context, kind media.Kind) ([]provider.Hit, error)

	calls atomic.Int32
}

func (m *mockCatalog) Find(ctx context.Context, externalID string) (*provider.FindResult, error) {
	m.calls.Add(1)
	if m.findFunc != nil {
		return m.findFunc(ctx, externalID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalog) Details(ctx context.Context, kind media.Kind, id int) (*media.Item, error) {
	m.calls.Add(1)
	if m.detailsFunc != nil {
		return m.detailsFunc(ctx, kind, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalog) ExternalID(ctx context.Context, kind media.Kind, id int) (string, error) {
	m.calls.Add(1)
	if m.externalIDFunc != nil {
		return m.externalIDFunc(ctx, kind, id)
	}
	return "", errors.New("not implemented")
}

func (m *mockCatalog) Search(ctx context.Context, query string) ([]provider.Hit, error) {
	m.calls.Add(1)
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCatalog) Trending(ctx context.Context, kind media.Kind) ([]provider.Hit, error) {
	m.calls.Add(1)
	if m.trendingFunc != nil {
		return m.trendingFunc(ctx, kind)
	}
	return nil, errors.New("not implemented")
}

type mockSummaryProvider struct {
	summaries map[string]*media.Summary
}

func (m *mockSummaryProvider) Name() string { return "mock" }

func (m *mockSummaryProvider) Summarize(_ context.Context, id string) (*media.Summary, error) {
	if s, ok := m.summaries[id]; ok {
		return s, nil
	}
	return nil, &provider.ProviderError{Provider: "mock", Code: provider.CodeNotFound, Message: "missing"}
}

func findTable(movies, series map[string]provider.Hit) func(context.Context, string) (*provider.FindResult, error) {
	return func(_ context.Context, id string) (*provider.FindResult, error) {
		res := &provider.FindResult{}
		if h, ok := movies[id]; ok {
			res.Movies = append(res.Movies, h)
		}
		if h, ok := series[id]; ok {
			res.Series = append(res.Series, h)
		}
		return res, nil
	}
}

func TestResolveByExternalID(t *testing.T) {
	movies := map[string]provider.Hit{
		"tt0816692": {InternalID: 157336, Kind: media.KindMovie, Title: "Interstellar"},
		"ttboth":    {InternalID: 1, Kind: media.KindMovie, Title: "Both Movie"},
	}
	series := map[string]provider.Hit{
		"tt0903747": {InternalID: 1396, Kind: media.KindSeries, Title: "Breaking Bad"},
		"ttboth":    {InternalID: 2, Kind: media.KindSeries, Title: "Both Series"},
	}
	r := NewResolver(&mockCatalog{findFunc: findTable(movies, series)})

	tests := []struct {
		name     string
		id       string
		wantKind media.Kind
		wantID   int
		wantErr  error
	}{
		{name: "movie_only", id: "tt0816692", wantKind: media.KindMovie, wantID: 157336},
		{name: "series_only", id: "tt0903747", wantKind: media.KindSeries, wantID: 1396},
		{name: "movie_wins", id: "ttboth", wantKind: media.KindMovie, wantID: 1},
		{name: "neither", id: "tt0000000", wantErr: media.ErrNotFound},
		{name: "blank", id: "  ", wantErr: media.ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveByExternalID(context.Background(), tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveByExternalID(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveByExternalID(%q) error = %v", tt.id, err)
			}
			if got.Kind != tt.wantKind || got.InternalID != tt.wantID || got.ExternalID != tt.id {
				t.Errorf("ResolveByExternalID(%q) = %+v, want kind %s id %d", tt.id, got, tt.wantKind, tt.wantID)
			}
		})
	}
}

func TestResolveBlankMakesNoCall(t *testing.T) {
	m := &mockCatalog{}
	r := NewResolver(m)
	_, _ = r.ResolveByExternalID(context.Background(), "")
	if n := m.calls.Load(); n != 0 {
		t.Fatalf("catalog called %d times, want 0", n)
	}
}

func TestResolveNetworkFailure(t *testing.T) {
	perr := &provider.ProviderError{Provider: "tmdb", Code: provider.CodeUnavailable, Message: "down"}
	r := NewResolver(&mockCatalog{
		findFunc: func(context.Context, string) (*provider.FindResult, error) { return nil, perr },
	})

	_, err := r.ResolveByExternalID(context.Background(), "tt1")
	if !errors.Is(err, media.ErrResolutionFailed) {
		t.Fatalf("error = %v, want ErrResolutionFailed", err)
	}
	var got *provider.ProviderError
	if !errors.As(err, &got) || got.Code != provider.CodeUnavailable {
		t.Fatalf("error should carry the provider error, got %v", err)
	}
}

func TestFetchDetails(t *testing.T) {
	r := NewResolver(&mockCatalog{
		detailsFunc: func(_ context.Context, kind media.Kind, id int) (*media.Item, error) {
			if id == 404 {
				return nil, errors.New("boom")
			}
			return &media.Item{InternalID: id, Kind: kind, Title: "Interstellar"}, nil
		},
	})

	item, err := r.FetchDetails(context.Background(), media.KindMovie, 157336, "tt0816692")
	if err != nil {
		t.Fatalf("FetchDetails() error = %v", err)
	}
	if item.ExternalID != "tt0816692" {
		t.Errorf("ExternalID = %q, want tt0816692", item.ExternalID)
	}

	if _, err := r.FetchDetails(context.Background(), media.KindMovie, 404, ""); !errors.Is(err, media.ErrDetailFetchFailed) {
		t.Fatalf("FetchDetails() error = %v, want ErrDetailFetchFailed", err)
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(&mockCatalog{
		findFunc: findTable(nil, map[string]provider.Hit{
			"tt0903747": {InternalID: 1396, Kind: media.KindSeries, Title: "Breaking Bad"},
		}),
		detailsFunc: func(_ context.Context, kind media.Kind, id int) (*media.Item, error) {
			return &media.Item{InternalID: id, Kind: kind, Title: "Breaking Bad", ReleaseDate: "2008-01-20"}, nil
		},
	})

	item, err := r.Resolve(context.Background(), "tt0903747")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := &media.Item{ExternalID: "tt0903747", InternalID: 1396, Kind: media.KindSeries, Title: "Breaking Bad", ReleaseDate: "2008-01-20"}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByTextEmptyQuery(t *testing.T) {
	m := &mockCatalog{}
	r := NewResolver(m)

	for _, q := range []string{"", "   "} {
		got, err := r.SearchByText(context.Background(), q)
		if err != nil {
			t.Fatalf("SearchByText(%q) error = %v", q, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("SearchByText(%q) = %v, want empty slice", q, got)
		}
	}
	if n := m.calls.Load(); n != 0 {
		t.Fatalf("catalog called %d times, want 0", n)
	}
}

func TestSearchByTextDropsUnresolved(t *testing.T) {
	r := NewResolver(&mockCatalog{
		searchFunc: func(context.Context, string) ([]provider.Hit, error) {
			return []provider.Hit{
				{InternalID: 1, Kind: media.KindMovie, Title: "A"},
				{InternalID: 2, Kind: media.KindSeries, Title: "B"},
				{InternalID: 3, Kind: media.KindMovie, Title: "C"},
				{InternalID: 4, Kind: media.KindMovie, Title: "D"},
			}, nil
		},
		externalIDFunc: func(_ context.Context, kind media.Kind, id int) (string, error) {
			switch id {
			case 2:
				return "", nil
			case 3:
				return "", errors.New("lookup failed")
			}
			return fmt.Sprintf("tt%07d", id), nil
		},
	})

	got, err := r.SearchByText(context.Background(), "letters")
	if err != nil {
		t.Fatalf("SearchByText() error = %v", err)
	}
	want := []media.Summary{
		{ExternalID: "tt0000001", InternalID: 1, Kind: media.KindMovie, Title: "A"},
		{ExternalID: "tt0000004", InternalID: 4, Kind: media.KindMovie, Title: "D"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchByText() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByTextFailure(t *testing.T) {
	r := NewResolver(&mockCatalog{
		searchFunc: func(context.Context, string) ([]provider.Hit, error) { return nil, errors.New("offline") },
	})
	if _, err := r.SearchByText(context.Background(), "x"); !errors.Is(err, media.ErrResolutionFailed) {
		t.Fatalf("SearchByText() error = %v, want ErrResolutionFailed", err)
	}
}

func TestSummaries(t *testing.T) {
	movies := map[string]provider.Hit{
		"tt1": {InternalID: 1, Kind: media.KindMovie, Title: "One"},
		"tt3": {InternalID: 3, Kind: media.KindMovie, Title: "Three"},
	}
	catalog := &mockCatalog{findFunc: findTable(movies, nil)}

	t.Run("without_fallback", func(t *testing.T) {
		r := NewResolver(catalog)
		got := r.Summaries(context.Background(), []string{"tt3", "tt2", "tt1"})
		want := []media.Summary{
			{ExternalID: "tt3", InternalID: 3, Kind: media.KindMovie, Title: "Three"},
			{ExternalID: "tt1", InternalID: 1, Kind: media.KindMovie, Title: "One"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summaries() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("with_fallback", func(t *testing.T) {
		fb := &mockSummaryProvider{summaries: map[string]*media.Summary{
			"tt2": {ExternalID: "tt2", Kind: media.KindSeries, Title: "Two (1999)"},
		}}
		r := NewResolver(catalog, WithFallback(fb))
		got := r.Summaries(context.Background(), []string{"tt3", "tt2", "tt9", "tt1"})
		titles := make([]string, 0, len(got))
		for _, s := range got {
			titles = append(titles, s.Title)
		}
		if diff := cmp.Diff([]string{"Three", "Two (1999)", "One"}, titles); diff != "" {
			t.Errorf("Summaries() titles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := NewResolver(catalog).Summaries(context.Background(), nil); len(got) != 0 {
			t.Errorf("Summaries(nil) = %v, want empty", got)
		}
	})
}
