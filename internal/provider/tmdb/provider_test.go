package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	tmdb "github.com/ryanbradynd05/go-tmdb"
)

// mockTMDBClient implements TMDBClient for testing
type mockTMDBClient struct {
	getFindFunc       func(id, source string, options map[string]string) (*tmdb.FindResults, error)
	getMovieInfoFunc  func(id int, options map[string]string) (*tmdb.Movie, error)
	getTvInfoFunc     func(id int, options map[string]string) (*tmdb.TV, error)
	movieExternalFunc func(id int) (*tmdb.MovieExternalIds, error)
	tvExternalFunc    func(id int) (*tmdb.TvExternalIds, error)
	searchMultiFunc   func(query string, options map[string]string) (*tmdb.MultiSearchResults, error)
}

func (m *mockTMDBClient) GetFind(id, source string, options map[string]string) (*tmdb.FindResults, error) {
	if m.getFindFunc != nil {
		return m.getFindFunc(id, source, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetMovieExternalIds(id int, _ map[string]string) (*tmdb.MovieExternalIds, error) {
	if m.movieExternalFunc != nil {
		return m.movieExternalFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetTvExternalIds(id int, _ map[string]string) (*tmdb.TvExternalIds, error) {
	if m.tvExternalFunc != nil {
		return m.tvExternalFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) SearchMulti(query string, options map[string]string) (*tmdb.MultiSearchResults, error) {
	if m.searchMultiFunc != nil {
		return m.searchMultiFunc(query, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error) {
	if m.getMovieInfoFunc != nil {
		return m.getMovieInfoFunc(id, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetTvInfo(id int, options map[string]string) (*tmdb.TV, error) {
	if m.getTvInfoFunc != nil {
		return m.getTvInfoFunc(id, options)
	}
	return nil, errors.New("not implemented")
}

func newTestProvider(t *testing.T, client TMDBClient, handler http.HandlerFunc) *Provider {
	t.Helper()
	opts := Options{
		APIKey: "test-api-key",
		Client: client,
		Logger: zerolog.Nop(),
	}
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		opts.BaseURL = srv.URL
		opts.HTTPClient = srv.Client()
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	if _, err := New(Options{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() with blank key error = %v, want ErrMissingAPIKey", err)
	}
	p, err := New(Options{APIKey: "key", Client: &mockTMDBClient{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.language != "en-US" || p.baseURL != DefaultBaseURL {
		t.Errorf("defaults = %q, %q", p.language, p.baseURL)
	}
	if p.Name() != "tmdb" {
		t.Errorf("Name() = %q, want tmdb", p.Name())
	}
	// Calls are bounded by their context only.
	if p.httpClient.Timeout != 0 {
		t.Errorf("httpClient.Timeout = %v, want none", p.httpClient.Timeout)
	}
}

func TestDetailsMovie(t *testing.T) {
	var gotOptions map[string]string
	client := &mockTMDBClient{
		getMovieInfoFunc: func(id int, options map[string]string) (*tmdb.Movie, error) {
			gotOptions = options
			return &tmdb.Movie{
				ID:          157336,
				Title:       "Interstellar",
				ReleaseDate: "2014-11-05",
				Overview:    "The adventures of a group of explorers",
				VoteAverage: 8.4,
				ImdbID:      "tt0816692",
				Genres: []struct {
					ID   int
					Name string
				}{
					{ID: 12, Name: "Adventure"},
					{ID: 18, Name: "Drama"},
					{ID: 878, Name: "Science Fiction"},
				},
			}, nil
		},
	}
	p := newTestProvider(t, client, nil)

	got, err := p.Details(context.Background(), media.KindMovie, 157336)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	want := &media.Item{
		ExternalID:  "tt0816692",
		InternalID:  157336,
		Kind:        media.KindMovie,
		Title:       "Interstellar",
		Overview:    "The adventures of a group of explorers",
		Genres:      []string{"Adventure", "Drama", "Science Fiction"},
		Rating:      8.4,
		ReleaseDate: "2014-11-05",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Details() mismatch (-want +got):\n%s", diff)
	}
	if gotOptions["language"] != "en-US" {
		t.Errorf("language option = %q, want en-US", gotOptions["language"])
	}
}

func TestDetailsSeries(t *testing.T) {
	var gotOptions map[string]string
	client := &mockTMDBClient{
		getTvInfoFunc: func(id int, options map[string]string) (*tmdb.TV, error) {
			gotOptions = options
			return &tmdb.TV{
				ID:           1396,
				Name:         "Breaking Bad",
				FirstAirDate: "2008-01-20",
				Overview:     "A chemistry teacher",
				VoteAverage:  8.9,
				Genres: []struct {
					ID   int
					Name string
				}{
					{ID: 18, Name: "Drama"},
					{ID: 80, Name: "Crime"},
				},
			}, nil
		},
	}
	p := newTestProvider(t, client, nil)

	got, err := p.Details(context.Background(), media.KindSeries, 1396)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if got.Title != "Breaking Bad" || got.ReleaseDate != "2008-01-20" || got.Kind != media.KindSeries {
		t.Errorf("Details() = %+v", got)
	}
	if diff := cmp.Diff([]string{"Drama", "Crime"}, got.Genres); diff != "" {
		t.Errorf("Genres mismatch (-want +got):\n%s", diff)
	}
	if gotOptions["append_to_response"] != "external_ids" {
		t.Errorf("append_to_response = %q, want external_ids", gotOptions["append_to_response"])
	}
}

func TestDetailsMapsErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "auth", err: errors.New("401 Unauthorized"), wantCode: provider.CodeAuthFailed},
		{name: "rate", err: errors.New("429 Too Many Requests"), wantCode: provider.CodeRateLimited},
		{name: "unavailable", err: errors.New("503 Service Unavailable"), wantCode: provider.CodeUnavailable},
		{name: "missing", err: errors.New("The resource you requested could not be found."), wantCode: provider.CodeNotFound},
		{name: "other", err: errors.New("boom"), wantCode: provider.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockTMDBClient{
				getMovieInfoFunc: func(int, map[string]string) (*tmdb.Movie, error) { return nil, tt.err },
			}
			p := newTestProvider(t, client, nil)
			_, err := p.Details(context.Background(), media.KindMovie, 1)
			if got := provider.Code(err); got != tt.wantCode {
				t.Fatalf("Details() error code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestDetailsCached(t *testing.T) {
	var calls int32
	client := &mockTMDBClient{
		getMovieInfoFunc: func(id int, _ map[string]string) (*tmdb.Movie, error) {
			atomic.AddInt32(&calls, 1)
			return &tmdb.Movie{ID: id, Title: "Cached"}, nil
		},
	}
	p, err := New(Options{APIKey: "k", Client: client, CacheEnabled: true, CacheDuration: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	first, _ := p.Details(context.Background(), media.KindMovie, 7)
	first.Title = "mutated"
	second, err := p.Details(context.Background(), media.KindMovie, 7)
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("GetMovieInfo called %d times, want 1", calls)
	}
	if second.Title != "Cached" {
		t.Errorf("cached item was mutated through a returned copy: %q", second.Title)
	}
}

func TestFind(t *testing.T) {
	var calls int32
	client := &mockTMDBClient{
		getFindFunc: func(id, source string, options map[string]string) (*tmdb.FindResults, error) {
			atomic.AddInt32(&calls, 1)
			if id != "tt0816692" || source != "imdb_id" {
				t.Errorf("GetFind(%q, %q)", id, source)
			}
			if options["language"] != "en-US" {
				t.Errorf("language option = %q, want en-US", options["language"])
			}
			return &tmdb.FindResults{
				MovieResults: []tmdb.MovieShort{{ID: 157336, Title: "Interstellar", PosterPath: "/p.jpg"}},
				TvResults:    []tmdb.TvShort{{ID: 99, Name: "Interstellar: The Series"}},
			}, nil
		},
	}
	p, err := New(Options{APIKey: "k", Client: client, CacheEnabled: true, CacheDuration: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	want := &provider.FindResult{
		Movies: []provider.Hit{{InternalID: 157336, Kind: media.KindMovie, Title: "Interstellar", PosterPath: "/p.jpg"}},
		Series: []provider.Hit{{InternalID: 99, Kind: media.KindSeries, Title: "Interstellar: The Series"}},
	}
	for i := 0; i < 2; i++ {
		got, err := p.Find(context.Background(), "tt0816692")
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Find() mismatch (-want +got):\n%s", diff)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("GetFind called %d times, want 1", calls)
	}
}

func TestFindMapsClientErrors(t *testing.T) {
	tests := map[string]string{
		"Code (7): Invalid API key: You must be granted a valid key.":  provider.CodeAuthFailed,
		"Code (34): The resource you requested could not be found.":    provider.CodeNotFound,
		"Code (25): Your request count (41) is over the allowed limit": provider.CodeRateLimited,
		"dial tcp: connection refused":                                 provider.CodeUnknown,
	}
	for msg, wantCode := range tests {
		client := &mockTMDBClient{
			getFindFunc: func(string, string, map[string]string) (*tmdb.FindResults, error) {
				return &tmdb.FindResults{}, errors.New(msg)
			},
		}
		p := newTestProvider(t, client, nil)
		_, err := p.Find(context.Background(), "tt1")
		if got := provider.Code(err); got != wantCode {
			t.Errorf("%q: code = %q, want %q", msg, got, wantCode)
		}
	}
}

func TestFindHonorsContext(t *testing.T) {
	client := &mockTMDBClient{
		getFindFunc: func(string, string, map[string]string) (*tmdb.FindResults, error) {
			t.Error("GetFind called with a canceled context")
			return &tmdb.FindResults{}, nil
		},
	}
	p := newTestProvider(t, client, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Find(ctx, "tt1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Find() with canceled context error = %v, want context.Canceled", err)
	}
}

func TestExternalID(t *testing.T) {
	client := &mockTMDBClient{
		tvExternalFunc: func(id int) (*tmdb.TvExternalIds, error) {
			if id != 1396 {
				t.Errorf("GetTvExternalIds(%d)", id)
			}
			return &tmdb.TvExternalIds{ID: 1396, ImdbID: "tt0903747", TvdbID: 81189}, nil
		},
		movieExternalFunc: func(id int) (*tmdb.MovieExternalIds, error) {
			return &tmdb.MovieExternalIds{ID: id}, nil
		},
	}
	p := newTestProvider(t, client, nil)

	id, err := p.ExternalID(context.Background(), media.KindSeries, 1396)
	if err != nil || id != "tt0903747" {
		t.Fatalf("ExternalID(series) = %q, %v, want tt0903747", id, err)
	}
	id, err = p.ExternalID(context.Background(), media.KindMovie, 5)
	if err != nil || id != "" {
		t.Fatalf("ExternalID(movie) = %q, %v, want empty", id, err)
	}
	if _, err := p.ExternalID(context.Background(), media.Kind("person"), 1); err == nil {
		t.Error("ExternalID(person) should error")
	}
}

func TestSearchFiltersKinds(t *testing.T) {
	client := &mockTMDBClient{
		searchMultiFunc: func(query string, options map[string]string) (*tmdb.MultiSearchResults, error) {
			if query != "star wars" || options["include_adult"] != "false" {
				t.Errorf("SearchMulti(%q, %v)", query, options)
			}
			return &tmdb.MultiSearchResults{Results: tmdb.MultiSearchResultsInfo{
				&tmdb.MultiSearchMovieInfo{ID: 11, Title: "Star Wars", MediaType: "movie"},
				&tmdb.MultiSearchPersonInfo{ID: 2, MediaType: "person"},
				&tmdb.MultiSearchTvInfo{ID: 3, Name: "Andor", MediaType: "tv"},
			}}, nil
		},
	}
	p := newTestProvider(t, client, nil)

	got, err := p.Search(context.Background(), "star wars")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []provider.Hit{
		{InternalID: 11, Kind: media.KindMovie, Title: "Star Wars"},
		{InternalID: 3, Kind: media.KindSeries, Title: "Andor"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestTrending(t *testing.T) {
	p := newTestProvider(t, &mockTMDBClient{}, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/trending/tv/week") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if q := r.URL.Query(); q.Get("api_key") != "test-api-key" || q.Get("language") != "en-US" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"results": [{"id": 1, "name": "Show A", "poster_path": "/a.jpg"}, {"id": 2, "name": "Show B"}]}`))
	})

	got, err := p.Trending(context.Background(), media.KindSeries)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	want := []provider.Hit{
		{InternalID: 1, Kind: media.KindSeries, Title: "Show A", PosterPath: "/a.jpg"},
		{InternalID: 2, Kind: media.KindSeries, Title: "Show B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Trending() mismatch (-want +got):\n%s", diff)
	}
}

func TestTrendingStatusErrors(t *testing.T) {
	tests := map[int]string{
		http.StatusUnauthorized:        provider.CodeAuthFailed,
		http.StatusNotFound:            provider.CodeNotFound,
		http.StatusTooManyRequests:     provider.CodeRateLimited,
		http.StatusBadGateway:          provider.CodeUnavailable,
		http.StatusUnprocessableEntity: provider.CodeUnknown,
	}
	for status, wantCode := range tests {
		p := newTestProvider(t, &mockTMDBClient{}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"status_message":"nope"}`))
		})
		_, err := p.Trending(context.Background(), media.KindMovie)
		if got := provider.Code(err); got != wantCode {
			t.Errorf("status %d: code = %q, want %q", status, got, wantCode)
		}
	}
}

func TestTrendingMalformedBody(t *testing.T) {
	p := newTestProvider(t, &mockTMDBClient{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	})
	if _, err := p.Trending(context.Background(), media.KindMovie); err == nil {
		t.Fatal("Trending() with malformed body should error")
	}
}
