package tmdb

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"

	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("tmdb api key is required")

// Provider implements provider.Catalog on top of TMDB.
type Provider struct {
	client      TMDBClient
	httpClient  *http.Client
	baseURL     string
	cache       *cache.Cache
	language    string
	apiKey      string
	rateLimiter *rateLimiter
	log         zerolog.Logger
}

// TMDBClient is the subset of *tmdb.TMDb the provider calls.
type TMDBClient interface {
	GetFind(id, source string, options map[string]string) (*tmdb.FindResults, error)
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetMovieExternalIds(id int, options map[string]string) (*tmdb.MovieExternalIds, error)
	GetTvExternalIds(id int, options map[string]string) (*tmdb.TvExternalIds, error)
	SearchMulti(query string, options map[string]string) (*tmdb.MultiSearchResults, error)
}

// Options configures a Provider.
type Options struct {
	APIKey   string
	Language string

	// CacheEnabled keeps lookups in memory for CacheDuration. Nothing is
	// written to disk.
	CacheEnabled  bool
	CacheDuration time.Duration

	// HTTPClient and BaseURL are used for the trending lists. Both default
	// when empty.
	HTTPClient *http.Client
	BaseURL    string

	// Client overrides the go-tmdb client.
	Client TMDBClient

	Logger zerolog.Logger
}

var _ provider.Catalog = (*Provider)(nil)

// New creates a configured TMDB provider.
func New(opts Options) (*Provider, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	p := &Provider{
		apiKey:      apiKey,
		language:    opts.Language,
		httpClient:  opts.HTTPClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		client:      opts.Client,
		log:         opts.Logger.With().Str("provider", providerName).Logger(),
		rateLimiter: newRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
	}
	if p.language == "" {
		p.language = defaultLanguage
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{}
	}
	if p.client == nil {
		p.client = tmdb.Init(tmdb.Config{
			APIKey:   apiKey,
			Proxies:  nil,
			UseProxy: false,
		})
	}

	if opts.CacheEnabled {
		d := opts.CacheDuration
		if d <= 0 {
			d = 24 * time.Hour
		}
		p.cache = cache.New(d, 10*time.Minute)
	}

	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) cached(key string) (any, bool) {
	if p.cache == nil {
		return nil, false
	}
	return p.cache.Get(key)
}

func (p *Provider) store(key string, v any) {
	if p.cache != nil {
		p.cache.Set(key, v, cache.DefaultExpiration)
	}
}

// mapError maps TMDB errors to provider errors
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	var perr *provider.ProviderError
	if errors.As(err, &perr) {
		return err
	}

	// go-tmdb reports failures as "Code (<tmdb status code>): <message>".
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "code (7)") || strings.Contains(errStr, "invalid api key") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed: " + err.Error(),
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "code (25)") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	}
	if strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "could not be found") || strings.Contains(errStr, "code (34)") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "TMDB resource not found",
			Retry:    false,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  "TMDB error: " + err.Error(),
		Retry:    false,
	}
}

// statusError converts a non-200 HTTP status into a provider error.
func statusError(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed",
		}
	case status == http.StatusNotFound:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "TMDB resource not found",
		}
	case status == http.StatusTooManyRequests:
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	case status >= 500:
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}
	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  "TMDB error: " + strings.TrimSpace(body),
	}
}
