package omdb

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/Digital-Shane/omdb"
)

const providerName = "omdb"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("omdb api key is required")

// Provider looks titles up on OMDb by IMDb ID. It is the fallback used for
// favorites and history entries TMDB cannot find.
type Provider struct {
	client *omdb.Client
}

var _ provider.SummaryProvider = (*Provider)(nil)

// New creates an OMDb provider. A nil httpClient gets a 10 second timeout.
func New(apiKey string, httpClient *http.Client) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{client: omdb.NewClient(apiKey, httpClient)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Summarize returns a display summary for an IMDb ID. OMDb has no TMDB
// internal ID, so InternalID is always zero.
func (p *Provider) Summarize(ctx context.Context, externalID string) (*media.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{ImdbID: externalID})
	if err != nil {
		return nil, p.mapError(err)
	}

	switch r := result.(type) {
	case omdb.MovieResult:
		return movieSummary(r, externalID), nil
	case *omdb.MovieResult:
		return movieSummary(*r, externalID), nil
	case omdb.SeriesResult:
		return seriesSummary(r, externalID), nil
	case *omdb.SeriesResult:
		return seriesSummary(*r, externalID), nil
	default:
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "title not found: " + externalID,
		}
	}
}

func movieSummary(r omdb.MovieResult, externalID string) *media.Summary {
	return &media.Summary{
		ExternalID: firstNonEmpty(r.ImdbID, externalID),
		Kind:       media.KindMovie,
		Title:      withYear(r.Title, omdb.FirstYear(r.Year)),
	}
}

func seriesSummary(r omdb.SeriesResult, externalID string) *media.Summary {
	return &media.Summary{
		ExternalID: firstNonEmpty(r.ImdbID, externalID),
		Kind:       media.KindSeries,
		Title:      withYear(r.Title, omdb.FirstYear(r.Year)),
	}
}

func withYear(title, year string) string {
	if year == "" {
		return title
	}
	return title + " (" + year + ")"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// mapError converts OMDb client errors into provider errors.
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "OMDb authentication failed: " + msg,
			Retry:    false,
		}
	case strings.Contains(lower, "not found"), strings.Contains(lower, "incorrect imdb id"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  msg,
			Retry:    false,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    msg,
			Retry:      true,
			RetryAfter: 5,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  msg,
			Retry:    false,
		}
	}
}
