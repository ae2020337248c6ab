package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

// Find looks up a title by IMDb ID.
func (p *Provider) Find(ctx context.Context, externalID string) (*provider.FindResult, error) {
	cacheKey := "find:" + externalID
	if v, ok := p.cached(cacheKey); ok {
		if res, ok := v.(*provider.FindResult); ok {
			return res, nil
		}
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	found, err := p.client.GetFind(url.PathEscape(externalID), "imdb_id", map[string]string{"language": p.language})
	if err != nil {
		p.log.Debug().Err(err).Str("external_id", externalID).Msg("find failed")
		return nil, p.mapError(err)
	}

	res := &provider.FindResult{}
	if found != nil {
		for _, m := range found.MovieResults {
			res.Movies = append(res.Movies, provider.Hit{
				InternalID: m.ID,
				Kind:       media.KindMovie,
				Title:      m.Title,
				PosterPath: m.PosterPath,
			})
		}
		for _, s := range found.TvResults {
			res.Series = append(res.Series, provider.Hit{
				InternalID: s.ID,
				Kind:       media.KindSeries,
				Title:      s.Name,
				PosterPath: s.PosterPath,
			})
		}
	}
	p.store(cacheKey, res)
	return res, nil
}

// ExternalID returns the IMDb ID TMDB holds for a title.
func (p *Provider) ExternalID(ctx context.Context, kind media.Kind, internalID int) (string, error) {
	cacheKey := fmt.Sprintf("external:%s:%d", kind.WireName(), internalID)
	if v, ok := p.cached(cacheKey); ok {
		if id, ok := v.(string); ok {
			return id, nil
		}
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	var (
		id  string
		err error
	)
	switch kind {
	case media.KindMovie:
		var ids *tmdb.MovieExternalIds
		if ids, err = p.client.GetMovieExternalIds(internalID, nil); err == nil && ids != nil {
			id = ids.ImdbID
		}
	case media.KindSeries:
		var ids *tmdb.TvExternalIds
		if ids, err = p.client.GetTvExternalIds(internalID, nil); err == nil && ids != nil {
			id = ids.ImdbID
		}
	default:
		return "", fmt.Errorf("unsupported media kind: %q", kind)
	}
	if err != nil {
		return "", p.mapError(err)
	}

	p.store(cacheKey, id)
	return id, nil
}

// Search runs a multi search and keeps movie and tv results in the order
// TMDB ranked them.
func (p *Provider) Search(ctx context.Context, query string) ([]provider.Hit, error) {
	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	results, err := p.client.SearchMulti(query, map[string]string{
		"language":      p.language,
		"page":          "1",
		"include_adult": "false",
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	if results == nil {
		return nil, nil
	}

	hits := make([]provider.Hit, 0, len(results.Results))
	for _, r := range results.Results {
		switch v := r.(type) {
		case *tmdb.MultiSearchMovieInfo:
			hits = append(hits, provider.Hit{InternalID: v.ID, Kind: media.KindMovie, Title: v.Title, PosterPath: v.PosterPath})
		case *tmdb.MultiSearchTvInfo:
			hits = append(hits, provider.Hit{InternalID: v.ID, Kind: media.KindSeries, Title: v.Name, PosterPath: v.PosterPath})
		}
	}
	return hits, nil
}

type trendingEntry struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
}

type trendingResponse struct {
	Results []trendingEntry `json:"results"`
}

// Trending returns this week's trending titles of one kind.
//
// go-tmdb decodes trending lists into MovieShort, which has no name field,
// so series titles would be lost. The list is fetched directly instead.
func (p *Provider) Trending(ctx context.Context, kind media.Kind) ([]provider.Hit, error) {
	var resp trendingResponse
	if err := p.getJSON(ctx, "/trending/"+kind.WireName()+"/week", &resp); err != nil {
		return nil, err
	}

	hits := make([]provider.Hit, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Title
		if kind == media.KindSeries || title == "" {
			title = r.Name
		}
		hits = append(hits, provider.Hit{
			InternalID: r.ID,
			Kind:       kind,
			Title:      title,
			PosterPath: r.PosterPath,
		})
	}
	return hits, nil
}

// getJSON performs a rate limited GET against the TMDB API and decodes the
// body into out.
func (p *Provider) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := p.rateLimiter.wait(ctx); err != nil {
		return err
	}

	u, err := url.Parse(p.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse TMDB endpoint %s: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("api_key", p.apiKey)
	q.Set("language", p.language)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.log.Debug().Str("endpoint", endpoint).Msg("tmdb request")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("tmdb request failed")
		return statusError(resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
