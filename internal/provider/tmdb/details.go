package tmdb

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

// Details fetches the full record for a movie or series.
func (p *Provider) Details(ctx context.Context, kind media.Kind, internalID int) (*media.Item, error) {
	cacheKey := fmt.Sprintf("details:%s:%d", kind.WireName(), internalID)
	if v, ok := p.cached(cacheKey); ok {
		if item, ok := v.(*media.Item); ok {
			cp := *item
			return &cp, nil
		}
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	var (
		item *media.Item
		err  error
	)
	switch kind {
	case media.KindMovie:
		item, err = p.movieDetails(internalID)
	case media.KindSeries:
		item, err = p.seriesDetails(internalID)
	default:
		return nil, fmt.Errorf("unsupported media kind: %q", kind)
	}
	if err != nil {
		p.log.Debug().Err(err).Str("kind", string(kind)).Int("id", internalID).Msg("detail fetch failed")
		return nil, err
	}

	p.store(cacheKey, item)
	cp := *item
	return &cp, nil
}

func (p *Provider) movieDetails(id int) (*media.Item, error) {
	movie, err := p.client.GetMovieInfo(id, map[string]string{"language": p.language})
	if err != nil {
		return nil, p.mapError(err)
	}
	if movie == nil {
		return nil, notFound(fmt.Sprintf("movie %d not found", id))
	}
	return movieToItem(movie), nil
}

func (p *Provider) seriesDetails(id int) (*media.Item, error) {
	show, err := p.client.GetTvInfo(id, map[string]string{
		"language":           p.language,
		"append_to_response": "external_ids",
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	if show == nil {
		return nil, notFound(fmt.Sprintf("series %d not found", id))
	}
	return tvToItem(show), nil
}

func movieToItem(movie *tmdb.Movie) *media.Item {
	genres := make([]string, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genres = append(genres, g.Name)
	}
	return &media.Item{
		ExternalID:  movie.ImdbID,
		InternalID:  movie.ID,
		Kind:        media.KindMovie,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		Overview:    movie.Overview,
		Genres:      genres,
		Rating:      movie.VoteAverage,
		ReleaseDate: movie.ReleaseDate,
	}
}

func tvToItem(show *tmdb.TV) *media.Item {
	genres := make([]string, 0, len(show.Genres))
	for _, g := range show.Genres {
		genres = append(genres, g.Name)
	}
	item := &media.Item{
		InternalID:  show.ID,
		Kind:        media.KindSeries,
		Title:       show.Name,
		PosterPath:  show.PosterPath,
		Overview:    show.Overview,
		Genres:      genres,
		Rating:      show.VoteAverage,
		ReleaseDate: show.FirstAirDate,
	}
	if show.ExternalIDs != nil {
		item.ExternalID = show.ExternalIDs.ImdbID
	}
	return item
}

func notFound(msg string) error {
	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeNotFound,
		Message:  msg,
	}
}
