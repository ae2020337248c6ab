package catalog

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/rs/zerolog"
)

// DefaultTrendingLimit is the number of entries shown per kind.
const DefaultTrendingLimit = 8

// Feed fetches the weekly trending lists.
type Feed struct {
	resolver *Resolver
}

// NewFeed returns a trending feed backed by the resolver's catalog.
func NewFeed(r *Resolver) *Feed {
	return &Feed{resolver: r}
}

// FetchTrending returns up to limit trending titles of kind in trending
// order. A failed external ID lookup leaves that entry without an ID instead
// of failing the batch.
func (f *Feed) FetchTrending(ctx context.Context, kind media.Kind, limit int) ([]media.TrendingEntry, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	hits, err := f.resolver.catalog.Trending(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: trending %s: %w", media.ErrResolutionFailed, kind, err)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	ids := f.resolver.lookupExternalIDs(ctx, hits)

	entries := make([]media.TrendingEntry, len(hits))
	for i, h := range hits {
		entries[i] = media.TrendingEntry{
			InternalID: h.InternalID,
			Kind:       h.Kind,
			Title:      h.Title,
			PosterPath: h.PosterPath,
			ExternalID: ids[i],
		}
	}
	f.log().Debug().Str("kind", string(kind)).Int("entries", len(entries)).Msg("trending fetched")
	return entries, nil
}

func (f *Feed) log() *zerolog.Logger {
	return &f.resolver.log
}
