// Package catalog translates between external IDs and the metadata
// catalog's own records.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/provider"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// Resolver resolves external IDs and text queries against a Catalog.
type Resolver struct {
	catalog  provider.Catalog
	fallback provider.SummaryProvider
	log      zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallback sets the provider used by Summaries for IDs the catalog cannot
// find.
func WithFallback(sp provider.SummaryProvider) Option {
	return func(r *Resolver) {
		r.fallback = sp
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver returns a Resolver reading from c.
func NewResolver(c provider.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: c, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveByExternalID finds the catalog entry for externalID. A movie match
// wins over a series match.
func (r *Resolver) ResolveByExternalID(ctx context.Context, externalID string) (*media.Summary, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, media.ErrEmptyInput
	}

	found, err := r.catalog.Find(ctx, externalID)
	if err != nil {
		r.log.Debug().Err(err).Str("external_id", externalID).Msg("find failed")
		return nil, fmt.Errorf("%w: %s: %w", media.ErrResolutionFailed, externalID, err)
	}

	var hit provider.Hit
	switch {
	case len(found.Movies) > 0:
		hit = found.Movies[0]
	case len(found.Series) > 0:
		hit = found.Series[0]
	default:
		return nil, fmt.Errorf("%w: %s", media.ErrNotFound, externalID)
	}

	return &media.Summary{
		ExternalID: externalID,
		InternalID: hit.InternalID,
		Kind:       hit.Kind,
		Title:      hit.Title,
		PosterPath: hit.PosterPath,
	}, nil
}

// FetchDetails loads the full record. externalID, when set, is stamped on the
// result so callers keep the key they resolved from.
func (r *Resolver) FetchDetails(ctx context.Context, kind media.Kind, internalID int, externalID string) (*media.Item, error) {
	item, err := r.catalog.Details(ctx, kind, internalID)
	if err != nil {
		r.log.Debug().Err(err).Str("kind", string(kind)).Int("id", internalID).Msg("details failed")
		return nil, fmt.Errorf("%w: %s %d: %w", media.ErrDetailFetchFailed, kind, internalID, err)
	}
	if externalID != "" {
		item.ExternalID = externalID
	}
	return item, nil
}

// Resolve resolves externalID and fetches its details.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*media.Item, error) {
	s, err := r.ResolveByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return r.FetchDetails(ctx, s.Kind, s.InternalID, s.ExternalID)
}

// SearchByText searches movies and series. Each hit's external ID is looked
// up concurrently; hits without one are dropped. A blank query returns an
// empty result without touching the network.
func (r *Resolver) SearchByText(ctx context.Context, query string) ([]media.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []media.Summary{}, nil
	}

	hits, err := r.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", media.ErrResolutionFailed, query, err)
	}

	ids := r.lookupExternalIDs(ctx, hits)

	results := make([]media.Summary, 0, len(hits))
	for i, h := range hits {
		if ids[i] == "" {
			continue
		}
		results = append(results, media.Summary{
			ExternalID: ids[i],
			InternalID: h.InternalID,
			Kind:       h.Kind,
			Title:      h.Title,
			PosterPath: h.PosterPath,
		})
	}
	r.log.Debug().Str("query", query).Int("hits", len(hits)).Int("kept", len(results)).Msg("search complete")
	return results, nil
}

// Summaries resolves a preference list for display, preserving order. IDs
// the catalog cannot resolve go to the fallback provider when one is set and
// are omitted otherwise.
func (r *Resolver) Summaries(ctx context.Context, externalIDs []string) []media.Summary {
	if len(externalIDs) == 0 {
		return []media.Summary{}
	}

	mapper := iter.Mapper[string, *media.Summary]{MaxGoroutines: len(externalIDs)}
	resolved := mapper.Map(externalIDs, func(id *string) *media.Summary {
		s, err := r.ResolveByExternalID(ctx, *id)
		if err == nil {
			return s
		}
		r.log.Debug().Err(err).Str("external_id", *id).Msg("listing entry unresolved")
		if r.fallback == nil {
			return nil
		}
		s, err = r.fallback.Summarize(ctx, *id)
		if err != nil {
			r.log.Debug().Err(err).Str("provider", r.fallback.Name()).Str("external_id", *id).Msg("fallback failed")
			return nil
		}
		return s
	})

	out := make([]media.Summary, 0, len(resolved))
	for _, s := range resolved {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// lookupExternalIDs fetches the external ID of every hit at once. Failed
// lookups yield "" at that index.
func (r *Resolver) lookupExternalIDs(ctx context.Context, hits []provider.Hit) []string {
	if len(hits) == 0 {
		return nil
	}
	mapper := iter.Mapper[provider.Hit, string]{MaxGoroutines: len(hits)}
	return mapper.Map(hits, func(h *provider.Hit) string {
		id, err := r.catalog.ExternalID(ctx, h.Kind, h.InternalID)
		if err != nil {
			r.log.Debug().Err(err).Str("kind", string(h.Kind)).Int("id", h.InternalID).Msg("external id lookup failed")
			return ""
		}
		return id
	})
}
