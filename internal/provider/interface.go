package provider

import (
	"context"

	"github.com/Digital-Shane/jojo/internal/media"
)

// Hit is a catalog record as returned by list style endpoints (find, search,
// trending) before any detail call.
type Hit struct {
	InternalID int
	Kind       media.Kind
	Title      string
	PosterPath string
}

// FindResult holds the matches of a find-by-external-ID lookup, split by
// kind in the order the catalog returned them.
type FindResult struct {
	Movies []Hit
	Series []Hit
}

// Empty reports whether the lookup matched nothing.
func (f *FindResult) Empty() bool {
	return f == nil || (len(f.Movies) == 0 && len(f.Series) == 0)
}

// Catalog is the movie/TV metadata service the resolver and trending feed
// read from.
type Catalog interface {
	// Find looks a title up by its IMDb ID.
	Find(ctx context.Context, externalID string) (*FindResult, error)

	// Details fetches the kind specific detail record. The returned item's
	// ExternalID is filled when the catalog reports one.
	Details(ctx context.Context, kind media.Kind, internalID int) (*media.Item, error)

	// ExternalID returns the IMDb ID of a title, or "" when it has none.
	ExternalID(ctx context.Context, kind media.Kind, internalID int) (string, error)

	// Search runs a multi-kind text search. Only movie and series hits are
	// returned, in relevance order.
	Search(ctx context.Context, query string) ([]Hit, error)

	// Trending returns the weekly trending list for kind.
	Trending(ctx context.Context, kind media.Kind) ([]Hit, error)
}

// SummaryProvider turns an external ID into a display summary. It backs
// listings when the primary catalog has no match.
type SummaryProvider interface {
	Name() string
	Summarize(ctx context.Context, externalID string) (*media.Summary, error)
}
