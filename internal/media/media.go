package media

import (
	"fmt"
	"strings"
)

// Kind classifies a catalog title. It decides which detail endpoint applies
// and which fields carry the title and release date.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

const (
	posterBaseURL     = "https://image.tmdb.org/t/p/w300"
	posterPlaceholder = "https://via.placeholder.com/300x450?text=No+Image"
)

// ParseKind accepts the user facing names as well as TMDB's wire names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return KindMovie, nil
	case "series", "tv", "show", "shows":
		return KindSeries, nil
	default:
		return "", fmt.Errorf("unknown media kind %q (want movie or series)", s)
	}
}

// WireName returns the path segment TMDB uses for this kind.
func (k Kind) WireName() string {
	if k == KindSeries {
		return "tv"
	}
	return "movie"
}

// Label returns the display label shown next to search results.
func (k Kind) Label() string {
	if k == KindSeries {
		return "TV Show"
	}
	return "Movie"
}

// Item is a fully populated catalog record.
type Item struct {
	ExternalID  string
	InternalID  int
	Kind        Kind
	Title       string
	PosterPath  string
	Overview    string
	Genres      []string
	Rating      float32
	ReleaseDate string
}

// Summary is the card shape used by search results and the
// favorites/history listings.
type Summary struct {
	ExternalID string
	InternalID int
	Kind       Kind
	Title      string
	PosterPath string
}

// TrendingEntry is one slot of the trending feed. ExternalID is empty when
// the secondary lookup failed; such entries are listed but not playable.
type TrendingEntry struct {
	InternalID int
	Kind       Kind
	Title      string
	PosterPath string
	ExternalID string
}

// Playable reports whether the entry can be handed to the player.
func (t TrendingEntry) Playable() bool {
	return t.ExternalID != ""
}

// GenreList joins genres for single line display.
func (i Item) GenreList() string {
	return strings.Join(i.Genres, ", ")
}

// Year extracts the leading year of the release date.
func (i Item) Year() string {
	if len(i.ReleaseDate) >= 4 {
		return i.ReleaseDate[:4]
	}
	return ""
}

// PosterURL expands a catalog poster path, falling back to a placeholder
// image when the title has no poster.
func PosterURL(path string) string {
	if path == "" {
		return posterPlaceholder
	}
	return posterBaseURL + path
}
