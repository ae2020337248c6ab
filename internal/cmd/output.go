package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/mattn/go-runewidth"
)

const titleWidth = 48

// printSummaries writes one aligned row per title.
func printSummaries(w io.Writer, items []media.Summary) {
	for i, s := range items {
		fmt.Fprintf(w, "%3d. %s  %-7s  %s\n", i+1, cell(s.Title, titleWidth), kindLabel(s.Kind), s.ExternalID)
	}
}

// printTrending lists the feed; entries without an external ID are marked
// unavailable.
func printTrending(w io.Writer, heading string, entries []media.TrendingEntry) {
	fmt.Fprintf(w, "%s\n", heading)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  nothing trending right now")
		return
	}
	for i, e := range entries {
		id := e.ExternalID
		if !e.Playable() {
			id = "(unavailable)"
		}
		fmt.Fprintf(w, "%3d. %s  %s\n", i+1, cell(e.Title, titleWidth), id)
	}
}

// printItem writes the detail block shown before playback.
func printItem(w io.Writer, item *media.Item, favorite bool) {
	title := item.Title
	if y := item.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "  %-9s %s\n", "Type:", item.Kind.Label())
	fmt.Fprintf(w, "  %-9s %s\n", "ID:", item.ExternalID)
	if g := item.GenreList(); g != "" {
		fmt.Fprintf(w, "  %-9s %s\n", "Genres:", g)
	}
	if item.Rating > 0 {
		fmt.Fprintf(w, "  %-9s %.1f/10\n", "Rating:", item.Rating)
	}
	if item.ReleaseDate != "" {
		fmt.Fprintf(w, "  %-9s %s\n", "Released:", item.ReleaseDate)
	}
	fmt.Fprintf(w, "  %-9s %s\n", "Poster:", media.PosterURL(item.PosterPath))
	if favorite {
		fmt.Fprintf(w, "  %-9s yes\n", "Favorite:")
	}
	if item.Overview != "" {
		fmt.Fprintf(w, "\n%s\n", wrap(item.Overview, 76))
	}
}

func kindLabel(k media.Kind) string {
	if k == "" {
		return "?"
	}
	return k.Label()
}

// cell truncates or pads s to exactly width terminal columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func wrap(s string, width int) string {
	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if line > 0 && line+1+ww > width {
			b.WriteByte('\n')
			line = 0
		} else if line > 0 {
			b.WriteByte(' ')
			line++
		}
		b.WriteString(word)
		line += ww
	}
	return b.String()
}
