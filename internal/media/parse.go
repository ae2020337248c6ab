package media

import (
	"regexp"
	"strings"
)

// imdbIDRe finds an IMDb style identifier anywhere in the input, so pasted
// title URLs such as https://www.imdb.com/title/tt0816692/ work as well.
var imdbIDRe = regexp.MustCompile(`\btt\d{5,}\b`)

// ParseExternalID normalizes user input into an external ID. Inputs without
// an IMDb style token are returned trimmed and otherwise untouched; the shape
// of an ID is never validated.
func ParseExternalID(input string) string {
	trimmed := strings.TrimSpace(input)
	if match := imdbIDRe.FindString(trimmed); match != "" {
		return match
	}
	return trimmed
}
