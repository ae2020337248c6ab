// Package playback picks the embed server for a title and drives the player
// session from an external ID to a loaded detail record.
package playback

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownServer is returned by Select for names not in the server list.
var ErrUnknownServer = errors.New("unknown playback server")

const idPlaceholder = "{id}"

// Server is a third-party embeddable player page.
type Server struct {
	Name     string
	Template string
}

// EmbedURL substitutes externalID into the template. The ID is not
// validated.
func (s Server) EmbedURL(externalID string) string {
	return strings.ReplaceAll(s.Template, idPlaceholder, externalID)
}

// DefaultServers is the fixed server list. The first entry is the initial
// selection.
var DefaultServers = []Server{
	{Name: "VidSrc", Template: "https://vidsrc.me/embed/{id}"},
	{Name: "RapidCloud", Template: "https://rapid-cloud.co/e/{id}"},
	{Name: "VidCloud", Template: "https://vidcloud9.com/e/{id}"},
	{Name: "Fembed", Template: "https://www6.fembed.com/v/{id}"},
	{Name: "StreamTape", Template: "https://streamtape.com/e/{id}"},
}

// ServerNames lists the names of DefaultServers in order.
func ServerNames() []string {
	names := make([]string, len(DefaultServers))
	for i, s := range DefaultServers {
		names[i] = s.Name
	}
	return names
}

// IsKnownServer reports whether name matches a default server, ignoring case.
func IsKnownServer(name string) bool {
	return indexOf(DefaultServers, name) >= 0
}

// Selector holds the current server choice for one player view. It is not
// persisted.
type Selector struct {
	servers []Server
	current int
}

// NewSelector returns a selector over DefaultServers starting at initial.
// An empty initial selects the first server.
func NewSelector(initial string) (*Selector, error) {
	s := &Selector{servers: DefaultServers}
	if initial != "" {
		if err := s.Select(initial); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Servers returns the server list in display order.
func (s *Selector) Servers() []Server {
	out := make([]Server, len(s.servers))
	copy(out, s.servers)
	return out
}

// Current returns the selected server.
func (s *Selector) Current() Server {
	return s.servers[s.current]
}

// CurrentIndex returns the position of the selected server.
func (s *Selector) CurrentIndex() int {
	return s.current
}

// Select switches to the named server. Unknown names leave the selection
// unchanged.
func (s *Selector) Select(name string) error {
	i := indexOf(s.servers, name)
	if i < 0 {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownServer, name, strings.Join(ServerNames(), ", "))
	}
	s.current = i
	return nil
}

// SelectIndex switches to the server at position i.
func (s *Selector) SelectIndex(i int) error {
	if i < 0 || i >= len(s.servers) {
		return fmt.Errorf("%w: index %d", ErrUnknownServer, i)
	}
	s.current = i
	return nil
}

// Next moves to the following server, wrapping around.
func (s *Selector) Next() Server {
	s.current = (s.current + 1) % len(s.servers)
	return s.Current()
}

// EmbedURL applies the current server to externalID.
func (s *Selector) EmbedURL(externalID string) string {
	return s.Current().EmbedURL(externalID)
}

func indexOf(servers []Server, name string) int {
	name = strings.TrimSpace(name)
	for i, srv := range servers {
		if strings.EqualFold(srv.Name, name) {
			return i
		}
	}
	return -1
}
