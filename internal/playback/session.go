package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Digital-Shane/jojo/internal/media"
)

// State is a player session state.
type State int

const (
	Idle State = iota
	Resolving
	Resolved
	FetchingDetails
	DetailsLoaded
	DetailsFailed
	ResolutionFailed
)

var stateNames = map[State]string{
	Idle:             "idle",
	Resolving:        "resolving",
	Resolved:         "resolved",
	FetchingDetails:  "fetching_details",
	DetailsLoaded:    "details_loaded",
	DetailsFailed:    "details_failed",
	ResolutionFailed: "resolution_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the session can no longer move.
func (s State) Terminal() bool {
	return s == DetailsLoaded || s == DetailsFailed || s == ResolutionFailed
}

// Failed reports whether the session ended in an error state.
func (s State) Failed() bool {
	return s == DetailsFailed || s == ResolutionFailed
}

// ErrInvalidTransition is returned when a step is run out of order.
var ErrInvalidTransition = errors.New("invalid player state transition")

// Resolver is the part of the catalog resolver a session needs.
type Resolver interface {
	ResolveByExternalID(ctx context.Context, externalID string) (*media.Summary, error)
	FetchDetails(ctx context.Context, kind media.Kind, internalID int, externalID string) (*media.Item, error)
}

// Preferences is the part of the preference store a session needs.
type Preferences interface {
	Record(identity, id string) (bool, error)
	Toggle(identity, id string) (bool, error)
	IsFavorite(identity, id string) (bool, error)
}

// Session drives one player view. It is safe for concurrent use; the TUI
// runs steps from commands while rendering from the main loop.
type Session struct {
	mu sync.Mutex

	resolver Resolver
	prefs    Preferences
	identity string

	externalID string
	state      State
	summary    *media.Summary
	item       *media.Item
	err        error
	warning    error
	favorite   bool
	recorded   bool
	added      bool
}

// NewSession prepares a session for externalID. identity may be empty, in
// which case history is not recorded and favorites cannot be toggled.
func NewSession(r Resolver, p Preferences, identity, externalID string) *Session {
	return &Session{
		resolver:   r,
		prefs:      p,
		identity:   identity,
		externalID: media.ParseExternalID(externalID),
		state:      Idle,
	}
}

// Run resolves the ID and loads details. It returns the error of whichever
// step failed.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Resolve(ctx); err != nil {
		return err
	}
	return s.LoadDetails(ctx)
}

// Resolve moves Idle to Resolved or ResolutionFailed.
func (s *Session) Resolve(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, st)
	}
	if strings.TrimSpace(s.externalID) == "" {
		s.state = ResolutionFailed
		s.err = media.ErrEmptyInput
		s.mu.Unlock()
		return media.ErrEmptyInput
	}
	s.state = Resolving
	id := s.externalID
	s.mu.Unlock()

	summary, err := s.resolver.ResolveByExternalID(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ResolutionFailed
		s.err = err
		return err
	}
	s.summary = summary
	s.state = Resolved
	return nil
}

// LoadDetails moves Resolved to DetailsLoaded or DetailsFailed. Reaching
// DetailsLoaded records the ID in the identity's history once. If ctx is
// done by the time the fetch returns, the session fails with ctx's error and
// nothing is recorded.
func (s *Session) LoadDetails(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Resolved {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: load details from %s", ErrInvalidTransition, st)
	}
	s.state = FetchingDetails
	summary := *s.summary
	s.mu.Unlock()

	item, err := s.resolver.FetchDetails(ctx, summary.Kind, summary.InternalID, summary.ExternalID)

	if err == nil {
		err = ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = DetailsFailed
		s.err = err
		return err
	}
	s.item = item
	s.state = DetailsLoaded
	s.onLoaded()
	return nil
}

// onLoaded runs the DetailsLoaded side effects. Caller holds mu.
func (s *Session) onLoaded() {
	if s.identity == "" || s.prefs == nil || s.recorded {
		return
	}
	s.recorded = true
	added, err := s.prefs.Record(s.identity, s.externalID)
	if err != nil {
		s.warning = fmt.Errorf("failed to record history: %w", err)
	}
	s.added = added
	fav, err := s.prefs.IsFavorite(s.identity, s.externalID)
	if err != nil {
		s.warning = errors.Join(s.warning, fmt.Errorf("failed to read favorites: %w", err))
		return
	}
	s.favorite = fav
}

// ToggleFavorite flips favorite membership of the session's ID and returns
// the new state.
func (s *Session) ToggleFavorite() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == "" {
		return false, media.ErrNotAuthenticated
	}
	if s.externalID == "" {
		return false, media.ErrEmptyInput
	}
	fav, err := s.prefs.Toggle(s.identity, s.externalID)
	if err != nil {
		return s.favorite, err
	}
	s.favorite = fav
	return fav, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExternalID returns the normalized ID the session plays.
func (s *Session) ExternalID() string {
	return s.externalID
}

// Identity returns the user the session records for, or "".
func (s *Session) Identity() string {
	return s.identity
}

// Item returns the loaded record, or nil before DetailsLoaded.
func (s *Session) Item() *media.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

// Summary returns the resolution result, or nil before Resolved.
func (s *Session) Summary() *media.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// HistoryAdded reports whether loading appended the ID to history. It is
// false when the ID was already there.
func (s *Session) HistoryAdded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.added
}

// Err returns the failure that ended the session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Warning returns a non-fatal side effect failure, such as history not
// being saved.
func (s *Session) Warning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// IsFavorite reports the favorite flag computed on load or by the last
// toggle.
func (s *Session) IsFavorite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorite
}

// FailureMessage returns the inline message for a failed session, or "".
func (s *Session) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return failureMessage(s.state, s.err)
}

func failureMessage(state State, err error) string {
	switch state {
	case ResolutionFailed:
		switch {
		case errors.Is(err, media.ErrEmptyInput):
			return "No title ID given. Go back to search and pick a title."
		case errors.Is(err, media.ErrNotFound):
			return "Item not found. Go back to search and try another title."
		default:
			return "Failed to find item. Go back to search and try again."
		}
	case DetailsFailed:
		return "Failed to load details. Go back to search and try again."
	}
	return ""
}
