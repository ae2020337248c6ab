package media

import "errors"

var (
	// ErrNotFound means the external ID has no catalog match.
	ErrNotFound = errors.New("item not found in catalog")
	// ErrResolutionFailed covers network and decode failures while
	// translating identifiers or searching.
	ErrResolutionFailed = errors.New("failed to find item")
	// ErrDetailFetchFailed covers failures of the kind specific detail call.
	ErrDetailFetchFailed = errors.New("failed to load details")
	// ErrEmptyInput rejects blank names, IDs and queries before any I/O.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNotAuthenticated is returned by operations that need a current user.
	ErrNotAuthenticated = errors.New("log in first to manage favorites")
)
