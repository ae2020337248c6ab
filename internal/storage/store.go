// Package storage provides the string keyed, string valued store that
// identity and preference data persist to.
package storage

import "errors"

// Store is a synchronous key-value store. Get reports a miss with found=false
// and a nil error.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store is closed")
