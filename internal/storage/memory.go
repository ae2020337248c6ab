package storage

import (
	"sync/atomic"

	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

func init() {
	Register("memory", func(ProviderConfig) (Store, error) {
		return NewMemory(), nil
	})
}

// Memory is a process local Store. Nothing survives the process.
type Memory struct {
	data   *csmap.CsMap[string, string]
	closed atomic.Bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: csmap.Create[string, string]()}
}

func (m *Memory) Get(key string) (string, bool, error) {
	if m.closed.Load() {
		return "", false, ErrClosed
	}
	v, ok := m.data.Load(key)
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Store(key, value)
	return nil
}

func (m *Memory) Remove(key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.data.Count()
}

func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
